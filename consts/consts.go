// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

const (
	Name    = "tokenledger"
	Version = "v0.0.1"
)

const (
	ByteLen   = 1
	Uint16Len = 2
	Uint64Len = 8
	Int64Len  = 8
)

const (
	// MaxMemoSize is the maximum memo length accepted by issue and
	// transfer, in bytes.
	MaxMemoSize = 256

	// MaxSymbolChars is the maximum number of characters in a symbol code.
	MaxSymbolChars = 7

	// MaxNameChars is the maximum number of characters in an account name.
	MaxNameChars = 12

	// MaxDecimals is the maximum symbol precision.
	MaxDecimals = 18

	// MaxAssetAmount bounds the magnitude of any asset amount (2^62-1),
	// leaving headroom below MaxInt64 for intermediate sums.
	MaxAssetAmount = (int64(1) << 62) - 1
)
