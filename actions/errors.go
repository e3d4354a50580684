// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import "errors"

var (
	ErrMissingAuthority = errors.New("missing required authority")

	ErrSymbolExists  = errors.New("token with symbol already exists")
	ErrSymbolMissing = errors.New("token with symbol does not exist")

	ErrInvalidSupply    = errors.New("invalid supply")
	ErrMaxSupplyZero    = errors.New("max-supply must be positive")
	ErrMaxSupplyTooLow  = errors.New("max-supply cannot be less than available supply")
	ErrSupplyExceeded   = errors.New("quantity exceeds available supply")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrQuantityNotPos   = errors.New("quantity must be positive")
	ErrMemoTooLarge     = errors.New("memo has more than 256 bytes")
	ErrIssueToNonIssuer = errors.New("tokens can only be issued to issuer account")

	ErrSelfTransfer   = errors.New("cannot transfer to self")
	ErrAccountMissing = errors.New("account does not exist")
)
