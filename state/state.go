// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"errors"

	"github.com/ledgerlabs/tokenledger/ident"
)

// Every stored record is billed to a payer identity. The payer is fixed at
// insertion time and can only change by removing the record and inserting it
// again under a different payer; an in-place update never changes it.

var (
	ErrReservedKey = errors.New("key is in the reserved state range")
	ErrEmptyPayer  = errors.New("record payer cannot be empty")
)

type Immutable interface {
	// GetValue returns the record payload for [key], or
	// database.ErrNotFound.
	GetValue(ctx context.Context, key []byte) ([]byte, error)

	// GetRecord returns the record payload and the identity billed for its
	// storage.
	GetRecord(ctx context.Context, key []byte) ([]byte, ident.Name, error)

	// RAMUsage returns the number of bytes currently billed to [payer].
	RAMUsage(ctx context.Context, payer ident.Name) (uint64, error)
}

type Mutable interface {
	Immutable

	// Insert writes [value] under [key]. A new record is billed to
	// [payer]; an existing record keeps its original payer and only the
	// size delta is rebilled.
	Insert(ctx context.Context, key []byte, value []byte, payer ident.Name) error

	// Remove deletes the record and refunds its payer.
	Remove(ctx context.Context, key []byte) error
}
