// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"fmt"

	"github.com/ledgerlabs/tokenledger/asset"
	"github.com/ledgerlabs/tokenledger/ident"
	"github.com/ledgerlabs/tokenledger/state"
	"github.com/ledgerlabs/tokenledger/storage"
)

var _ Action = (*Open)(nil)

// Open pre-provisions a zero balance record for [Owner], billed to
// [RAMPayer]. The payer may differ from the owner, so a third party can
// fund an account's first record. Idempotent when a record already exists.
type Open struct {
	Owner    ident.Name   `json:"owner"`
	Symbol   asset.Symbol `json:"symbol"`
	RAMPayer ident.Name   `json:"ramPayer"`
}

func (*Open) OpName() string {
	return "open"
}

func (o *Open) RequiredAuthority(context.Context, state.Immutable, ident.Name) (ident.Name, error) {
	return o.RAMPayer, nil
}

func (o *Open) Execute(ctx context.Context, mu state.Mutable, _ Env) error {
	exists, err := storage.AccountExists(ctx, mu, o.Owner)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: owner account %s", ErrAccountMissing, o.Owner)
	}

	reg, found, err := storage.GetRegistry(ctx, mu, o.Symbol.Code)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrSymbolMissing, o.Symbol.Code)
	}
	if reg.Supply.Symbol != o.Symbol {
		return fmt.Errorf("%w: %s vs %s", asset.ErrSymbolMismatch, o.Symbol, reg.Supply.Symbol)
	}

	return storage.OpenBalance(ctx, mu, o.Owner, o.Symbol, o.RAMPayer)
}
