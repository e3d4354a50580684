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

var _ Action = (*Claim)(nil)

// Claim moves the storage bill of the owner's balance record onto the owner
// itself. A record that is already claimed is left untouched.
type Claim struct {
	Owner  ident.Name   `json:"owner"`
	Symbol asset.Symbol `json:"symbol"`
}

func (*Claim) OpName() string {
	return "claim"
}

func (c *Claim) RequiredAuthority(context.Context, state.Immutable, ident.Name) (ident.Name, error) {
	return c.Owner, nil
}

func (c *Claim) Execute(ctx context.Context, mu state.Mutable, _ Env) error {
	if !c.Symbol.Valid() {
		return fmt.Errorf("%w: %s", asset.ErrInvalidSymbol, c.Symbol)
	}
	reg, exists, err := storage.GetRegistry(ctx, mu, c.Symbol.Code)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrSymbolMissing, c.Symbol.Code)
	}
	if reg.Supply.Symbol != c.Symbol {
		return fmt.Errorf("%w: %s vs %s", asset.ErrSymbolMismatch, c.Symbol, reg.Supply.Symbol)
	}
	return storage.ClaimBalance(ctx, mu, c.Owner, c.Symbol.Code, c.Owner)
}
