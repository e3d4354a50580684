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

var _ Action = (*Create)(nil)

// Create registers a new token symbol with a supply ceiling and an issuer.
// Only the ledger's own identity may create symbols.
type Create struct {
	Issuer    ident.Name  `json:"issuer"`
	MaxSupply asset.Asset `json:"maxSupply"`
}

func (*Create) OpName() string {
	return "create"
}

func (*Create) RequiredAuthority(_ context.Context, _ state.Immutable, self ident.Name) (ident.Name, error) {
	return self, nil
}

func (c *Create) Execute(ctx context.Context, mu state.Mutable, env Env) error {
	sym := c.MaxSupply.Symbol
	if !sym.Valid() {
		return fmt.Errorf("%w: %s", asset.ErrInvalidSymbol, sym)
	}
	if err := c.Issuer.Valid(); err != nil {
		return err
	}
	if !c.MaxSupply.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidSupply, c.MaxSupply)
	}
	if c.MaxSupply.Amount <= 0 {
		return fmt.Errorf("%w: %s", ErrMaxSupplyZero, c.MaxSupply)
	}

	_, exists, err := storage.GetRegistry(ctx, mu, sym.Code)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrSymbolExists, sym.Code)
	}

	return storage.SetRegistry(ctx, mu, storage.Registry{
		Supply:    asset.New(0, sym),
		MaxSupply: c.MaxSupply,
		Issuer:    c.Issuer,
	}, env.Self)
}
