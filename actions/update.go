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

var _ Action = (*Update)(nil)

// Update replaces the issuer and supply ceiling of an existing symbol. The
// ceiling may not drop below the outstanding supply. Only the ledger's own
// identity may update symbols.
type Update struct {
	Issuer    ident.Name  `json:"issuer"`
	MaxSupply asset.Asset `json:"maxSupply"`
}

func (*Update) OpName() string {
	return "update"
}

func (*Update) RequiredAuthority(_ context.Context, _ state.Immutable, self ident.Name) (ident.Name, error) {
	return self, nil
}

func (u *Update) Execute(ctx context.Context, mu state.Mutable, env Env) error {
	sym := u.MaxSupply.Symbol
	if !sym.Valid() {
		return fmt.Errorf("%w: %s", asset.ErrInvalidSymbol, sym)
	}
	if err := u.Issuer.Valid(); err != nil {
		return err
	}
	if !u.MaxSupply.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidSupply, u.MaxSupply)
	}
	if u.MaxSupply.Amount <= 0 {
		return fmt.Errorf("%w: %s", ErrMaxSupplyZero, u.MaxSupply)
	}

	reg, exists, err := storage.GetRegistry(ctx, mu, sym.Code)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: create %s before update", ErrSymbolMissing, sym.Code)
	}
	if sym != reg.Supply.Symbol {
		return fmt.Errorf("%w: %s vs %s", asset.ErrSymbolMismatch, sym, reg.Supply.Symbol)
	}
	if reg.Supply.Amount > u.MaxSupply.Amount {
		return fmt.Errorf("%w: supply %s, max-supply %s", ErrMaxSupplyTooLow, reg.Supply, u.MaxSupply)
	}

	reg.MaxSupply = u.MaxSupply
	reg.Issuer = u.Issuer
	return storage.SetRegistry(ctx, mu, reg, env.Self)
}
