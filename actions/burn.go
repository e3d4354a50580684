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

var _ Action = (*Burn)(nil)

// Burn retires supply by debiting [From]'s balance. Only the issuer may
// burn, but it may burn from any holder's balance.
type Burn struct {
	From     ident.Name  `json:"from"`
	Quantity asset.Asset `json:"quantity"`
}

func (*Burn) OpName() string {
	return "burn"
}

func (b *Burn) RequiredAuthority(ctx context.Context, im state.Immutable, _ ident.Name) (ident.Name, error) {
	return issuerOf(ctx, im, b.Quantity.Symbol.Code)
}

func (b *Burn) Execute(ctx context.Context, mu state.Mutable, env Env) error {
	sym := b.Quantity.Symbol
	if !sym.Valid() {
		return fmt.Errorf("%w: %s", asset.ErrInvalidSymbol, sym)
	}
	reg, exists, err := storage.GetRegistry(ctx, mu, sym.Code)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: create %s before burn", ErrSymbolMissing, sym.Code)
	}
	if !b.Quantity.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidQuantity, b.Quantity)
	}
	if b.Quantity.Amount <= 0 {
		return fmt.Errorf("%w: %s", ErrQuantityNotPos, b.Quantity)
	}
	if b.Quantity.Symbol != reg.Supply.Symbol {
		return fmt.Errorf("%w: %s vs %s", asset.ErrSymbolMismatch, b.Quantity.Symbol, reg.Supply.Symbol)
	}

	nsupply, err := reg.Supply.Sub(b.Quantity)
	if err != nil {
		return err
	}
	reg.Supply = nsupply
	if err := storage.SetRegistry(ctx, mu, reg, env.Self); err != nil {
		return err
	}

	// The holder must actually cover the burn; conservation guarantees
	// supply does, so this is the only solvency check needed.
	return storage.SubBalance(ctx, mu, b.From, b.Quantity)
}
