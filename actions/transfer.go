// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"fmt"

	"github.com/ledgerlabs/tokenledger/asset"
	"github.com/ledgerlabs/tokenledger/consts"
	"github.com/ledgerlabs/tokenledger/ident"
	"github.com/ledgerlabs/tokenledger/state"
	"github.com/ledgerlabs/tokenledger/storage"
)

var _ Action = (*Transfer)(nil)

// Transfer moves [Quantity] from [From] to [To].
type Transfer struct {
	From     ident.Name  `json:"from"`
	To       ident.Name  `json:"to"`
	Quantity asset.Asset `json:"quantity"`
	Memo     string      `json:"memo"`
}

func (*Transfer) OpName() string {
	return "transfer"
}

func (t *Transfer) RequiredAuthority(context.Context, state.Immutable, ident.Name) (ident.Name, error) {
	return t.From, nil
}

func (t *Transfer) Execute(ctx context.Context, mu state.Mutable, env Env) error {
	if t.From == t.To {
		return fmt.Errorf("%w: %s", ErrSelfTransfer, t.From)
	}
	toExists, err := storage.AccountExists(ctx, mu, t.To)
	if err != nil {
		return err
	}
	if !toExists {
		return fmt.Errorf("%w: to account %s", ErrAccountMissing, t.To)
	}
	reg, exists, err := storage.GetRegistry(ctx, mu, t.Quantity.Symbol.Code)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrSymbolMissing, t.Quantity.Symbol.Code)
	}
	if !t.Quantity.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidQuantity, t.Quantity)
	}
	if t.Quantity.Amount <= 0 {
		return fmt.Errorf("%w: %s", ErrQuantityNotPos, t.Quantity)
	}
	if t.Quantity.Symbol != reg.Supply.Symbol {
		return fmt.Errorf("%w: %s vs %s", asset.ErrSymbolMismatch, t.Quantity.Symbol, reg.Supply.Symbol)
	}
	if len(t.Memo) > consts.MaxMemoSize {
		return ErrMemoTooLarge
	}
	return applyTransfer(ctx, mu, env, t.From, t.To, t.Quantity, t.Memo)
}

// applyTransfer performs the movement after all preconditions have passed.
// Ordering matters: the sender's record is force-claimed before the debit
// so an aborted operation can never leave a partially claimed sender, and
// the recipient claim runs only after the credit exists.
func applyTransfer(
	ctx context.Context,
	mu state.Mutable,
	env Env,
	from ident.Name,
	to ident.Name,
	quantity asset.Asset,
	memo string,
) error {
	reg, exists, err := storage.GetRegistry(ctx, mu, quantity.Symbol.Code)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrSymbolMissing, quantity.Symbol.Code)
	}

	if env.Notifier != nil {
		env.Notifier.NotifyTransfer(ctx, from, from, to, quantity, memo)
		env.Notifier.NotifyTransfer(ctx, to, from, to, quantity, memo)
	}

	if err := storage.ClaimBalance(ctx, mu, from, quantity.Symbol.Code, from); err != nil {
		return err
	}
	if err := storage.SubBalance(ctx, mu, from, quantity); err != nil {
		return err
	}
	// When the issuer sends, it keeps paying for the recipient's record
	// (unclaimed), which lets first-time recipients receive at no storage
	// cost. Anyone else pays up front and the record lands claimed.
	if err := storage.AddBalance(ctx, mu, to, quantity, from, from != reg.Issuer); err != nil {
		return err
	}
	if from != reg.Issuer {
		// The recipient may have held an older unclaimed record; leave
		// it claimed under the sender's bill.
		return storage.ClaimBalance(ctx, mu, to, quantity.Symbol.Code, from)
	}
	return nil
}
