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

var _ Action = (*Issue)(nil)

// Issue mints new supply directly to the issuer account. [To] must equal
// the registered issuer; a subsequent transfer is the only path to a third
// party. See [IssueTransfer] for the variant that forwards in one
// operation.
type Issue struct {
	To       ident.Name  `json:"to"`
	Quantity asset.Asset `json:"quantity"`
	Memo     string      `json:"memo"`
}

func (*Issue) OpName() string {
	return "issue"
}

func (i *Issue) RequiredAuthority(ctx context.Context, im state.Immutable, _ ident.Name) (ident.Name, error) {
	return issuerOf(ctx, im, i.Quantity.Symbol.Code)
}

func (i *Issue) Execute(ctx context.Context, mu state.Mutable, env Env) error {
	reg, err := checkIssue(ctx, mu, i.Quantity, i.Memo)
	if err != nil {
		return err
	}
	if i.To != reg.Issuer {
		return fmt.Errorf("%w: to=%s issuer=%s", ErrIssueToNonIssuer, i.To, reg.Issuer)
	}
	return applyIssue(ctx, mu, env, reg, i.Quantity)
}

// issuerOf resolves the authority for issue, burn, and recover.
func issuerOf(ctx context.Context, im state.Immutable, code asset.SymbolCode) (ident.Name, error) {
	reg, exists, err := storage.GetRegistry(ctx, im, code)
	if err != nil {
		return ident.Empty, err
	}
	if !exists {
		return ident.Empty, fmt.Errorf("%w: %s", ErrSymbolMissing, code)
	}
	return reg.Issuer, nil
}

// checkIssue validates the common issue preconditions and returns the
// symbol's registry entry.
func checkIssue(
	ctx context.Context,
	im state.Immutable,
	quantity asset.Asset,
	memo string,
) (storage.Registry, error) {
	if !quantity.Symbol.Valid() {
		return storage.Registry{}, fmt.Errorf("%w: %s", asset.ErrInvalidSymbol, quantity.Symbol)
	}
	if len(memo) > consts.MaxMemoSize {
		return storage.Registry{}, ErrMemoTooLarge
	}
	reg, exists, err := storage.GetRegistry(ctx, im, quantity.Symbol.Code)
	if err != nil {
		return storage.Registry{}, err
	}
	if !exists {
		return storage.Registry{}, fmt.Errorf("%w: create %s before issue", ErrSymbolMissing, quantity.Symbol.Code)
	}
	if !quantity.Valid() {
		return storage.Registry{}, fmt.Errorf("%w: %s", ErrInvalidQuantity, quantity)
	}
	if quantity.Amount <= 0 {
		return storage.Registry{}, fmt.Errorf("%w: %s", ErrQuantityNotPos, quantity)
	}
	if quantity.Symbol != reg.Supply.Symbol {
		return storage.Registry{}, fmt.Errorf("%w: %s vs %s", asset.ErrSymbolMismatch, quantity.Symbol, reg.Supply.Symbol)
	}
	if quantity.Amount > reg.MaxSupply.Amount-reg.Supply.Amount {
		return storage.Registry{}, fmt.Errorf(
			"%w: supply %s, max-supply %s, quantity %s",
			ErrSupplyExceeded, reg.Supply, reg.MaxSupply, quantity,
		)
	}
	return reg, nil
}

// applyIssue raises supply and credits the issuer, who pays for its own
// balance record.
func applyIssue(
	ctx context.Context,
	mu state.Mutable,
	env Env,
	reg storage.Registry,
	quantity asset.Asset,
) error {
	nsupply, err := reg.Supply.Add(quantity)
	if err != nil {
		return err
	}
	reg.Supply = nsupply
	if err := storage.SetRegistry(ctx, mu, reg, env.Self); err != nil {
		return err
	}
	return storage.AddBalance(ctx, mu, reg.Issuer, quantity, reg.Issuer, true)
}
