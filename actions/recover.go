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

var _ Action = (*Recover)(nil)

// Recover sweeps an unclaimed balance back to the issuer and erases the
// owner's record. A missing record or one the owner already claimed is a
// silent no-op, so periodic sweeps can be replayed without re-deriving
// which recoveries still apply.
type Recover struct {
	Owner  ident.Name   `json:"owner"`
	Symbol asset.Symbol `json:"symbol"`
}

func (*Recover) OpName() string {
	return "recover"
}

func (r *Recover) RequiredAuthority(ctx context.Context, im state.Immutable, _ ident.Name) (ident.Name, error) {
	return issuerOf(ctx, im, r.Symbol.Code)
}

func (r *Recover) Execute(ctx context.Context, mu state.Mutable, _ Env) error {
	reg, exists, err := storage.GetRegistry(ctx, mu, r.Symbol.Code)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrSymbolMissing, r.Symbol.Code)
	}

	b, exists, err := storage.GetBalance(ctx, mu, r.Owner, r.Symbol.Code)
	if err != nil {
		return err
	}
	if !exists || b.Claimed {
		return nil
	}

	if err := storage.SubBalance(ctx, mu, r.Owner, b.Value); err != nil {
		return err
	}
	return storage.AddBalance(ctx, mu, reg.Issuer, b.Value, reg.Issuer, true)
}
