// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"

	"github.com/ledgerlabs/tokenledger/asset"
	"github.com/ledgerlabs/tokenledger/ident"
	"github.com/ledgerlabs/tokenledger/state"
	"github.com/ledgerlabs/tokenledger/storage"
)

var _ Action = (*Close)(nil)

// Close erases the owner's balance record and releases its storage. The
// balance must be exactly zero.
type Close struct {
	Owner  ident.Name   `json:"owner"`
	Symbol asset.Symbol `json:"symbol"`
}

func (*Close) OpName() string {
	return "close"
}

func (c *Close) RequiredAuthority(context.Context, state.Immutable, ident.Name) (ident.Name, error) {
	return c.Owner, nil
}

func (c *Close) Execute(ctx context.Context, mu state.Mutable, _ Env) error {
	return storage.CloseBalance(ctx, mu, c.Owner, c.Symbol.Code)
}
