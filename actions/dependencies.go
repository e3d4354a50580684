// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"

	"github.com/ledgerlabs/tokenledger/asset"
	"github.com/ledgerlabs/tokenledger/ident"
	"github.com/ledgerlabs/tokenledger/state"
)

// Action is one ledger operation. Each action names the single principal
// whose authority it needs; the engine resolves and enforces that before
// Execute runs, so action bodies contain no authorization checks of their
// own.
type Action interface {
	// OpName is the operation's dispatch name.
	OpName() string

	// RequiredAuthority resolves the principal this operation must be
	// authorized by. Resolution may read state (issuer lookups).
	RequiredAuthority(ctx context.Context, im state.Immutable, self ident.Name) (ident.Name, error)

	// Execute applies the operation. Any returned error aborts the
	// operation with no state effect.
	Execute(ctx context.Context, mu state.Mutable, env Env) error
}

// Notifier informs transfer counterparties that a transfer is part of the
// current operation. Notifications carry no mutation rights.
type Notifier interface {
	NotifyTransfer(ctx context.Context, recipient ident.Name, from ident.Name, to ident.Name, quantity asset.Asset, memo string)
}

// Env carries the host services an action may touch during Execute.
type Env struct {
	// Self is the ledger's own identity. Registry records bill their
	// storage to it.
	Self ident.Name

	Notifier Notifier
}
