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

var _ Action = (*IssueTransfer)(nil)

// IssueTransfer mints new supply to the issuer and, when [To] is a third
// party, forwards it with full transfer semantics (counterparty
// notifications and recipient claim handling) in the same operation.
//
// [Issue] is the authoritative entry point; this one exists for callers
// that depend on single-operation onboarding of a recipient.
type IssueTransfer struct {
	To       ident.Name  `json:"to"`
	Quantity asset.Asset `json:"quantity"`
	Memo     string      `json:"memo"`
}

func (*IssueTransfer) OpName() string {
	return "issuetransfer"
}

func (i *IssueTransfer) RequiredAuthority(ctx context.Context, im state.Immutable, _ ident.Name) (ident.Name, error) {
	return issuerOf(ctx, im, i.Quantity.Symbol.Code)
}

func (i *IssueTransfer) Execute(ctx context.Context, mu state.Mutable, env Env) error {
	reg, err := checkIssue(ctx, mu, i.Quantity, i.Memo)
	if err != nil {
		return err
	}
	if err := applyIssue(ctx, mu, env, reg, i.Quantity); err != nil {
		return err
	}
	if i.To == reg.Issuer {
		return nil
	}
	// The forward carries full transfer semantics, including the
	// recipient existence check, under the issuer authority that
	// covered the issuance itself.
	toExists, err := storage.AccountExists(ctx, mu, i.To)
	if err != nil {
		return err
	}
	if !toExists {
		return fmt.Errorf("%w: to account %s", ErrAccountMissing, i.To)
	}
	return applyTransfer(ctx, mu, env, reg.Issuer, i.To, i.Quantity, i.Memo)
}
