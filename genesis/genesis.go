// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/ledgerlabs/tokenledger/actions"
	"github.com/ledgerlabs/tokenledger/asset"
	"github.com/ledgerlabs/tokenledger/ident"
	"github.com/ledgerlabs/tokenledger/state"
	"github.com/ledgerlabs/tokenledger/storage"
)

var (
	ErrDuplicateAccount = errors.New("duplicate genesis account")
	ErrUnknownIssuer    = errors.New("issuer is not a genesis account")
)

type Account struct {
	Name ident.Name `json:"name"`

	// PublicKey is the hex-encoded ed25519 operation-signing key. May be
	// empty for accounts that only receive.
	PublicKey string `json:"publicKey"`
}

type Token struct {
	Issuer    ident.Name `json:"issuer"`
	MaxSupply string     `json:"maxSupply"` // e.g. "1000000.0000 TOK"

	// InitialIssue, when set, is minted to the issuer at load.
	InitialIssue string `json:"initialIssue,omitempty"`
}

type Genesis struct {
	// Self is the ledger's own identity. Registry records bill to it.
	Self ident.Name `json:"self"`

	Accounts []*Account `json:"accounts"`
	Tokens   []*Token   `json:"tokens"`
}

func Default() *Genesis {
	return &Genesis{
		Self: "token.ledger",
	}
}

func New(b []byte) (*Genesis, error) {
	g := Default()
	if len(b) > 0 {
		if err := json.Unmarshal(b, g); err != nil {
			return nil, fmt.Errorf("failed to unmarshal genesis %s: %w", string(b), err)
		}
	}
	return g, nil
}

// Load applies the genesis to an empty state: accounts first, then token
// registries, then any initial issuance through the regular issue path.
func (g *Genesis) Load(ctx context.Context, tracer trace.Tracer, mu state.Mutable) error {
	ctx, span := tracer.Start(ctx, "Genesis.Load")
	defer span.End()

	if err := g.Self.Valid(); err != nil {
		return fmt.Errorf("genesis self: %w", err)
	}
	env := actions.Env{Self: g.Self}

	seen := make(map[ident.Name]struct{}, len(g.Accounts))
	for _, acct := range g.Accounts {
		if err := acct.Name.Valid(); err != nil {
			return fmt.Errorf("genesis account: %w", err)
		}
		if _, ok := seen[acct.Name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateAccount, acct.Name)
		}
		seen[acct.Name] = struct{}{}
		var key []byte
		if acct.PublicKey != "" {
			var err error
			key, err = hex.DecodeString(acct.PublicKey)
			if err != nil {
				return fmt.Errorf("genesis account %s key: %w", acct.Name, err)
			}
		}
		if err := storage.SetAccount(ctx, mu, acct.Name, key, g.Self); err != nil {
			return err
		}
	}

	for _, tok := range g.Tokens {
		if _, ok := seen[tok.Issuer]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownIssuer, tok.Issuer)
		}
		max, err := asset.Parse(tok.MaxSupply)
		if err != nil {
			return fmt.Errorf("genesis token max supply %q: %w", tok.MaxSupply, err)
		}
		create := &actions.Create{Issuer: tok.Issuer, MaxSupply: max}
		if err := create.Execute(ctx, mu, env); err != nil {
			return fmt.Errorf("genesis create %s: %w", max.Symbol.Code, err)
		}
		if tok.InitialIssue == "" {
			continue
		}
		q, err := asset.Parse(tok.InitialIssue)
		if err != nil {
			return fmt.Errorf("genesis token initial issue %q: %w", tok.InitialIssue, err)
		}
		issue := &actions.Issue{To: tok.Issuer, Quantity: q, Memo: "genesis"}
		if err := issue.Execute(ctx, mu, env); err != nil {
			return fmt.Errorf("genesis issue %s: %w", q.Symbol.Code, err)
		}
	}
	return nil
}
