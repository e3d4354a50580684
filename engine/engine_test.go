// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ledgerlabs/tokenledger/actions"
	"github.com/ledgerlabs/tokenledger/asset"
	"github.com/ledgerlabs/tokenledger/ident"
	"github.com/ledgerlabs/tokenledger/storage"
)

func newTestEngine(t *testing.T, accounts ...ident.Name) (context.Context, *Engine) {
	ctx := context.Background()
	e, err := New(memdb.New(), "token.ledger", zap.NewNop(), prometheus.NewRegistry())
	require.NoError(t, err)
	for _, a := range accounts {
		require.NoError(t, e.RegisterAccount(ctx, a, nil))
	}
	return ctx, e
}

func mustAsset(t *testing.T, s string) asset.Asset {
	a, err := asset.Parse(s)
	require.NoError(t, err)
	return a
}

func TestSubmitAuthority(t *testing.T) {
	require := require.New(t)
	ctx, e := newTestEngine(t, "alice", "bob")
	max := mustAsset(t, "1000.0000 TOK")
	code := max.Symbol.Code

	// create requires the ledger's own identity.
	err := e.Submit(ctx, &actions.Create{Issuer: "alice", MaxSupply: max}, "alice")
	require.ErrorIs(err, actions.ErrMissingAuthority)
	_, err = e.Supply(ctx, code)
	require.ErrorIs(err, actions.ErrSymbolMissing)

	require.NoError(e.Submit(ctx, &actions.Create{Issuer: "alice", MaxSupply: max}, e.Self()))

	// issue requires the issuer resolved from state.
	q := mustAsset(t, "100.0000 TOK")
	err = e.Submit(ctx, &actions.Issue{To: "alice", Quantity: q}, "bob")
	require.ErrorIs(err, actions.ErrMissingAuthority)
	require.NoError(e.Submit(ctx, &actions.Issue{To: "alice", Quantity: q}, "alice"))

	supply, err := e.Supply(ctx, code)
	require.NoError(err)
	require.Equal(q, supply)

	// transfer requires the sender.
	x := mustAsset(t, "10.0000 TOK")
	err = e.Submit(ctx, &actions.Transfer{From: "alice", To: "bob", Quantity: x}, "bob")
	require.ErrorIs(err, actions.ErrMissingAuthority)
	require.NoError(e.Submit(ctx, &actions.Transfer{From: "alice", To: "bob", Quantity: x}, "alice"))

	b, exists, err := e.Balance(ctx, "bob", code)
	require.NoError(err)
	require.True(exists)
	require.Equal(x, b.Value)
}

func TestSubmitAtomicity(t *testing.T) {
	require := require.New(t)
	ctx, e := newTestEngine(t, "alice", "bob")
	max := mustAsset(t, "1000.0000 TOK")
	code := max.Symbol.Code
	require.NoError(e.Submit(ctx, &actions.Create{Issuer: "alice", MaxSupply: max}, e.Self()))
	require.NoError(e.Submit(ctx, &actions.Issue{To: "alice", Quantity: mustAsset(t, "100.0000 TOK")}, "alice"))
	require.NoError(e.Submit(ctx, &actions.Transfer{From: "alice", To: "bob", Quantity: mustAsset(t, "40.0000 TOK")}, "alice"))

	ramBefore, err := e.RAMUsage(ctx, "bob")
	require.NoError(err)

	// bob's overdrawn transfer force-claims his record mid-execution;
	// the abort must roll that back along with everything else.
	err = e.Submit(ctx, &actions.Transfer{From: "bob", To: "alice", Quantity: mustAsset(t, "41.0000 TOK")}, "bob")
	require.ErrorIs(err, storage.ErrOverdrawn)

	b, _, _, err := storage.GetBalancePayer(ctx, e.store, "bob", code)
	require.NoError(err)
	require.False(b.Claimed)
	require.Equal(mustAsset(t, "40.0000 TOK"), b.Value)

	ramAfter, err := e.RAMUsage(ctx, "bob")
	require.NoError(err)
	require.Equal(ramBefore, ramAfter)

	ab, _, err := e.Balance(ctx, "alice", code)
	require.NoError(err)
	require.Equal(mustAsset(t, "60.0000 TOK"), ab.Value)
}

func TestRegisterAccount(t *testing.T) {
	require := require.New(t)
	ctx, e := newTestEngine(t)

	key := []byte{1, 2, 3, 4}
	require.NoError(e.RegisterAccount(ctx, "alice", key))

	got, exists, err := e.AccountKey(ctx, "alice")
	require.NoError(err)
	require.True(exists)
	require.Equal(key, got)

	_, exists, err = e.AccountKey(ctx, "bob")
	require.NoError(err)
	require.False(exists)

	require.Error(e.RegisterAccount(ctx, "UPPER", nil))
}

func TestBootstrap(t *testing.T) {
	require := require.New(t)
	ctx, e := newTestEngine(t)

	doc := []byte(`{
		"self": "token.ledger",
		"accounts": [{"name": "alice"}],
		"tokens": [{"issuer": "alice", "maxSupply": "1000.0000 TOK", "initialIssue": "10.0000 TOK"}]
	}`)
	require.NoError(e.Bootstrap(ctx, doc))

	got, loaded, err := e.Genesis(ctx)
	require.NoError(err)
	require.True(loaded)
	require.Equal(doc, got)

	code := mustAsset(t, "1.0000 TOK").Symbol.Code
	supply, err := e.Supply(ctx, code)
	require.NoError(err)
	require.Equal(mustAsset(t, "10.0000 TOK"), supply)

	// Replays are no-ops.
	require.NoError(e.Bootstrap(ctx, doc))
	supply, err = e.Supply(ctx, code)
	require.NoError(err)
	require.Equal(mustAsset(t, "10.0000 TOK"), supply)

	// Self mismatch on a fresh state is rejected.
	e2, err := New(memdb.New(), "other.ledger", zap.NewNop(), prometheus.NewRegistry())
	require.NoError(err)
	require.ErrorIs(e2.Bootstrap(ctx, doc), ErrSelfMismatch)
}

func TestSubmitResolutionFailure(t *testing.T) {
	require := require.New(t)
	ctx, e := newTestEngine(t, "alice")

	// Authority for issue cannot resolve before the symbol exists.
	err := e.Submit(ctx, &actions.Issue{To: "alice", Quantity: mustAsset(t, "1.0000 TOK")}, "alice")
	require.ErrorIs(err, actions.ErrSymbolMissing)
}
