// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlabs/tokenledger/actions"
	"github.com/ledgerlabs/tokenledger/asset"
	"github.com/ledgerlabs/tokenledger/ident"
	"github.com/ledgerlabs/tokenledger/state"
	"github.com/ledgerlabs/tokenledger/storage"
)

func testKeys(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub, priv
}

func testState(t *testing.T, accounts map[ident.Name]ed25519.PublicKey) (context.Context, *state.SimpleMutable) {
	ctx := context.Background()
	mu := state.NewSimpleMutable(state.New(memdb.New()))
	for name, pub := range accounts {
		require.NoError(t, storage.SetAccount(ctx, mu, name, pub, "token.ledger"))
	}
	return ctx, mu
}

func TestSignVerifyRoundTrip(t *testing.T) {
	require := require.New(t)
	pub, priv := testKeys(t)
	ctx, mu := testState(t, map[ident.Name]ed25519.PublicKey{"alice": pub})

	q, err := asset.Parse("10.0000 TOK")
	require.NoError(err)
	op := &actions.Transfer{From: "alice", To: "bob", Quantity: q, Memo: "rent"}

	env, err := Sign(op, "alice", 7, priv)
	require.NoError(err)
	require.Equal("transfer", env.Op)
	require.Equal(ident.Name("alice"), env.Signer)

	signer, err := Verify(ctx, mu, env)
	require.NoError(err)
	require.Equal(ident.Name("alice"), signer)

	decoded, err := env.Action()
	require.NoError(err)
	require.Equal(op, decoded)
}

func TestVerifyRejectsTampering(t *testing.T) {
	require := require.New(t)
	pub, priv := testKeys(t)
	ctx, mu := testState(t, map[ident.Name]ed25519.PublicKey{"alice": pub})

	q, err := asset.Parse("10.0000 TOK")
	require.NoError(err)
	env, err := Sign(&actions.Transfer{From: "alice", To: "bob", Quantity: q}, "alice", 1, priv)
	require.NoError(err)

	tampered := *env
	tampered.Nonce++
	_, err = Verify(ctx, mu, &tampered)
	require.ErrorIs(err, ErrInvalidSignature)

	tampered = *env
	tampered.Body = append([]byte{}, env.Body...)
	tampered.Body[0]++
	_, err = Verify(ctx, mu, &tampered)
	require.ErrorIs(err, ErrInvalidSignature)

	tampered = *env
	tampered.Signature = append([]byte{}, env.Signature...)
	tampered.Signature[0]++
	_, err = Verify(ctx, mu, &tampered)
	require.ErrorIs(err, ErrInvalidSignature)
}

func TestVerifySignerChecks(t *testing.T) {
	require := require.New(t)
	pub, priv := testKeys(t)
	_, mu := testState(t, map[ident.Name]ed25519.PublicKey{"alice": pub})
	ctx := context.Background()

	q, err := asset.Parse("10.0000 TOK")
	require.NoError(err)
	env, err := Sign(&actions.Transfer{From: "bob", To: "alice", Quantity: q}, "bob", 1, priv)
	require.NoError(err)
	_, err = Verify(ctx, mu, env)
	require.ErrorIs(err, ErrUnknownSigner)

	// A registered account with a malformed key never verifies.
	require.NoError(storage.SetAccount(ctx, mu, "carol", []byte{1, 2, 3}, "token.ledger"))
	env, err = Sign(&actions.Transfer{From: "carol", To: "alice", Quantity: q}, "carol", 1, priv)
	require.NoError(err)
	_, err = Verify(ctx, mu, env)
	require.ErrorIs(err, ErrBadKeyLength)
}

func TestEnvelopeActionUnknownOp(t *testing.T) {
	require := require.New(t)
	env := &Envelope{Op: "bogus"}
	_, err := env.Action()
	require.Error(err)
}
