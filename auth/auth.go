// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package auth implements the signed operation envelope. An envelope
// carries one serialized action, the signer's identity, and an ed25519
// signature over the canonical serialization. Verification resolves the
// signer's registered public key from state.
package auth

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"reflect"

	"github.com/hdevalence/ed25519consensus"
	"github.com/near/borsh-go"

	"github.com/ledgerlabs/tokenledger/actions"
	"github.com/ledgerlabs/tokenledger/ident"
	"github.com/ledgerlabs/tokenledger/state"
	"github.com/ledgerlabs/tokenledger/storage"
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrUnknownSigner    = errors.New("unknown signer")
	ErrBadKeyLength     = errors.New("bad public key length")
)

// Envelope is the wire form of a submitted operation.
type Envelope struct {
	Op        string
	Body      []byte
	Signer    ident.Name
	Nonce     uint64
	Signature []byte
}

// signedPayload is what the signature actually covers. The signature field
// itself is excluded.
type signedPayload struct {
	Op     string
	Body   []byte
	Signer ident.Name
	Nonce  uint64
}

// Sign builds a signed envelope for [op] on behalf of [signer].
func Sign(op actions.Action, signer ident.Name, nonce uint64, key ed25519.PrivateKey) (*Envelope, error) {
	if err := signer.Valid(); err != nil {
		return nil, err
	}
	// Actions are pointer-typed; serialize the struct value so the body
	// round-trips through Deserialize without an option tag.
	body, err := borsh.Serialize(reflect.ValueOf(op).Elem().Interface())
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", op.OpName(), err)
	}
	env := &Envelope{
		Op:     op.OpName(),
		Body:   body,
		Signer: signer,
		Nonce:  nonce,
	}
	msg, err := env.signingBytes()
	if err != nil {
		return nil, err
	}
	env.Signature = ed25519.Sign(key, msg)
	return env, nil
}

func (e *Envelope) signingBytes() ([]byte, error) {
	return borsh.Serialize(signedPayload{
		Op:     e.Op,
		Body:   e.Body,
		Signer: e.Signer,
		Nonce:  e.Nonce,
	})
}

// Action decodes the envelope body into its concrete operation.
func (e *Envelope) Action() (actions.Action, error) {
	op, err := actions.New(e.Op)
	if err != nil {
		return nil, err
	}
	if err := borsh.Deserialize(op, e.Body); err != nil {
		return nil, fmt.Errorf("deserialize %s: %w", e.Op, err)
	}
	return op, nil
}

// Verify checks the envelope signature against the signer's key registered
// in state and returns the authorized identity.
func Verify(ctx context.Context, im state.Immutable, e *Envelope) (ident.Name, error) {
	key, exists, err := storage.GetAccountKey(ctx, im, e.Signer)
	if err != nil {
		return ident.Empty, err
	}
	if !exists {
		return ident.Empty, fmt.Errorf("%w: %s", ErrUnknownSigner, e.Signer)
	}
	if len(key) != ed25519.PublicKeySize {
		return ident.Empty, fmt.Errorf("%w: %s has %d bytes", ErrBadKeyLength, e.Signer, len(key))
	}
	msg, err := e.signingBytes()
	if err != nil {
		return ident.Empty, err
	}
	if !ed25519consensus.Verify(ed25519.PublicKey(key), msg, e.Signature) {
		return ident.Empty, fmt.Errorf("%w: signer %s", ErrInvalidSignature, e.Signer)
	}
	return e.Signer, nil
}
