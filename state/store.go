// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"encoding/binary"
	"errors"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ledgerlabs/tokenledger/consts"
	"github.com/ledgerlabs/tokenledger/ident"
)

// Raw record layout: [payer raw u64] + [payload]. Keys starting with
// [reservedPrefix] hold the per-payer RAM counters and are managed by this
// package only.
const (
	recordHeaderLen = consts.Uint64Len

	reservedPrefix = 0xff
)

var _ Immutable = (*Store)(nil)

// Store reads committed records from an underlying database. All mutation
// happens through a [SimpleMutable] layered on top and committed as a batch.
type Store struct {
	db database.Database
}

func New(db database.Database) *Store {
	return &Store{db: db}
}

func (s *Store) GetValue(ctx context.Context, key []byte) ([]byte, error) {
	v, _, err := s.GetRecord(ctx, key)
	return v, err
}

func (s *Store) GetRecord(_ context.Context, key []byte) ([]byte, ident.Name, error) {
	raw, err := s.db.Get(key)
	if err != nil {
		return nil, ident.Empty, err
	}
	return splitRecord(raw)
}

func (s *Store) RAMUsage(_ context.Context, payer ident.Name) (uint64, error) {
	v, err := s.db.Get(ramKey(payer))
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(v), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// [reservedPrefix] + [payer]
func ramKey(payer ident.Name) (k []byte) {
	k = make([]byte, 1+consts.Uint64Len)
	k[0] = reservedPrefix
	copy(k[1:], payer.Bytes())
	return
}

func packRecord(value []byte, payer ident.Name) []byte {
	raw := make([]byte, recordHeaderLen+len(value))
	binary.BigEndian.PutUint64(raw, payer.Raw())
	copy(raw[recordHeaderLen:], value)
	return raw
}

func splitRecord(raw []byte) ([]byte, ident.Name, error) {
	if len(raw) < recordHeaderLen {
		return nil, ident.Empty, database.ErrNotFound
	}
	payer := ident.FromRaw(binary.BigEndian.Uint64(raw))
	return raw[recordHeaderLen:], payer, nil
}
