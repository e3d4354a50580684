// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/ledgerlabs/tokenledger/ident"
)

var _ Mutable = (*SimpleMutable)(nil)

type change struct {
	raw    []byte
	delete bool
}

// SimpleMutable buffers changes on top of a [Store] and writes them to the
// underlying database in a single batch on [Commit]. Dropping the buffer
// without committing leaves the store untouched, which is what gives each
// ledger operation its all-or-nothing semantics.
type SimpleMutable struct {
	store *Store

	changes map[string]*change
}

func NewSimpleMutable(store *Store) *SimpleMutable {
	return &SimpleMutable{store: store, changes: make(map[string]*change)}
}

func (s *SimpleMutable) GetValue(ctx context.Context, key []byte) ([]byte, error) {
	v, _, err := s.GetRecord(ctx, key)
	return v, err
}

func (s *SimpleMutable) GetRecord(ctx context.Context, key []byte) ([]byte, ident.Name, error) {
	raw, err := s.getRaw(ctx, key)
	if err != nil {
		return nil, ident.Empty, err
	}
	return splitRecord(raw)
}

func (s *SimpleMutable) Insert(ctx context.Context, key []byte, value []byte, payer ident.Name) error {
	if len(key) > 0 && key[0] == reservedPrefix {
		return fmt.Errorf("%w: %x", ErrReservedKey, key)
	}
	prev, err := s.getRaw(ctx, key)
	switch {
	case errors.Is(err, database.ErrNotFound):
		if payer == ident.Empty {
			return ErrEmptyPayer
		}
		if err := s.addRAM(ctx, payer, int64(billedSize(key, value))); err != nil {
			return err
		}
		s.changes[string(key)] = &change{raw: packRecord(value, payer)}
		return nil
	case err != nil:
		return err
	}

	// The record exists: its payer is unchanged and only the size delta is
	// rebilled.
	prevValue, prevPayer, err := splitRecord(prev)
	if err != nil {
		return err
	}
	delta := int64(billedSize(key, value)) - int64(billedSize(key, prevValue))
	if err := s.addRAM(ctx, prevPayer, delta); err != nil {
		return err
	}
	s.changes[string(key)] = &change{raw: packRecord(value, prevPayer)}
	return nil
}

func (s *SimpleMutable) Remove(ctx context.Context, key []byte) error {
	raw, err := s.getRaw(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	value, payer, err := splitRecord(raw)
	if err != nil {
		return err
	}
	if err := s.addRAM(ctx, payer, -int64(billedSize(key, value))); err != nil {
		return err
	}
	s.changes[string(key)] = &change{delete: true}
	return nil
}

func (s *SimpleMutable) RAMUsage(ctx context.Context, payer ident.Name) (uint64, error) {
	k := ramKey(payer)
	if c, ok := s.changes[string(k)]; ok {
		if c.delete {
			return 0, nil
		}
		return binary.BigEndian.Uint64(c.raw), nil
	}
	return s.store.RAMUsage(ctx, payer)
}

// Commit flushes all buffered changes in one database batch.
func (s *SimpleMutable) Commit(context.Context) error {
	b := s.store.db.NewBatch()
	for k, c := range s.changes {
		if c.delete {
			if err := b.Delete([]byte(k)); err != nil {
				return err
			}
			continue
		}
		if err := b.Put([]byte(k), c.raw); err != nil {
			return err
		}
	}
	return b.Write()
}

func (s *SimpleMutable) getRaw(_ context.Context, key []byte) ([]byte, error) {
	if c, ok := s.changes[string(key)]; ok {
		if c.delete {
			return nil, database.ErrNotFound
		}
		return c.raw, nil
	}
	return s.store.db.Get(key)
}

func (s *SimpleMutable) addRAM(ctx context.Context, payer ident.Name, delta int64) error {
	if payer == ident.Empty {
		return ErrEmptyPayer
	}
	usage, err := s.RAMUsage(ctx, payer)
	if err != nil {
		return err
	}
	var nusage uint64
	if delta >= 0 {
		nusage, err = smath.Add64(usage, uint64(delta))
	} else {
		nusage, err = smath.Sub(usage, uint64(-delta))
	}
	if err != nil {
		return fmt.Errorf("ram accounting for %s broken (usage=%d, delta=%d): %w", payer, usage, delta, err)
	}
	k := ramKey(payer)
	if nusage == 0 {
		s.changes[string(k)] = &change{delete: true}
		return nil
	}
	s.changes[string(k)] = &change{raw: binary.BigEndian.AppendUint64(nil, nusage)}
	return nil
}

func billedSize(key []byte, value []byte) uint64 {
	return uint64(len(key) + len(value))
}
