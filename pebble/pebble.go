// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/exp/slices"
)

const (
	defaultCacheSize = 512 * 1024 * 1024
	defaultBatchSize = 128
)

var _ database.Database = (*Database)(nil)

type Database struct {
	db      *pebble.DB
	metrics *metrics

	writeOptions *pebble.WriteOptions

	closing   chan struct{}
	closeOnce sync.Once
	closed    bool
	closeLock sync.RWMutex
}

type Config struct {
	CacheSize                   int  `json:"cacheSize"`
	BytesPerSync                int  `json:"bytesPerSync"`
	WALBytesPerSync             int  `json:"walBytesPerSync"` // 0 means no background syncing
	MemTableStopWritesThreshold int  `json:"memTableStopWritesThreshold"`
	MemTableSize                int  `json:"memTableSize"`
	MaxOpenFiles                int  `json:"maxOpenFiles"`
	MaxConcurrentCompactions    int  `json:"maxConcurrentCompactions"`
	Sync                        bool `json:"sync"`
}

func NewDefaultConfig() Config {
	return Config{
		CacheSize:                   defaultCacheSize,
		BytesPerSync:                512 * 1024,
		WALBytesPerSync:             0,
		MemTableStopWritesThreshold: 8,
		MemTableSize:                16 * 1024 * 1024,
		MaxOpenFiles:                4_096,
		MaxConcurrentCompactions:    1,
		Sync:                        false,
	}
}

func New(file string, cfg Config) (database.Database, *prometheus.Registry, error) {
	registry, metrics, err := newMetrics()
	if err != nil {
		return nil, nil, err
	}
	d := &Database{
		metrics:      metrics,
		closing:      make(chan struct{}),
		writeOptions: pebble.NoSync,
	}
	if cfg.Sync {
		d.writeOptions = pebble.Sync
	}
	opts := &pebble.Options{
		Cache:                       pebble.NewCache(int64(cfg.CacheSize)),
		BytesPerSync:                cfg.BytesPerSync,
		Comparer:                    pebble.DefaultComparer,
		MemTableSize:                uint64(cfg.MemTableSize),
		MemTableStopWritesThreshold: cfg.MemTableStopWritesThreshold,
		WALBytesPerSync:             cfg.WALBytesPerSync,
		MaxOpenFiles:                cfg.MaxOpenFiles,
		MaxConcurrentCompactions:    func() int { return cfg.MaxConcurrentCompactions },
		EventListener: &pebble.EventListener{
			CompactionBegin: d.onCompactionBegin,
			CompactionEnd:   d.onCompactionEnd,
			WriteStallBegin: d.onWriteStallBegin,
			WriteStallEnd:   d.onWriteStallEnd,
		},
	}
	opts.Experimental.ReadSamplingMultiplier = -1 // explicitly disable read compaction

	db, err := pebble.Open(file, opts)
	if err != nil {
		return nil, nil, err
	}
	d.db = db
	go d.collectMetrics()
	return d, registry, nil
}

func (db *Database) Close() error {
	db.closeLock.Lock()
	defer db.closeLock.Unlock()

	if db.closed {
		return database.ErrClosed
	}
	db.closed = true
	db.closeOnce.Do(func() {
		close(db.closing)
	})
	return updateError(db.db.Close())
}

func (db *Database) isClosed() bool {
	db.closeLock.RLock()
	defer db.closeLock.RUnlock()

	return db.closed
}

func (db *Database) HealthCheck(_ context.Context) (interface{}, error) {
	if db.isClosed() {
		return nil, database.ErrClosed
	}
	return nil, nil
}

func (db *Database) Has(key []byte) (bool, error) {
	if db.isClosed() {
		return false, database.ErrClosed
	}

	_, closer, err := db.db.Get(key)
	if err == pebble.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, updateError(err)
	}
	return true, closer.Close()
}

func (db *Database) Get(key []byte) ([]byte, error) {
	if db.isClosed() {
		return nil, database.ErrClosed
	}

	start := time.Now()
	data, closer, err := db.db.Get(key)
	if err != nil {
		return nil, updateError(err)
	}
	db.metrics.getLatency.Observe(float64(time.Since(start)))
	ret := slices.Clone(data)
	return ret, closer.Close()
}

func (db *Database) Put(key []byte, value []byte) error {
	if db.isClosed() {
		return database.ErrClosed
	}
	return updateError(db.db.Set(key, value, db.writeOptions))
}

func (db *Database) Delete(key []byte) error {
	if db.isClosed() {
		return database.ErrClosed
	}
	return updateError(db.db.Delete(key, db.writeOptions))
}

func (db *Database) Compact(start []byte, end []byte) error {
	if db.isClosed() {
		return database.ErrClosed
	}
	return updateError(db.db.Compact(start, end, true))
}

type batch struct {
	db    *Database
	batch *pebble.Batch
	size  int

	written bool
}

func (db *Database) NewBatch() database.Batch {
	return &batch{db: db, batch: db.db.NewBatch()}
}

func (b *batch) Put(key, value []byte) error {
	b.size += len(key) + len(value) + pebbleByteOverhead
	return b.batch.Set(key, value, nil)
}

func (b *batch) Delete(key []byte) error {
	b.size += len(key) + pebbleByteOverhead
	return b.batch.Delete(key, nil)
}

func (b *batch) Size() int {
	return b.size
}

func (b *batch) Write() error {
	if b.db.isClosed() {
		return database.ErrClosed
	}
	if b.written {
		// pebble batches are not reusable after commit; a rewrite must
		// go through a fresh batch.
		newBatch := b.db.db.NewBatch()
		if err := newBatch.Apply(b.batch, nil); err != nil {
			return err
		}
		b.batch = newBatch
	}
	b.written = true
	return updateError(b.batch.Commit(b.db.writeOptions))
}

func (b *batch) Reset() {
	b.batch.Reset()
	b.written = false
	b.size = 0
}

func (b *batch) Replay(w database.KeyValueWriterDeleter) error {
	reader := b.batch.Reader()
	for {
		kind, k, v, ok := reader.Next()
		if !ok {
			return nil
		}
		switch kind {
		case pebble.InternalKeyKindSet:
			if err := w.Put(k, v); err != nil {
				return err
			}
		case pebble.InternalKeyKindDelete:
			if err := w.Delete(k); err != nil {
				return err
			}
		default:
			return errInvalidOperation
		}
	}
}

func (b *batch) Inner() database.Batch {
	return b
}

type iterator struct {
	db   *Database
	iter *pebble.Iterator

	initialized bool
	closed      bool
	valid       bool

	err error
}

func (db *Database) NewIterator() database.Iterator {
	iter, err := db.db.NewIter(&pebble.IterOptions{})
	return &iterator{db: db, iter: iter, err: err}
}

func (db *Database) NewIteratorWithStart(start []byte) database.Iterator {
	iter, err := db.db.NewIter(&pebble.IterOptions{LowerBound: start})
	return &iterator{db: db, iter: iter, err: err}
}

func (db *Database) NewIteratorWithPrefix(prefix []byte) database.Iterator {
	iter, err := db.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixToUpperBound(prefix),
	})
	return &iterator{db: db, iter: iter, err: err}
}

func (db *Database) NewIteratorWithStartAndPrefix(start, prefix []byte) database.Iterator {
	opts := &pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixToUpperBound(prefix),
	}
	if bytes.Compare(start, prefix) > 0 {
		opts.LowerBound = start
	}
	iter, err := db.db.NewIter(opts)
	return &iterator{db: db, iter: iter, err: err}
}

// prefixToUpperBound returns the smallest key strictly greater than every
// key with [prefix], or nil if no such key exists.
func prefixToUpperBound(prefix []byte) []byte {
	for i := len(prefix) - 1; i >= 0; i-- {
		if prefix[i] != 0xff {
			upper := make([]byte, i+1)
			copy(upper, prefix)
			upper[i]++
			return upper
		}
	}
	return nil
}

func (it *iterator) Next() bool {
	if it.db.isClosed() {
		it.valid = false
		it.err = database.ErrClosed
		return false
	}
	if it.closed || it.iter == nil {
		it.valid = false
		return false
	}
	if !it.initialized {
		it.valid = it.iter.First()
		it.initialized = true
	} else {
		it.valid = it.iter.Next()
	}
	return it.valid
}

func (it *iterator) Error() error {
	if it.err != nil {
		return it.err
	}
	if it.closed {
		return nil
	}
	return updateError(it.iter.Error())
}

func (it *iterator) Key() []byte {
	if !it.valid {
		return nil
	}
	return slices.Clone(it.iter.Key())
}

func (it *iterator) Value() []byte {
	if !it.valid {
		return nil
	}
	return slices.Clone(it.iter.Value())
}

func (it *iterator) Release() {
	if it.closed {
		return
	}
	it.closed = true
	it.valid = false
	if it.iter != nil {
		_ = it.iter.Close()
	}
}

var errInvalidOperation = errors.New("invalid operation")

const pebbleByteOverhead = 8

// updateError casts pebble-specific errors to their database equivalents.
func updateError(err error) error {
	switch err {
	case pebble.ErrNotFound:
		return database.ErrNotFound
	case pebble.ErrClosed:
		return database.ErrClosed
	default:
		return err
	}
}
