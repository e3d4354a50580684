// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package engine drives the ledger. It resolves and enforces operation
// authority, executes actions against a buffered state view, and commits
// the result atomically. Actions themselves never check authority.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ava-labs/avalanchego/database"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ledgerlabs/tokenledger/actions"
	"github.com/ledgerlabs/tokenledger/asset"
	"github.com/ledgerlabs/tokenledger/auth"
	"github.com/ledgerlabs/tokenledger/consts"
	"github.com/ledgerlabs/tokenledger/genesis"
	"github.com/ledgerlabs/tokenledger/ident"
	"github.com/ledgerlabs/tokenledger/state"
	"github.com/ledgerlabs/tokenledger/storage"
)

var ErrSelfMismatch = errors.New("genesis self does not match engine")

type Engine struct {
	log     *zap.Logger
	tracer  trace.Tracer
	metrics *metrics

	store *state.Store
	env   actions.Env

	// Submissions mutate shared state and are serialized.
	lock sync.Mutex
}

type Option func(*Engine)

// WithNotifier replaces the default log-only transfer notifier.
func WithNotifier(n actions.Notifier) Option {
	return func(e *Engine) {
		e.env.Notifier = n
	}
}

func New(
	db database.Database,
	self ident.Name,
	log *zap.Logger,
	r prometheus.Registerer,
	opts ...Option,
) (*Engine, error) {
	if err := self.Valid(); err != nil {
		return nil, fmt.Errorf("invalid self identity: %w", err)
	}
	m, err := newMetrics(r)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		log:     log,
		tracer:  otel.Tracer(consts.Name),
		metrics: m,
		store:   state.New(db),
	}
	e.env = actions.Env{Self: self, Notifier: &logNotifier{log: log}}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Self returns the ledger's own identity.
func (e *Engine) Self() ident.Name {
	return e.env.Self
}

// Submit executes [op] on behalf of [authorizedBy]. The operation's
// required authority is resolved against current state first; a mismatch
// rejects the operation before any execution. All writes land in a change
// buffer that is committed only on success, so a failed operation leaves
// no trace.
func (e *Engine) Submit(ctx context.Context, op actions.Action, authorizedBy ident.Name) error {
	ctx, span := e.tracer.Start(ctx, "Engine.Submit")
	defer span.End()

	e.lock.Lock()
	defer e.lock.Unlock()

	mu := state.NewSimpleMutable(e.store)
	principal, err := op.RequiredAuthority(ctx, mu, e.env.Self)
	if err != nil {
		e.metrics.aborted.Inc()
		return err
	}
	if principal != authorizedBy {
		e.metrics.rejected.Inc()
		e.log.Debug("operation rejected",
			zap.String("op", op.OpName()),
			zap.String("required", string(principal)),
			zap.String("authorized", string(authorizedBy)),
		)
		return fmt.Errorf("%w: %s requires %s", actions.ErrMissingAuthority, op.OpName(), principal)
	}
	if err := op.Execute(ctx, mu, e.env); err != nil {
		e.metrics.aborted.Inc()
		e.log.Debug("operation aborted",
			zap.String("op", op.OpName()),
			zap.Error(err),
		)
		return err
	}
	if err := mu.Commit(ctx); err != nil {
		return fmt.Errorf("commit %s: %w", op.OpName(), err)
	}
	e.metrics.committed(op.OpName())
	e.log.Info("operation committed",
		zap.String("op", op.OpName()),
		zap.String("authorized", string(authorizedBy)),
	)
	return nil
}

// SubmitEnvelope verifies a signed envelope against the registered signer
// keys and executes its operation under the signer's authority.
func (e *Engine) SubmitEnvelope(ctx context.Context, env *auth.Envelope) error {
	signer, err := auth.Verify(ctx, e.store, env)
	if err != nil {
		e.metrics.rejected.Inc()
		return err
	}
	op, err := env.Action()
	if err != nil {
		return err
	}
	return e.Submit(ctx, op, signer)
}

// Bootstrap loads a genesis document into an empty state and stores the
// raw bytes for later queries. Loading twice is a no-op.
func (e *Engine) Bootstrap(ctx context.Context, b []byte) error {
	ctx, span := e.tracer.Start(ctx, "Engine.Bootstrap")
	defer span.End()

	e.lock.Lock()
	defer e.lock.Unlock()

	mu := state.NewSimpleMutable(e.store)
	if _, loaded, err := storage.GetGenesis(ctx, mu); err != nil {
		return err
	} else if loaded {
		e.log.Info("genesis already loaded")
		return nil
	}
	g, err := genesis.New(b)
	if err != nil {
		return err
	}
	if g.Self != e.env.Self {
		return fmt.Errorf("%w: genesis %s, engine %s", ErrSelfMismatch, g.Self, e.env.Self)
	}
	if err := g.Load(ctx, e.tracer, mu); err != nil {
		return err
	}
	if err := storage.SetGenesis(ctx, mu, b, e.env.Self); err != nil {
		return err
	}
	if err := mu.Commit(ctx); err != nil {
		return err
	}
	e.log.Info("genesis loaded",
		zap.Int("accounts", len(g.Accounts)),
		zap.Int("tokens", len(g.Tokens)),
	)
	return nil
}

// Genesis returns the raw genesis document this state was bootstrapped
// with.
func (e *Engine) Genesis(ctx context.Context) ([]byte, bool, error) {
	return storage.GetGenesis(ctx, e.store)
}

// RegisterAccount stores an account and its operation-signing key. The
// ledger pays for the registry entry.
func (e *Engine) RegisterAccount(ctx context.Context, name ident.Name, publicKey []byte) error {
	if err := name.Valid(); err != nil {
		return err
	}
	e.lock.Lock()
	defer e.lock.Unlock()

	mu := state.NewSimpleMutable(e.store)
	if err := storage.SetAccount(ctx, mu, name, publicKey, e.env.Self); err != nil {
		return err
	}
	return mu.Commit(ctx)
}

// AccountKey returns the registered signing key for [name].
func (e *Engine) AccountKey(ctx context.Context, name ident.Name) ([]byte, bool, error) {
	return storage.GetAccountKey(ctx, e.store, name)
}

// Registry returns the full registry entry for a symbol.
func (e *Engine) Registry(ctx context.Context, code asset.SymbolCode) (storage.Registry, error) {
	reg, exists, err := storage.GetRegistry(ctx, e.store, code)
	if err != nil {
		return storage.Registry{}, err
	}
	if !exists {
		return storage.Registry{}, fmt.Errorf("%w: %s", actions.ErrSymbolMissing, code)
	}
	return reg, nil
}

// Supply returns the outstanding supply of a symbol.
func (e *Engine) Supply(ctx context.Context, code asset.SymbolCode) (asset.Asset, error) {
	reg, err := e.Registry(ctx, code)
	if err != nil {
		return asset.Asset{}, err
	}
	return reg.Supply, nil
}

// Balance returns the holding of [owner]. A missing record reports as a
// zero amount with [exists] false so callers can distinguish an open zero
// balance from no record at all.
func (e *Engine) Balance(
	ctx context.Context,
	owner ident.Name,
	code asset.SymbolCode,
) (storage.Balance, bool, error) {
	return storage.GetBalance(ctx, e.store, owner, code)
}

// RAMUsage returns the bytes currently billed to [payer].
func (e *Engine) RAMUsage(ctx context.Context, payer ident.Name) (uint64, error) {
	return e.store.RAMUsage(ctx, payer)
}

type logNotifier struct {
	log *zap.Logger
}

func (n *logNotifier) NotifyTransfer(
	_ context.Context,
	recipient ident.Name,
	from ident.Name,
	to ident.Name,
	quantity asset.Asset,
	memo string,
) {
	n.log.Debug("transfer notification",
		zap.String("recipient", string(recipient)),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("quantity", quantity.String()),
		zap.String("memo", memo),
	)
}
