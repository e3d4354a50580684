// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlabs/tokenledger/asset"
	"github.com/ledgerlabs/tokenledger/ident"
	"github.com/ledgerlabs/tokenledger/state"
	"github.com/ledgerlabs/tokenledger/storage"
)

const self = ident.Name("token.ledger")

type notification struct {
	recipient ident.Name
	from      ident.Name
	to        ident.Name
	quantity  asset.Asset
}

type recordingNotifier struct {
	events []notification
}

func (n *recordingNotifier) NotifyTransfer(
	_ context.Context,
	recipient ident.Name,
	from ident.Name,
	to ident.Name,
	quantity asset.Asset,
	_ string,
) {
	n.events = append(n.events, notification{recipient, from, to, quantity})
}

type harness struct {
	ctx      context.Context
	mu       *state.SimpleMutable
	env      Env
	notifier *recordingNotifier
}

func newHarness(t *testing.T, accounts ...ident.Name) *harness {
	h := &harness{
		ctx:      context.Background(),
		mu:       state.NewSimpleMutable(state.New(memdb.New())),
		notifier: &recordingNotifier{},
	}
	h.env = Env{Self: self, Notifier: h.notifier}
	for _, a := range accounts {
		require.NoError(t, storage.SetAccount(h.ctx, h.mu, a, nil, self))
	}
	return h
}

func (h *harness) exec(a Action) error {
	return a.Execute(h.ctx, h.mu, h.env)
}

func (h *harness) mustExec(t *testing.T, a Action) {
	require.NoError(t, h.exec(a))
}

func (h *harness) supply(t *testing.T, code asset.SymbolCode) asset.Asset {
	reg, exists, err := storage.GetRegistry(h.ctx, h.mu, code)
	require.NoError(t, err)
	require.True(t, exists)
	return reg.Supply
}

func (h *harness) balance(t *testing.T, owner ident.Name, code asset.SymbolCode) storage.Balance {
	b, exists, err := storage.GetBalance(h.ctx, h.mu, owner, code)
	require.NoError(t, err)
	require.True(t, exists, "%s has no %s balance", owner, code)
	return b
}

func (h *harness) noBalance(t *testing.T, owner ident.Name, code asset.SymbolCode) {
	_, exists, err := storage.GetBalance(h.ctx, h.mu, owner, code)
	require.NoError(t, err)
	require.False(t, exists, "%s unexpectedly holds %s", owner, code)
}

// checkConservation verifies that the holdings of [owners] sum to the
// registry supply.
func (h *harness) checkConservation(t *testing.T, code asset.SymbolCode, owners ...ident.Name) {
	var sum int64
	for _, o := range owners {
		b, exists, err := storage.GetBalance(h.ctx, h.mu, o, code)
		require.NoError(t, err)
		if exists {
			sum += b.Value.Amount
		}
	}
	require.Equal(t, h.supply(t, code).Amount, sum, "balance sum diverged from supply")
}

func mustAsset(t *testing.T, s string) asset.Asset {
	a, err := asset.Parse(s)
	require.NoError(t, err)
	return a
}

func TestCreate(t *testing.T) {
	require := require.New(t)
	h := newHarness(t, "alice")
	max := mustAsset(t, "1000000.0000 TOK")

	h.mustExec(t, &Create{Issuer: "alice", MaxSupply: max})

	reg, exists, err := storage.GetRegistry(h.ctx, h.mu, max.Symbol.Code)
	require.NoError(err)
	require.True(exists)
	require.Equal(asset.New(0, max.Symbol), reg.Supply)
	require.Equal(max, reg.MaxSupply)
	require.Equal(ident.Name("alice"), reg.Issuer)

	// Duplicate symbol code is rejected regardless of precision.
	require.ErrorIs(h.exec(&Create{Issuer: "alice", MaxSupply: max}), ErrSymbolExists)
	require.ErrorIs(
		h.exec(&Create{Issuer: "alice", MaxSupply: mustAsset(t, "1.00 TOK")}),
		ErrSymbolExists,
	)
}

func TestCreateRejectsBadSupply(t *testing.T) {
	require := require.New(t)
	h := newHarness(t, "alice")

	zero := mustAsset(t, "0.0000 TOK")
	require.ErrorIs(h.exec(&Create{Issuer: "alice", MaxSupply: zero}), ErrMaxSupplyZero)

	neg := mustAsset(t, "-1.0000 TOK")
	require.ErrorIs(h.exec(&Create{Issuer: "alice", MaxSupply: neg}), ErrMaxSupplyZero)

	require.ErrorIs(
		h.exec(&Create{Issuer: "alice", MaxSupply: asset.Asset{Amount: 1}}),
		asset.ErrInvalidSymbol,
	)
}

func TestUpdate(t *testing.T) {
	require := require.New(t)
	h := newHarness(t, "alice", "bob")
	max := mustAsset(t, "1000.0000 TOK")
	code := max.Symbol.Code

	require.ErrorIs(
		h.exec(&Update{Issuer: "alice", MaxSupply: max}),
		ErrSymbolMissing,
	)

	h.mustExec(t, &Create{Issuer: "alice", MaxSupply: max})
	h.mustExec(t, &Issue{To: "alice", Quantity: mustAsset(t, "600.0000 TOK")})

	// Ceiling cannot drop below outstanding supply.
	require.ErrorIs(
		h.exec(&Update{Issuer: "alice", MaxSupply: mustAsset(t, "500.0000 TOK")}),
		ErrMaxSupplyTooLow,
	)

	// Precision must match the registry entry.
	require.ErrorIs(
		h.exec(&Update{Issuer: "alice", MaxSupply: mustAsset(t, "2000.00 TOK")}),
		asset.ErrSymbolMismatch,
	)

	h.mustExec(t, &Update{Issuer: "bob", MaxSupply: mustAsset(t, "2000.0000 TOK")})
	reg, _, err := storage.GetRegistry(h.ctx, h.mu, code)
	require.NoError(err)
	require.Equal(ident.Name("bob"), reg.Issuer)
	require.Equal(mustAsset(t, "2000.0000 TOK"), reg.MaxSupply)
	require.Equal(mustAsset(t, "600.0000 TOK"), reg.Supply)
}

func TestIssue(t *testing.T) {
	require := require.New(t)
	h := newHarness(t, "alice", "bob")
	max := mustAsset(t, "1000000.0000 TOK")
	code := max.Symbol.Code
	h.mustExec(t, &Create{Issuer: "alice", MaxSupply: max})

	q := mustAsset(t, "100.0000 TOK")
	h.mustExec(t, &Issue{To: "alice", Quantity: q, Memo: "genesis"})

	require.Equal(q, h.supply(t, code))
	b := h.balance(t, "alice", code)
	require.Equal(q, b.Value)
	require.True(b.Claimed)

	// The issuer pays for its own record.
	_, payer, _, err := storage.GetBalancePayer(h.ctx, h.mu, "alice", code)
	require.NoError(err)
	require.Equal(ident.Name("alice"), payer)

	// Direct issue must target the issuer.
	require.ErrorIs(h.exec(&Issue{To: "bob", Quantity: q}), ErrIssueToNonIssuer)

	h.checkConservation(t, code, "alice", "bob")
}

func TestIssueCeiling(t *testing.T) {
	require := require.New(t)
	h := newHarness(t, "alice")
	max := mustAsset(t, "100.0000 TOK")
	code := max.Symbol.Code
	h.mustExec(t, &Create{Issuer: "alice", MaxSupply: max})

	h.mustExec(t, &Issue{To: "alice", Quantity: mustAsset(t, "60.0000 TOK")})
	require.ErrorIs(
		h.exec(&Issue{To: "alice", Quantity: mustAsset(t, "40.0001 TOK")}),
		ErrSupplyExceeded,
	)

	// Exactly reaching the ceiling is allowed.
	h.mustExec(t, &Issue{To: "alice", Quantity: mustAsset(t, "40.0000 TOK")})
	require.Equal(max, h.supply(t, code))
}

func TestIssueValidation(t *testing.T) {
	require := require.New(t)
	h := newHarness(t, "alice")
	h.mustExec(t, &Create{Issuer: "alice", MaxSupply: mustAsset(t, "100.0000 TOK")})

	require.ErrorIs(
		h.exec(&Issue{To: "alice", Quantity: mustAsset(t, "1.0000 NOPE")}),
		ErrSymbolMissing,
	)
	require.ErrorIs(
		h.exec(&Issue{To: "alice", Quantity: mustAsset(t, "0.0000 TOK")}),
		ErrQuantityNotPos,
	)
	require.ErrorIs(
		h.exec(&Issue{To: "alice", Quantity: mustAsset(t, "-1.0000 TOK")}),
		ErrQuantityNotPos,
	)
	require.ErrorIs(
		h.exec(&Issue{To: "alice", Quantity: mustAsset(t, "1.00 TOK")}),
		asset.ErrSymbolMismatch,
	)

	longMemo := make([]byte, 257)
	require.ErrorIs(
		h.exec(&Issue{To: "alice", Quantity: mustAsset(t, "1.0000 TOK"), Memo: string(longMemo)}),
		ErrMemoTooLarge,
	)
}

func TestTransfer(t *testing.T) {
	require := require.New(t)
	h := newHarness(t, "alice", "bob")
	max := mustAsset(t, "1000000.0000 TOK")
	code := max.Symbol.Code
	h.mustExec(t, &Create{Issuer: "alice", MaxSupply: max})
	h.mustExec(t, &Issue{To: "alice", Quantity: mustAsset(t, "100.0000 TOK")})

	q := mustAsset(t, "40.0000 TOK")
	h.mustExec(t, &Transfer{From: "alice", To: "bob", Quantity: q, Memo: "hi"})

	require.Equal(mustAsset(t, "60.0000 TOK"), h.balance(t, "alice", code).Value)

	// alice is the issuer, so bob's fresh record is issuer-paid and
	// unclaimed.
	b, payer, _, err := storage.GetBalancePayer(h.ctx, h.mu, "bob", code)
	require.NoError(err)
	require.Equal(q, b.Value)
	require.False(b.Claimed)
	require.Equal(ident.Name("alice"), payer)

	// Both counterparties were notified, sender first.
	require.Equal(
		[]notification{
			{"alice", "alice", "bob", q},
			{"bob", "alice", "bob", q},
		},
		h.notifier.events,
	)

	h.checkConservation(t, code, "alice", "bob")
}

func TestTransferFromNonIssuer(t *testing.T) {
	require := require.New(t)
	h := newHarness(t, "alice", "bob", "carol")
	max := mustAsset(t, "1000000.0000 TOK")
	code := max.Symbol.Code
	h.mustExec(t, &Create{Issuer: "alice", MaxSupply: max})
	h.mustExec(t, &Issue{To: "alice", Quantity: mustAsset(t, "100.0000 TOK")})
	h.mustExec(t, &Transfer{From: "alice", To: "bob", Quantity: mustAsset(t, "40.0000 TOK")})

	// bob's unclaimed record gets force-claimed by the outgoing transfer,
	// so the issuer's bill is released before the debit.
	h.mustExec(t, &Transfer{From: "bob", To: "carol", Quantity: mustAsset(t, "10.0000 TOK")})

	b, payer, _, err := storage.GetBalancePayer(h.ctx, h.mu, "bob", code)
	require.NoError(err)
	require.True(b.Claimed)
	require.Equal(ident.Name("bob"), payer)
	require.Equal(mustAsset(t, "30.0000 TOK"), b.Value)

	// carol's record was created by a non-issuer sender: claimed, billed
	// to the sender.
	cb, cpayer, _, err := storage.GetBalancePayer(h.ctx, h.mu, "carol", code)
	require.NoError(err)
	require.True(cb.Claimed)
	require.Equal(ident.Name("bob"), cpayer)

	h.checkConservation(t, code, "alice", "bob", "carol")
}

func TestTransferRejections(t *testing.T) {
	require := require.New(t)
	h := newHarness(t, "alice", "bob")
	h.mustExec(t, &Create{Issuer: "alice", MaxSupply: mustAsset(t, "100.0000 TOK")})
	h.mustExec(t, &Issue{To: "alice", Quantity: mustAsset(t, "50.0000 TOK")})
	code := mustAsset(t, "50.0000 TOK").Symbol.Code

	require.ErrorIs(
		h.exec(&Transfer{From: "alice", To: "alice", Quantity: mustAsset(t, "1.0000 TOK")}),
		ErrSelfTransfer,
	)
	require.ErrorIs(
		h.exec(&Transfer{From: "alice", To: "nobody", Quantity: mustAsset(t, "1.0000 TOK")}),
		ErrAccountMissing,
	)
	require.ErrorIs(
		h.exec(&Transfer{From: "alice", To: "bob", Quantity: mustAsset(t, "0.0000 TOK")}),
		ErrQuantityNotPos,
	)
	require.ErrorIs(
		h.exec(&Transfer{From: "alice", To: "bob", Quantity: mustAsset(t, "51.0000 TOK")}),
		storage.ErrOverdrawn,
	)
	// A failed transfer leaves balances untouched.
	require.Equal(mustAsset(t, "50.0000 TOK"), h.balance(t, "alice", code).Value)
	h.noBalance(t, "bob", code)

	// Sender without any balance record at all.
	require.ErrorIs(
		h.exec(&Transfer{From: "bob", To: "alice", Quantity: mustAsset(t, "1.0000 TOK")}),
		storage.ErrBalanceNotFound,
	)
}

func TestTransferErasesZeroSender(t *testing.T) {
	h := newHarness(t, "alice", "bob")
	code := mustAsset(t, "1.0000 TOK").Symbol.Code
	h.mustExec(t, &Create{Issuer: "alice", MaxSupply: mustAsset(t, "100.0000 TOK")})
	h.mustExec(t, &Issue{To: "alice", Quantity: mustAsset(t, "50.0000 TOK")})
	h.mustExec(t, &Transfer{From: "alice", To: "bob", Quantity: mustAsset(t, "50.0000 TOK")})

	h.noBalance(t, "alice", code)
	h.checkConservation(t, code, "alice", "bob")
}

func TestClaimIdempotent(t *testing.T) {
	require := require.New(t)
	h := newHarness(t, "alice", "bob")
	q := mustAsset(t, "40.0000 TOK")
	code := q.Symbol.Code
	h.mustExec(t, &Create{Issuer: "alice", MaxSupply: mustAsset(t, "100.0000 TOK")})
	h.mustExec(t, &Issue{To: "alice", Quantity: q})
	h.mustExec(t, &Transfer{From: "alice", To: "bob", Quantity: q})

	require.ErrorIs(
		h.exec(&Claim{Owner: "carol", Symbol: q.Symbol}),
		storage.ErrBalanceNotFound,
	)
	badSym, err := asset.NewSymbol("TOK", 2)
	require.NoError(err)
	require.ErrorIs(
		h.exec(&Claim{Owner: "bob", Symbol: badSym}),
		asset.ErrSymbolMismatch,
	)

	h.mustExec(t, &Claim{Owner: "bob", Symbol: q.Symbol})
	b1, p1, _, err := storage.GetBalancePayer(h.ctx, h.mu, "bob", code)
	require.NoError(err)
	require.True(b1.Claimed)
	require.Equal(ident.Name("bob"), p1)
	require.Equal(q, b1.Value)

	// Second claim changes nothing.
	h.mustExec(t, &Claim{Owner: "bob", Symbol: q.Symbol})
	b2, p2, _, err := storage.GetBalancePayer(h.ctx, h.mu, "bob", code)
	require.NoError(err)
	require.Equal(b1, b2)
	require.Equal(p1, p2)
}

func TestRecover(t *testing.T) {
	require := require.New(t)
	h := newHarness(t, "alice", "bob")
	q := mustAsset(t, "40.0000 TOK")
	code := q.Symbol.Code
	h.mustExec(t, &Create{Issuer: "alice", MaxSupply: mustAsset(t, "100.0000 TOK")})
	h.mustExec(t, &Issue{To: "alice", Quantity: mustAsset(t, "100.0000 TOK")})
	h.mustExec(t, &Transfer{From: "alice", To: "bob", Quantity: q})

	// Unclaimed record: swept back to the issuer and erased.
	h.mustExec(t, &Recover{Owner: "bob", Symbol: q.Symbol})
	h.noBalance(t, "bob", code)
	require.Equal(mustAsset(t, "100.0000 TOK"), h.balance(t, "alice", code).Value)
	h.checkConservation(t, code, "alice", "bob")

	// Replay on a missing record is a silent no-op.
	h.mustExec(t, &Recover{Owner: "bob", Symbol: q.Symbol})

	// A claimed record is out of the issuer's reach.
	h.mustExec(t, &Transfer{From: "alice", To: "bob", Quantity: q})
	h.mustExec(t, &Claim{Owner: "bob", Symbol: q.Symbol})
	h.mustExec(t, &Recover{Owner: "bob", Symbol: q.Symbol})
	require.Equal(q, h.balance(t, "bob", code).Value)
}

func TestBurn(t *testing.T) {
	require := require.New(t)
	h := newHarness(t, "alice", "bob")
	code := mustAsset(t, "1.0000 TOK").Symbol.Code
	h.mustExec(t, &Create{Issuer: "alice", MaxSupply: mustAsset(t, "1000000.0000 TOK")})
	h.mustExec(t, &Issue{To: "alice", Quantity: mustAsset(t, "100.0000 TOK")})
	h.mustExec(t, &Transfer{From: "alice", To: "bob", Quantity: mustAsset(t, "40.0000 TOK")})

	h.mustExec(t, &Burn{From: "alice", Quantity: mustAsset(t, "10.0000 TOK")})
	require.Equal(mustAsset(t, "90.0000 TOK"), h.supply(t, code))
	require.Equal(mustAsset(t, "50.0000 TOK"), h.balance(t, "alice", code).Value)
	h.checkConservation(t, code, "alice", "bob")

	// Burning more than the holder carries fails and changes nothing.
	require.ErrorIs(
		h.exec(&Burn{From: "alice", Quantity: mustAsset(t, "60.0000 TOK")}),
		storage.ErrOverdrawn,
	)
}

func TestIssueTransfer(t *testing.T) {
	require := require.New(t)
	h := newHarness(t, "alice", "bob")
	q := mustAsset(t, "25.0000 TOK")
	code := q.Symbol.Code
	h.mustExec(t, &Create{Issuer: "alice", MaxSupply: mustAsset(t, "100.0000 TOK")})

	// To the issuer itself: plain issuance, no notifications.
	h.mustExec(t, &IssueTransfer{To: "alice", Quantity: q})
	require.Empty(h.notifier.events)
	require.Equal(q, h.balance(t, "alice", code).Value)

	// To a third party: issuance plus a full transfer.
	h.mustExec(t, &IssueTransfer{To: "bob", Quantity: q, Memo: "airdrop"})
	require.Len(h.notifier.events, 2)
	require.Equal(mustAsset(t, "50.0000 TOK"), h.supply(t, code))
	require.Equal(q, h.balance(t, "alice", code).Value)

	b, payer, _, err := storage.GetBalancePayer(h.ctx, h.mu, "bob", code)
	require.NoError(err)
	require.Equal(q, b.Value)
	require.False(b.Claimed)
	require.Equal(ident.Name("alice"), payer)

	h.checkConservation(t, code, "alice", "bob")
}

func TestIssueTransferToUnknownAccount(t *testing.T) {
	require := require.New(t)
	h := newHarness(t, "alice")
	q := mustAsset(t, "25.0000 TOK")
	code := q.Symbol.Code
	h.mustExec(t, &Create{Issuer: "alice", MaxSupply: mustAsset(t, "100.0000 TOK")})

	// Forwarding requires a registered recipient, same as a plain
	// transfer. Nothing may be minted on the way to the failure.
	require.ErrorIs(
		h.exec(&IssueTransfer{To: "ghost", Quantity: q}),
		ErrAccountMissing,
	)
	h.noBalance(t, "ghost", code)
	require.Empty(h.notifier.events)
	h.checkConservation(t, code, "alice")
}

func TestOpenClose(t *testing.T) {
	require := require.New(t)
	h := newHarness(t, "alice", "bob", "carol")
	sym := mustAsset(t, "1.0000 TOK").Symbol
	h.mustExec(t, &Create{Issuer: "alice", MaxSupply: mustAsset(t, "100.0000 TOK")})

	require.ErrorIs(
		h.exec(&Open{Owner: "nobody", Symbol: sym, RAMPayer: "carol"}),
		ErrAccountMissing,
	)
	badSym, err := asset.NewSymbol("TOK", 2)
	require.NoError(err)
	require.ErrorIs(
		h.exec(&Open{Owner: "bob", Symbol: badSym, RAMPayer: "carol"}),
		asset.ErrSymbolMismatch,
	)

	h.mustExec(t, &Open{Owner: "bob", Symbol: sym, RAMPayer: "carol"})
	b, payer, _, err := storage.GetBalancePayer(h.ctx, h.mu, "bob", sym.Code)
	require.NoError(err)
	require.Equal(asset.New(0, sym), b.Value)
	require.Equal(ident.Name("carol"), payer)

	// An open record reports zero rather than not-found.
	require.Equal(asset.New(0, sym), h.balance(t, "bob", sym.Code).Value)

	require.ErrorIs(
		h.exec(&Close{Owner: "alice", Symbol: sym}),
		storage.ErrBalanceNotFound,
	)
	h.mustExec(t, &Close{Owner: "bob", Symbol: sym})
	h.noBalance(t, "bob", sym.Code)
}

func TestCloseNonZero(t *testing.T) {
	require := require.New(t)
	h := newHarness(t, "alice")
	sym := mustAsset(t, "1.0000 TOK").Symbol
	h.mustExec(t, &Create{Issuer: "alice", MaxSupply: mustAsset(t, "100.0000 TOK")})
	h.mustExec(t, &Issue{To: "alice", Quantity: mustAsset(t, "1.0000 TOK")})

	require.Error(h.exec(&Close{Owner: "alice", Symbol: sym}))
	require.Equal(mustAsset(t, "1.0000 TOK"), h.balance(t, "alice", sym.Code).Value)
}

// TestLedgerScenario walks the full lifecycle: create, issue, transfer with
// issuer-paid onboarding, claim, recover, burn.
func TestLedgerScenario(t *testing.T) {
	require := require.New(t)
	h := newHarness(t, "alice", "bob")
	code := mustAsset(t, "1.0000 TOK").Symbol.Code

	h.mustExec(t, &Create{Issuer: "alice", MaxSupply: mustAsset(t, "1000000.0000 TOK")})
	h.mustExec(t, &Issue{To: "alice", Quantity: mustAsset(t, "100.0000 TOK")})
	require.Equal(mustAsset(t, "100.0000 TOK"), h.supply(t, code))

	h.mustExec(t, &Transfer{From: "alice", To: "bob", Quantity: mustAsset(t, "40.0000 TOK")})
	require.Equal(mustAsset(t, "60.0000 TOK"), h.balance(t, "alice", code).Value)
	bb := h.balance(t, "bob", code)
	require.Equal(mustAsset(t, "40.0000 TOK"), bb.Value)
	require.False(bb.Claimed)

	h.mustExec(t, &Claim{Owner: "bob", Symbol: bb.Value.Symbol})
	bb, payer, _, err := storage.GetBalancePayer(h.ctx, h.mu, "bob", code)
	require.NoError(err)
	require.True(bb.Claimed)
	require.Equal(ident.Name("bob"), payer)
	require.Equal(mustAsset(t, "40.0000 TOK"), bb.Value)

	// recover after the claim is a no-op.
	h.mustExec(t, &Recover{Owner: "bob", Symbol: bb.Value.Symbol})
	require.Equal(mustAsset(t, "40.0000 TOK"), h.balance(t, "bob", code).Value)

	h.mustExec(t, &Burn{From: "alice", Quantity: mustAsset(t, "10.0000 TOK")})
	require.Equal(mustAsset(t, "90.0000 TOK"), h.supply(t, code))
	require.Equal(mustAsset(t, "50.0000 TOK"), h.balance(t, "alice", code).Value)

	h.checkConservation(t, code, "alice", "bob")
}

// TestConservationRandomWalk drives a fixed mix of operations and checks
// the conservation invariant after every step.
func TestConservationRandomWalk(t *testing.T) {
	h := newHarness(t, "alice", "bob", "carol")
	code := mustAsset(t, "1.0000 TOK").Symbol.Code
	owners := []ident.Name{"alice", "bob", "carol"}

	h.mustExec(t, &Create{Issuer: "alice", MaxSupply: mustAsset(t, "1000000.0000 TOK")})

	steps := []Action{
		&Issue{To: "alice", Quantity: mustAsset(t, "500.0000 TOK")},
		&Transfer{From: "alice", To: "bob", Quantity: mustAsset(t, "123.4567 TOK")},
		&Transfer{From: "bob", To: "carol", Quantity: mustAsset(t, "23.4567 TOK")},
		&Burn{From: "alice", Quantity: mustAsset(t, "76.5433 TOK")},
		&Issue{To: "alice", Quantity: mustAsset(t, "1.0000 TOK")},
		&Transfer{From: "carol", To: "alice", Quantity: mustAsset(t, "23.4567 TOK")},
		&Recover{Owner: "bob", Symbol: mustAsset(t, "1.0000 TOK").Symbol},
		&Burn{From: "alice", Quantity: mustAsset(t, "100.0000 TOK")},
	}
	for _, a := range steps {
		h.mustExec(t, a)
		h.checkConservation(t, code, owners...)
	}
}

func TestRequiredAuthorityPolicy(t *testing.T) {
	require := require.New(t)
	h := newHarness(t, "alice", "bob")
	q := mustAsset(t, "1.0000 TOK")
	h.mustExec(t, &Create{Issuer: "alice", MaxSupply: mustAsset(t, "100.0000 TOK")})

	tests := []struct {
		action    Action
		principal ident.Name
	}{
		{&Create{Issuer: "alice", MaxSupply: q}, self},
		{&Update{Issuer: "alice", MaxSupply: q}, self},
		{&Issue{To: "alice", Quantity: q}, "alice"},
		{&IssueTransfer{To: "bob", Quantity: q}, "alice"},
		{&Burn{From: "bob", Quantity: q}, "alice"},
		{&Transfer{From: "bob", To: "alice", Quantity: q}, "bob"},
		{&Claim{Owner: "bob", Symbol: q.Symbol}, "bob"},
		{&Recover{Owner: "bob", Symbol: q.Symbol}, "alice"},
		{&Open{Owner: "bob", Symbol: q.Symbol, RAMPayer: "carol"}, "carol"},
		{&Close{Owner: "bob", Symbol: q.Symbol}, "bob"},
	}
	for _, tt := range tests {
		t.Run(tt.action.OpName(), func(t *testing.T) {
			principal, err := tt.action.RequiredAuthority(h.ctx, h.mu, self)
			require.NoError(err)
			require.Equal(tt.principal, principal)
		})
	}

	// Issuer resolution fails for an unknown symbol.
	unknown := mustAsset(t, "1.0000 NOPE")
	_, err := (&Issue{To: "alice", Quantity: unknown}).RequiredAuthority(h.ctx, h.mu, self)
	require.ErrorIs(err, ErrSymbolMissing)
}

func TestRegistryDispatch(t *testing.T) {
	require := require.New(t)
	for _, name := range OpNames() {
		a, err := New(name)
		require.NoError(err)
		require.Equal(name, a.OpName())
	}
	_, err := New("bogus")
	require.Error(err)
}
