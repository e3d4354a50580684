// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ledgerlabs/tokenledger/asset"
	"github.com/ledgerlabs/tokenledger/consts"
	"github.com/ledgerlabs/tokenledger/ident"
	"github.com/ledgerlabs/tokenledger/state"
)

// State layout
// 0x0/ (registry)
//   -> [symbol code] => supply|maxSupply|decimals|issuer
// 0x1/ (balances)
//   -> [owner|symbol code] => amount|decimals|claimed
// 0x2/ (accounts)
//   -> [name] => ed25519 public key
// 0x3 (genesis)
//   -> raw genesis document
const (
	registryPrefix = 0x0
	balancePrefix  = 0x1
	accountPrefix  = 0x2
	genesisPrefix  = 0x3
)

const (
	registryLen = 2*consts.Int64Len + consts.ByteLen + consts.Uint64Len
	balanceLen  = consts.Int64Len + 2*consts.ByteLen

	claimedByte   = byte(0x1)
	unclaimedByte = byte(0x0)
)

// Registry is the per-symbol issuance record ("stats"): outstanding supply,
// supply ceiling, and the issuer identity. Registry records are always
// billed to the ledger's own identity.
type Registry struct {
	Supply    asset.Asset
	MaxSupply asset.Asset
	Issuer    ident.Name
}

// Balance is a per-owner holding of one symbol. Claimed records bill their
// storage to the owner; unclaimed records bill a third party (typically the
// issuer).
type Balance struct {
	Value   asset.Asset
	Claimed bool
}

// [registryPrefix] + [symbol code]
func RegistryKey(code asset.SymbolCode) (k []byte) {
	k = make([]byte, 1+consts.Uint64Len)
	k[0] = registryPrefix
	copy(k[1:], code.Bytes())
	return
}

// [balancePrefix] + [owner] + [symbol code]
func BalanceKey(owner ident.Name, code asset.SymbolCode) (k []byte) {
	k = make([]byte, 1+2*consts.Uint64Len)
	k[0] = balancePrefix
	copy(k[1:], owner.Bytes())
	copy(k[1+consts.Uint64Len:], code.Bytes())
	return
}

// [accountPrefix] + [name]
func AccountKey(name ident.Name) (k []byte) {
	k = make([]byte, 1+consts.Uint64Len)
	k[0] = accountPrefix
	copy(k[1:], name.Bytes())
	return
}

func GetRegistry(
	ctx context.Context,
	im state.Immutable,
	code asset.SymbolCode,
) (Registry, bool, error) {
	v, err := im.GetValue(ctx, RegistryKey(code))
	if errors.Is(err, database.ErrNotFound) {
		return Registry{}, false, nil
	}
	if err != nil {
		return Registry{}, false, err
	}
	if len(v) != registryLen {
		return Registry{}, false, fmt.Errorf("%w: registry for %s", ErrCorruptRecord, code)
	}
	sym := asset.Symbol{Code: code, Decimals: v[2*consts.Int64Len]}
	return Registry{
		Supply:    asset.New(int64(binary.BigEndian.Uint64(v)), sym),
		MaxSupply: asset.New(int64(binary.BigEndian.Uint64(v[consts.Int64Len:])), sym),
		Issuer:    ident.FromRaw(binary.BigEndian.Uint64(v[2*consts.Int64Len+consts.ByteLen:])),
	}, true, nil
}

func SetRegistry(
	ctx context.Context,
	mu state.Mutable,
	reg Registry,
	payer ident.Name,
) error {
	v := make([]byte, registryLen)
	binary.BigEndian.PutUint64(v, uint64(reg.Supply.Amount))
	binary.BigEndian.PutUint64(v[consts.Int64Len:], uint64(reg.MaxSupply.Amount))
	v[2*consts.Int64Len] = reg.Supply.Symbol.Decimals
	binary.BigEndian.PutUint64(v[2*consts.Int64Len+consts.ByteLen:], reg.Issuer.Raw())
	return mu.Insert(ctx, RegistryKey(reg.Supply.Symbol.Code), v, payer)
}

func GetBalance(
	ctx context.Context,
	im state.Immutable,
	owner ident.Name,
	code asset.SymbolCode,
) (Balance, bool, error) {
	v, err := im.GetValue(ctx, BalanceKey(owner, code))
	if errors.Is(err, database.ErrNotFound) {
		return Balance{}, false, nil
	}
	if err != nil {
		return Balance{}, false, err
	}
	return innerBalance(v, owner, code)
}

// GetBalancePayer also reports which identity is billed for the record.
func GetBalancePayer(
	ctx context.Context,
	im state.Immutable,
	owner ident.Name,
	code asset.SymbolCode,
) (Balance, ident.Name, bool, error) {
	v, payer, err := im.GetRecord(ctx, BalanceKey(owner, code))
	if errors.Is(err, database.ErrNotFound) {
		return Balance{}, ident.Empty, false, nil
	}
	if err != nil {
		return Balance{}, ident.Empty, false, err
	}
	b, exists, err := innerBalance(v, owner, code)
	return b, payer, exists, err
}

func innerBalance(v []byte, owner ident.Name, code asset.SymbolCode) (Balance, bool, error) {
	if len(v) != balanceLen {
		return Balance{}, false, fmt.Errorf("%w: balance %s/%s", ErrCorruptRecord, owner, code)
	}
	sym := asset.Symbol{Code: code, Decimals: v[consts.Int64Len]}
	return Balance{
		Value:   asset.New(int64(binary.BigEndian.Uint64(v)), sym),
		Claimed: v[consts.Int64Len+consts.ByteLen] == claimedByte,
	}, true, nil
}

func setBalance(
	ctx context.Context,
	mu state.Mutable,
	owner ident.Name,
	b Balance,
	payer ident.Name,
) error {
	v := make([]byte, balanceLen)
	binary.BigEndian.PutUint64(v, uint64(b.Value.Amount))
	v[consts.Int64Len] = b.Value.Symbol.Decimals
	if b.Claimed {
		v[consts.Int64Len+consts.ByteLen] = claimedByte
	} else {
		v[consts.Int64Len+consts.ByteLen] = unclaimedByte
	}
	return mu.Insert(ctx, BalanceKey(owner, b.Value.Symbol.Code), v, payer)
}

// OpenBalance creates a zero, claimed balance record billed to [payer] if
// the owner has none for this symbol. Idempotent when a record exists.
func OpenBalance(
	ctx context.Context,
	mu state.Mutable,
	owner ident.Name,
	sym asset.Symbol,
	payer ident.Name,
) error {
	_, exists, err := GetBalance(ctx, mu, owner, sym.Code)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return setBalance(ctx, mu, owner, Balance{Value: asset.New(0, sym), Claimed: true}, payer)
}

// CloseBalance erases an existing zero balance record.
func CloseBalance(
	ctx context.Context,
	mu state.Mutable,
	owner ident.Name,
	code asset.SymbolCode,
) error {
	b, exists, err := GetBalance(ctx, mu, owner, code)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s/%s", ErrBalanceNotFound, owner, code)
	}
	if b.Value.Amount != 0 {
		return fmt.Errorf("cannot close %s/%s: balance is %s, not zero", owner, code, b.Value)
	}
	return mu.Remove(ctx, BalanceKey(owner, code))
}

// AddBalance credits [value] to the owner. A new record is billed to
// [payer] with the given claimed flag; an existing record keeps both its
// payer and its claimed flag.
func AddBalance(
	ctx context.Context,
	mu state.Mutable,
	owner ident.Name,
	value asset.Asset,
	payer ident.Name,
	claimed bool,
) error {
	b, exists, err := GetBalance(ctx, mu, owner, value.Symbol.Code)
	if err != nil {
		return err
	}
	if !exists {
		return setBalance(ctx, mu, owner, Balance{Value: value, Claimed: claimed}, payer)
	}
	nvalue, err := b.Value.Add(value)
	if err != nil {
		return err
	}
	b.Value = nvalue
	return setBalance(ctx, mu, owner, b, payer)
}

// SubBalance debits [value] from the owner. Debiting to exactly zero erases
// the record and releases its storage.
func SubBalance(
	ctx context.Context,
	mu state.Mutable,
	owner ident.Name,
	value asset.Asset,
) error {
	b, exists, err := GetBalance(ctx, mu, owner, value.Symbol.Code)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s/%s", ErrBalanceNotFound, owner, value.Symbol.Code)
	}
	nvalue, err := b.Value.Sub(value)
	if err != nil {
		return err
	}
	if nvalue.Amount < 0 {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrOverdrawn, owner, b.Value, value)
	}
	if nvalue.Amount == 0 {
		return mu.Remove(ctx, BalanceKey(owner, value.Symbol.Code))
	}
	b.Value = nvalue
	return setBalance(ctx, mu, owner, b, owner)
}

// ClaimBalance reassigns the storage bill of the owner's balance record to
// [payer] and marks it claimed. Because a record's payer is fixed at
// insertion, the record is erased and reinserted rather than updated. A
// record that is already claimed is left untouched.
func ClaimBalance(
	ctx context.Context,
	mu state.Mutable,
	owner ident.Name,
	code asset.SymbolCode,
	payer ident.Name,
) error {
	b, exists, err := GetBalance(ctx, mu, owner, code)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s/%s", ErrBalanceNotFound, owner, code)
	}
	if b.Claimed {
		return nil
	}
	key := BalanceKey(owner, code)
	if err := mu.Remove(ctx, key); err != nil {
		return err
	}
	if _, err := mu.GetValue(ctx, key); !errors.Is(err, database.ErrNotFound) {
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: %s/%s", ErrDanglingBalance, owner, code)
	}
	b.Claimed = true
	return setBalance(ctx, mu, owner, b, payer)
}

// AccountExists reports whether [name] is a registered identity.
func AccountExists(ctx context.Context, im state.Immutable, name ident.Name) (bool, error) {
	_, err := im.GetValue(ctx, AccountKey(name))
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetAccountKey returns the account's registered ed25519 public key.
func GetAccountKey(ctx context.Context, im state.Immutable, name ident.Name) ([]byte, bool, error) {
	v, err := im.GetValue(ctx, AccountKey(name))
	if errors.Is(err, database.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// SetAccount registers an identity with its public key.
func SetAccount(
	ctx context.Context,
	mu state.Mutable,
	name ident.Name,
	publicKey []byte,
	payer ident.Name,
) error {
	return mu.Insert(ctx, AccountKey(name), publicKey, payer)
}

func GenesisKey() []byte {
	return []byte{genesisPrefix}
}

// GetGenesis returns the raw genesis document loaded at bootstrap.
func GetGenesis(ctx context.Context, im state.Immutable) ([]byte, bool, error) {
	v, err := im.GetValue(ctx, GenesisKey())
	if errors.Is(err, database.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// SetGenesis stores the raw genesis document. Presence of this record
// marks the state as bootstrapped.
func SetGenesis(ctx context.Context, mu state.Mutable, b []byte, payer ident.Name) error {
	return mu.Insert(ctx, GenesisKey(), b, payer)
}
