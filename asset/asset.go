// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package asset

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ledgerlabs/tokenledger/consts"
)

var (
	ErrInvalidSymbol   = errors.New("invalid symbol name")
	ErrSymbolMismatch  = errors.New("symbol precision mismatch")
	ErrAmountOverflow  = errors.New("asset amount overflow")
	ErrMalformedAmount = errors.New("malformed asset amount")
)

// SymbolCode is a token symbol code (1-7 uppercase letters) packed into a
// uint64, one byte per character starting at the least significant byte. The
// packed form is the primary key of registry and balance records and is
// independent of precision.
type SymbolCode uint64

// ParseSymbolCode validates and packs [s].
func ParseSymbolCode(s string) (SymbolCode, error) {
	if len(s) == 0 || len(s) > consts.MaxSymbolChars {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSymbol, s)
	}
	var v uint64
	for i := len(s) - 1; i >= 0; i-- {
		c := s[i]
		if c < 'A' || c > 'Z' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidSymbol, s)
		}
		v <<= 8
		v |= uint64(c)
	}
	return SymbolCode(v), nil
}

// Valid reports whether the packed form decodes to a well-formed code.
func (sc SymbolCode) Valid() bool {
	v := uint64(sc)
	if v == 0 {
		return false
	}
	seenEnd := false
	for i := 0; i < consts.Uint64Len; i++ {
		c := byte(v & 0xff)
		v >>= 8
		switch {
		case c == 0:
			seenEnd = true
		case seenEnd || i >= consts.MaxSymbolChars || c < 'A' || c > 'Z':
			return false
		}
	}
	return true
}

func (sc SymbolCode) String() string {
	var sb strings.Builder
	v := uint64(sc)
	for v > 0 {
		sb.WriteByte(byte(v & 0xff))
		v >>= 8
	}
	return sb.String()
}

// Bytes returns the big-endian encoding of the code, suitable for state keys.
func (sc SymbolCode) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(sc))
}

// Symbol identifies a token type: a code plus a decimal precision.
type Symbol struct {
	Code     SymbolCode
	Decimals uint8
}

func NewSymbol(code string, decimals uint8) (Symbol, error) {
	sc, err := ParseSymbolCode(code)
	if err != nil {
		return Symbol{}, err
	}
	s := Symbol{Code: sc, Decimals: decimals}
	if !s.Valid() {
		return Symbol{}, fmt.Errorf("%w: %d,%s", ErrInvalidSymbol, decimals, code)
	}
	return s, nil
}

// ParseSymbol parses the "<decimals>,<code>" form, e.g. "4,TOK".
func ParseSymbol(s string) (Symbol, error) {
	ds, code, ok := strings.Cut(s, ",")
	if !ok {
		return Symbol{}, fmt.Errorf("%w: %q", ErrInvalidSymbol, s)
	}
	d, err := strconv.ParseUint(ds, 10, 8)
	if err != nil || d > consts.MaxDecimals {
		return Symbol{}, fmt.Errorf("%w: bad precision in %q", ErrInvalidSymbol, s)
	}
	return NewSymbol(code, uint8(d))
}

func (s Symbol) Valid() bool {
	return s.Code.Valid() && s.Decimals <= consts.MaxDecimals
}

func (s Symbol) String() string {
	return fmt.Sprintf("%d,%s", s.Decimals, s.Code)
}

// Asset is an amount of a specific symbol. Amounts are fixed-point with
// [Symbol.Decimals] fractional digits and bounded by [consts.MaxAssetAmount]
// in magnitude.
type Asset struct {
	Amount int64
	Symbol Symbol
}

func New(amount int64, sym Symbol) Asset {
	return Asset{Amount: amount, Symbol: sym}
}

// Parse parses the "<amount> <code>" form, e.g. "100.0000 TOK". The number
// of fractional digits determines the symbol precision.
func Parse(s string) (Asset, error) {
	amountStr, codeStr, ok := strings.Cut(s, " ")
	if !ok {
		return Asset{}, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
	}
	neg := strings.HasPrefix(amountStr, "-")
	if neg {
		amountStr = amountStr[1:]
	}
	intPart, fracPart, hasDot := strings.Cut(amountStr, ".")
	if len(intPart) == 0 || (hasDot && len(fracPart) == 0) {
		return Asset{}, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
	}
	if len(fracPart) > consts.MaxDecimals {
		return Asset{}, fmt.Errorf("%w: too many decimals in %q", ErrMalformedAmount, s)
	}
	digits := intPart + fracPart
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return Asset{}, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
		}
	}
	if len(digits) > 19 {
		return Asset{}, fmt.Errorf("%w: %q", ErrAmountOverflow, s)
	}
	v, err := strconv.ParseUint(digits, 10, 64)
	if err != nil || v > uint64(consts.MaxAssetAmount) {
		return Asset{}, fmt.Errorf("%w: %q", ErrAmountOverflow, s)
	}
	amount := int64(v)
	if neg {
		amount = -amount
	}
	sym, err := NewSymbol(codeStr, uint8(len(fracPart)))
	if err != nil {
		return Asset{}, err
	}
	return Asset{Amount: amount, Symbol: sym}, nil
}

// Valid reports whether the symbol is well-formed and the amount is within
// bounds.
func (a Asset) Valid() bool {
	return a.Symbol.Valid() &&
		a.Amount <= consts.MaxAssetAmount &&
		a.Amount >= -consts.MaxAssetAmount
}

// Add returns a+b, failing on symbol mismatch or bound overflow.
func (a Asset) Add(b Asset) (Asset, error) {
	if a.Symbol != b.Symbol {
		return Asset{}, fmt.Errorf("%w: %s vs %s", ErrSymbolMismatch, a.Symbol, b.Symbol)
	}
	sum := a.Amount + b.Amount
	if sum > consts.MaxAssetAmount || sum < -consts.MaxAssetAmount {
		return Asset{}, fmt.Errorf("%w: %d + %d", ErrAmountOverflow, a.Amount, b.Amount)
	}
	return Asset{Amount: sum, Symbol: a.Symbol}, nil
}

// Sub returns a-b, failing on symbol mismatch or bound overflow.
func (a Asset) Sub(b Asset) (Asset, error) {
	return a.Add(Asset{Amount: -b.Amount, Symbol: b.Symbol})
}

func (a Asset) String() string {
	amount := a.Amount
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	d := int(a.Symbol.Decimals)
	digits := strconv.FormatInt(amount, 10)
	if d == 0 {
		return fmt.Sprintf("%s%s %s", sign, digits, a.Symbol.Code)
	}
	if len(digits) <= d {
		digits = strings.Repeat("0", d-len(digits)+1) + digits
	}
	return fmt.Sprintf(
		"%s%s.%s %s",
		sign, digits[:len(digits)-d], digits[len(digits)-d:], a.Symbol.Code,
	)
}
