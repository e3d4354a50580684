// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ident

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/ledgerlabs/tokenledger/consts"
)

// Name is an account identity. Names are 1-12 characters drawn from
// [a-z1-5.], must not begin or end with '.', and pack into a uint64 (5 bits
// per character, most significant bits first) so they can be used directly
// as fixed-width state key components.
type Name string

const Empty Name = ""

const charset = ".12345abcdefghijklmnopqrstuvwxyz"

var (
	ErrEmptyName   = errors.New("empty name")
	ErrNameTooLong = errors.New("name too long")
	ErrBadNameChar = errors.New("invalid character in name")
	ErrNameDots    = errors.New("name cannot begin or end with a dot")
)

// Parse validates [s] and returns it as a Name.
func Parse(s string) (Name, error) {
	n := Name(s)
	if err := n.Valid(); err != nil {
		return Empty, err
	}
	return n, nil
}

// Valid reports whether the name is well-formed.
func (n Name) Valid() error {
	if len(n) == 0 {
		return ErrEmptyName
	}
	if len(n) > consts.MaxNameChars {
		return fmt.Errorf("%w: %q has %d characters", ErrNameTooLong, string(n), len(n))
	}
	if n[0] == '.' || n[len(n)-1] == '.' {
		return fmt.Errorf("%w: %q", ErrNameDots, string(n))
	}
	for i := 0; i < len(n); i++ {
		if charValue(n[i]) < 0 {
			return fmt.Errorf("%w: %q", ErrBadNameChar, string(n))
		}
	}
	return nil
}

// Raw packs the name into a uint64. Characters outside the charset
// contribute zero bits; callers are expected to have validated the name
// first.
func (n Name) Raw() uint64 {
	var v uint64
	for i := 0; i < len(n) && i < consts.MaxNameChars; i++ {
		c := charValue(n[i])
		if c < 0 {
			c = 0
		}
		v |= uint64(c&0x1f) << uint(64-5*(i+1))
	}
	return v
}

// FromRaw unpacks a Name previously packed with Raw.
func FromRaw(v uint64) Name {
	var sb strings.Builder
	for i := 0; i < consts.MaxNameChars; i++ {
		c := (v >> uint(64-5*(i+1))) & 0x1f
		sb.WriteByte(charset[c])
	}
	return Name(strings.TrimRight(sb.String(), "."))
}

// Bytes returns the big-endian encoding of Raw, suitable for state keys.
func (n Name) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, n.Raw())
}

func (n Name) String() string {
	return string(n)
}

func charValue(c byte) int {
	switch {
	case c == '.':
		return 0
	case c >= '1' && c <= '5':
		return int(c-'1') + 1
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 6
	default:
		return -1
	}
}
