// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ident

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		err  error
	}{
		{name: "simple", in: "alice"},
		{name: "digits and dots", in: "a1.b2.c3"},
		{name: "max length", in: "abcdefghij12"},
		{name: "empty", in: "", err: ErrEmptyName},
		{name: "too long", in: "abcdefghijklm", err: ErrNameTooLong},
		{name: "uppercase", in: "Alice", err: ErrBadNameChar},
		{name: "bad digit", in: "acct9", err: ErrBadNameChar},
		{name: "leading dot", in: ".alice", err: ErrNameDots},
		{name: "trailing dot", in: "alice.", err: ErrNameDots},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			n, err := Parse(tt.in)
			if tt.err != nil {
				require.ErrorIs(err, tt.err)
				return
			}
			require.NoError(err)
			require.Equal(tt.in, n.String())
		})
	}
}

func TestRawRoundTrip(t *testing.T) {
	require := require.New(t)
	for _, s := range []string{"a", "alice", "bob", "token.house", "zzzzzzzzzzzz", "a1.b2.c3"} {
		n, err := Parse(s)
		require.NoError(err)
		require.Equal(n, FromRaw(n.Raw()), s)
	}
}

func TestRawOrdering(t *testing.T) {
	require := require.New(t)

	// Distinct names must pack to distinct values.
	seen := make(map[uint64]Name)
	for _, s := range []string{"a", "aa", "ab", "b", "alice", "alicf", "alic"} {
		n, err := Parse(s)
		require.NoError(err)
		prev, ok := seen[n.Raw()]
		require.False(ok, "collision between %q and %q", prev, n)
		seen[n.Raw()] = n
	}
}

func TestEmptyRaw(t *testing.T) {
	require := require.New(t)
	require.Zero(Empty.Raw())
	require.Equal(Empty, FromRaw(0))
}
