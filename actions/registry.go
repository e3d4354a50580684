// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Dispatch table: operation name -> empty action, ready for decoding.
var registry = map[string]func() Action{
	(&Create{}).OpName():        func() Action { return &Create{} },
	(&Update{}).OpName():        func() Action { return &Update{} },
	(&Issue{}).OpName():         func() Action { return &Issue{} },
	(&IssueTransfer{}).OpName(): func() Action { return &IssueTransfer{} },
	(&Burn{}).OpName():          func() Action { return &Burn{} },
	(&Transfer{}).OpName():      func() Action { return &Transfer{} },
	(&Claim{}).OpName():         func() Action { return &Claim{} },
	(&Recover{}).OpName():       func() Action { return &Recover{} },
	(&Open{}).OpName():          func() Action { return &Open{} },
	(&Close{}).OpName():         func() Action { return &Close{} },
}

// New returns an empty action for [op], or an error for an unknown
// operation name.
func New(op string) (Action, error) {
	f, ok := registry[op]
	if !ok {
		return nil, fmt.Errorf("unknown operation %q", op)
	}
	return f(), nil
}

// OpNames lists all dispatchable operation names in sorted order.
func OpNames() []string {
	names := maps.Keys(registry)
	slices.Sort(names)
	return names
}
