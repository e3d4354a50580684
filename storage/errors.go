// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import "errors"

var (
	ErrBalanceNotFound = errors.New("no balance object found")
	ErrOverdrawn       = errors.New("overdrawn balance")
	ErrDanglingBalance = errors.New("there must be no balance object")
	ErrCorruptRecord   = errors.New("corrupt state record")
)
