// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ledgerlabs/tokenledger/asset"
	"github.com/ledgerlabs/tokenledger/auth"
	"github.com/ledgerlabs/tokenledger/engine"
	"github.com/ledgerlabs/tokenledger/genesis"
	"github.com/ledgerlabs/tokenledger/ident"
	"github.com/ledgerlabs/tokenledger/storage"
)

// Endpoint is the path the JSON-RPC handler is mounted at.
const Endpoint = "/rpc"

var ErrNoGenesis = errors.New("state not bootstrapped")

type JSONRPCServer struct {
	e *engine.Engine
}

func NewJSONRPCServer(e *engine.Engine) *JSONRPCServer {
	return &JSONRPCServer{e: e}
}

type GenesisReply struct {
	Genesis *genesis.Genesis `json:"genesis"`
}

func (j *JSONRPCServer) Genesis(req *http.Request, _ *struct{}, reply *GenesisReply) error {
	b, loaded, err := j.e.Genesis(req.Context())
	if err != nil {
		return err
	}
	if !loaded {
		return ErrNoGenesis
	}
	g, err := genesis.New(b)
	if err != nil {
		return err
	}
	reply.Genesis = g
	return nil
}

type SupplyArgs struct {
	Symbol string `json:"symbol"` // code only, e.g. "TOK"
}

type SupplyReply struct {
	Supply    string     `json:"supply"`
	MaxSupply string     `json:"maxSupply"`
	Issuer    ident.Name `json:"issuer"`
}

func (j *JSONRPCServer) Supply(req *http.Request, args *SupplyArgs, reply *SupplyReply) error {
	code, err := asset.ParseSymbolCode(args.Symbol)
	if err != nil {
		return err
	}
	reg, err := j.e.Registry(req.Context(), code)
	if err != nil {
		return err
	}
	reply.Supply = reg.Supply.String()
	reply.MaxSupply = reg.MaxSupply.String()
	reply.Issuer = reg.Issuer
	return nil
}

type BalanceArgs struct {
	Owner  ident.Name `json:"owner"`
	Symbol string     `json:"symbol"`
}

type BalanceReply struct {
	Balance string `json:"balance"`
	Claimed bool   `json:"claimed"`
}

// Balance fails when no balance record exists. A record opened at zero
// still reports zero.
func (j *JSONRPCServer) Balance(req *http.Request, args *BalanceArgs, reply *BalanceReply) error {
	code, err := asset.ParseSymbolCode(args.Symbol)
	if err != nil {
		return err
	}
	b, exists, err := j.e.Balance(req.Context(), args.Owner, code)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s/%s", storage.ErrBalanceNotFound, args.Owner, code)
	}
	reply.Balance = b.Value.String()
	reply.Claimed = b.Claimed
	return nil
}

type RAMUsageArgs struct {
	Payer ident.Name `json:"payer"`
}

type RAMUsageReply struct {
	Bytes uint64 `json:"bytes"`
}

func (j *JSONRPCServer) RAMUsage(req *http.Request, args *RAMUsageArgs, reply *RAMUsageReply) error {
	used, err := j.e.RAMUsage(req.Context(), args.Payer)
	if err != nil {
		return err
	}
	reply.Bytes = used
	return nil
}

type SubmitArgs struct {
	Envelope *auth.Envelope `json:"envelope"`
}

type SubmitReply struct {
	Committed bool `json:"committed"`
}

func (j *JSONRPCServer) Submit(req *http.Request, args *SubmitArgs, reply *SubmitReply) error {
	if args.Envelope == nil {
		return errors.New("missing envelope")
	}
	if err := j.e.SubmitEnvelope(req.Context(), args.Envelope); err != nil {
		return err
	}
	reply.Committed = true
	return nil
}
