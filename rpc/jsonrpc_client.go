// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"fmt"
	"strings"

	arpc "github.com/ava-labs/avalanchego/utils/rpc"

	"github.com/ledgerlabs/tokenledger/asset"
	"github.com/ledgerlabs/tokenledger/auth"
	"github.com/ledgerlabs/tokenledger/consts"
	"github.com/ledgerlabs/tokenledger/genesis"
	"github.com/ledgerlabs/tokenledger/ident"
	"github.com/ledgerlabs/tokenledger/storage"
)

type JSONRPCClient struct {
	requester arpc.EndpointRequester

	g *genesis.Genesis
}

func NewJSONRPCClient(uri string) *JSONRPCClient {
	uri = strings.TrimSuffix(uri, "/")
	uri += Endpoint
	return &JSONRPCClient{requester: arpc.NewEndpointRequester(uri)}
}

func (cli *JSONRPCClient) method(name string) string {
	return fmt.Sprintf("%s.%s", consts.Name, name)
}

// Genesis returns (and caches) the server's genesis document.
func (cli *JSONRPCClient) Genesis(ctx context.Context) (*genesis.Genesis, error) {
	if cli.g != nil {
		return cli.g, nil
	}
	resp := new(GenesisReply)
	if err := cli.requester.SendRequest(ctx, cli.method("genesis"), nil, resp); err != nil {
		return nil, err
	}
	cli.g = resp.Genesis
	return resp.Genesis, nil
}

func (cli *JSONRPCClient) Supply(ctx context.Context, symbol string) (storage.Registry, error) {
	resp := new(SupplyReply)
	err := cli.requester.SendRequest(
		ctx,
		cli.method("supply"),
		&SupplyArgs{Symbol: symbol},
		resp,
	)
	if err != nil {
		return storage.Registry{}, err
	}
	supply, err := asset.Parse(resp.Supply)
	if err != nil {
		return storage.Registry{}, err
	}
	maxSupply, err := asset.Parse(resp.MaxSupply)
	if err != nil {
		return storage.Registry{}, err
	}
	return storage.Registry{
		Supply:    supply,
		MaxSupply: maxSupply,
		Issuer:    resp.Issuer,
	}, nil
}

// Balance errors when the owner holds no record of the symbol, matching
// the server contract.
func (cli *JSONRPCClient) Balance(
	ctx context.Context,
	owner ident.Name,
	symbol string,
) (asset.Asset, bool, error) {
	resp := new(BalanceReply)
	err := cli.requester.SendRequest(
		ctx,
		cli.method("balance"),
		&BalanceArgs{Owner: owner, Symbol: symbol},
		resp,
	)
	if err != nil {
		return asset.Asset{}, false, err
	}
	b, err := asset.Parse(resp.Balance)
	if err != nil {
		return asset.Asset{}, false, err
	}
	return b, resp.Claimed, nil
}

func (cli *JSONRPCClient) RAMUsage(ctx context.Context, payer ident.Name) (uint64, error) {
	resp := new(RAMUsageReply)
	err := cli.requester.SendRequest(
		ctx,
		cli.method("rAMUsage"),
		&RAMUsageArgs{Payer: payer},
		resp,
	)
	return resp.Bytes, err
}

func (cli *JSONRPCClient) Submit(ctx context.Context, env *auth.Envelope) error {
	resp := new(SubmitReply)
	return cli.requester.SendRequest(
		ctx,
		cli.method("submit"),
		&SubmitArgs{Envelope: env},
		resp,
	)
}
