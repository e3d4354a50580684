// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerlabs/tokenledger/ident"
	"github.com/ledgerlabs/tokenledger/rpc"
)

var genesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "Prints the ledger's genesis document",
	RunE: func(*cobra.Command, []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		g, err := rpc.NewJSONRPCClient(uri).Genesis(ctx)
		if err != nil {
			return err
		}
		b, err := json.MarshalIndent(g, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	},
}

var supplyCmd = &cobra.Command{
	Use:   "supply [symbol]",
	Short: "Prints a symbol's supply, ceiling, and issuer",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		reg, err := rpc.NewJSONRPCClient(uri).Supply(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("supply:     %s\n", reg.Supply)
		fmt.Printf("max supply: %s\n", reg.MaxSupply)
		fmt.Printf("issuer:     %s\n", reg.Issuer)
		return nil
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance [owner] [symbol]",
	Short: "Prints an owner's balance of a symbol",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		b, claimed, err := rpc.NewJSONRPCClient(uri).Balance(ctx, ident.Name(args[0]), args[1])
		if err != nil {
			return err
		}
		fmt.Printf("balance: %s\n", b)
		fmt.Printf("claimed: %t\n", claimed)
		return nil
	},
}

var ramCmd = &cobra.Command{
	Use:   "ram [payer]",
	Short: "Prints the storage bytes billed to a payer",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		used, err := rpc.NewJSONRPCClient(uri).RAMUsage(ctx, ident.Name(args[0]))
		if err != nil {
			return err
		}
		fmt.Printf("ram: %d bytes\n", used)
		return nil
	},
}
