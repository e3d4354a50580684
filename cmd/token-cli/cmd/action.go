// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ledgerlabs/tokenledger/actions"
	"github.com/ledgerlabs/tokenledger/asset"
	"github.com/ledgerlabs/tokenledger/auth"
	"github.com/ledgerlabs/tokenledger/ident"
	"github.com/ledgerlabs/tokenledger/rpc"
)

var ErrNoSigner = errors.New("--signer is required")

// submit signs [op] with the key file and sends it to the endpoint.
func submit(op actions.Action) error {
	if signer == "" {
		return ErrNoSigner
	}
	name, err := ident.Parse(signer)
	if err != nil {
		return err
	}
	priv, err := loadKey()
	if err != nil {
		return err
	}
	env, err := auth.Sign(op, name, uint64(time.Now().UnixNano()), priv)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err := rpc.NewJSONRPCClient(uri).Submit(ctx, env); err != nil {
		return err
	}
	fmt.Printf("%s committed\n", op.OpName())
	return nil
}

// confirm asks before anything that moves or destroys value.
func confirm(label string) error {
	prompt := promptui.Prompt{
		Label: fmt.Sprintf("%s (y/n)", label),
		Validate: func(input string) error {
			if len(input) == 0 {
				return errors.New("input is empty")
			}
			lower := strings.ToLower(input)
			if lower != "y" && lower != "n" {
				return errors.New("invalid choice")
			}
			return nil
		},
	}
	choice, err := prompt.Run()
	if err != nil {
		return err
	}
	if strings.ToLower(choice) != "y" {
		return errors.New("aborted")
	}
	return nil
}

var createCmd = &cobra.Command{
	Use:   "create [issuer] [max supply]",
	Short: "Registers a new symbol",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		max, err := asset.Parse(args[1])
		if err != nil {
			return err
		}
		return submit(&actions.Create{Issuer: ident.Name(args[0]), MaxSupply: max})
	},
}

var updateCmd = &cobra.Command{
	Use:   "update [issuer] [max supply]",
	Short: "Replaces a symbol's issuer and supply ceiling",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		max, err := asset.Parse(args[1])
		if err != nil {
			return err
		}
		return submit(&actions.Update{Issuer: ident.Name(args[0]), MaxSupply: max})
	},
}

var (
	memo string

	issueCmd = &cobra.Command{
		Use:   "issue [to] [quantity]",
		Short: "Mints new supply to the issuer",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			q, err := asset.Parse(args[1])
			if err != nil {
				return err
			}
			return submit(&actions.Issue{To: ident.Name(args[0]), Quantity: q, Memo: memo})
		},
	}

	issueTransferCmd = &cobra.Command{
		Use:   "issue-transfer [to] [quantity]",
		Short: "Mints new supply and forwards it in one operation",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			q, err := asset.Parse(args[1])
			if err != nil {
				return err
			}
			return submit(&actions.IssueTransfer{To: ident.Name(args[0]), Quantity: q, Memo: memo})
		},
	}

	transferCmd = &cobra.Command{
		Use:   "transfer [from] [to] [quantity]",
		Short: "Moves value between accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			q, err := asset.Parse(args[2])
			if err != nil {
				return err
			}
			if err := confirm(fmt.Sprintf("send %s from %s to %s", q, args[0], args[1])); err != nil {
				return err
			}
			return submit(&actions.Transfer{
				From:     ident.Name(args[0]),
				To:       ident.Name(args[1]),
				Quantity: q,
				Memo:     memo,
			})
		},
	}
)

func init() {
	for _, c := range []*cobra.Command{issueCmd, issueTransferCmd, transferCmd} {
		c.PersistentFlags().StringVar(&memo, "memo", "", "operation memo")
	}
}

var burnCmd = &cobra.Command{
	Use:   "burn [from] [quantity]",
	Short: "Destroys supply held by an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		q, err := asset.Parse(args[1])
		if err != nil {
			return err
		}
		if err := confirm(fmt.Sprintf("burn %s from %s", q, args[0])); err != nil {
			return err
		}
		return submit(&actions.Burn{From: ident.Name(args[0]), Quantity: q})
	},
}

var claimCmd = &cobra.Command{
	Use:   "claim [owner] [symbol]",
	Short: "Takes over storage billing for a balance",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		sym, err := asset.ParseSymbol(args[1])
		if err != nil {
			return err
		}
		return submit(&actions.Claim{Owner: ident.Name(args[0]), Symbol: sym})
	},
}

var recoverCmd = &cobra.Command{
	Use:   "recover [owner] [symbol]",
	Short: "Sweeps an unclaimed balance back to the issuer",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		sym, err := asset.ParseSymbol(args[1])
		if err != nil {
			return err
		}
		if err := confirm(fmt.Sprintf("recover %s balance of %s", sym.Code, args[0])); err != nil {
			return err
		}
		return submit(&actions.Recover{Owner: ident.Name(args[0]), Symbol: sym})
	},
}

var (
	ramPayer string

	openCmd = &cobra.Command{
		Use:   "open [owner] [symbol]",
		Short: "Creates a zero balance record",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			sym, err := asset.ParseSymbol(args[1])
			if err != nil {
				return err
			}
			payer := ident.Name(ramPayer)
			if ramPayer == "" {
				payer = ident.Name(args[0])
			}
			return submit(&actions.Open{Owner: ident.Name(args[0]), Symbol: sym, RAMPayer: payer})
		},
	}
)

func init() {
	openCmd.PersistentFlags().StringVar(&ramPayer, "ram-payer", "", "identity billed for the record (defaults to owner)")
}

var closeCmd = &cobra.Command{
	Use:   "close [owner] [symbol]",
	Short: "Removes a zero balance record",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		sym, err := asset.ParseSymbol(args[1])
		if err != nil {
			return err
		}
		return submit(&actions.Close{Owner: ident.Name(args[0]), Symbol: sym})
	},
}
