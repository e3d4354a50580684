// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// "token-cli" implements the ledger client operation interface.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const (
	requestTimeout = 30 * time.Second
	fsModeWrite    = 0o600
)

var (
	uri     string
	keyFile string
	signer  string

	rootCmd = &cobra.Command{
		Use:        "token-cli",
		Short:      "Token ledger CLI",
		SuggestFor: []string{"token-cli", "tokencli"},
	}
)

func init() {
	cobra.EnablePrefixMatching = true
	rootCmd.PersistentFlags().StringVar(
		&uri,
		"endpoint",
		"http://127.0.0.1:9650",
		"RPC endpoint",
	)
	rootCmd.PersistentFlags().StringVar(
		&keyFile,
		"key-file",
		".token-cli.pk",
		"private key file",
	)
	rootCmd.PersistentFlags().StringVar(
		&signer,
		"signer",
		"",
		"identity submitting operations",
	)

	rootCmd.AddCommand(
		keyCmd,

		genesisCmd,
		supplyCmd,
		balanceCmd,
		ramCmd,

		createCmd,
		updateCmd,
		issueCmd,
		issueTransferCmd,
		burnCmd,
		transferCmd,
		claimCmd,
		recoverCmd,
		openCmd,
		closeCmd,
	)

	keyCmd.AddCommand(
		keyGenerateCmd,
		keyAddressCmd,
	)
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
