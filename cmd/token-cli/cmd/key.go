// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var ErrMalformedKeyFile = errors.New("malformed key file")

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manages the signing key",
}

var keyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generates a new signing key and writes it to the key file",
	RunE: func(*cobra.Command, []string) error {
		if _, err := os.Stat(keyFile); err == nil {
			return fmt.Errorf("%s already exists, refusing to overwrite", keyFile)
		}
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return err
		}
		if err := os.WriteFile(keyFile, []byte(hex.EncodeToString(priv)), fsModeWrite); err != nil {
			return err
		}
		fmt.Printf("created key file %s\n", keyFile)
		fmt.Printf("public key: %s\n", hex.EncodeToString(priv.Public().(ed25519.PublicKey)))
		return nil
	},
}

var keyAddressCmd = &cobra.Command{
	Use:   "address",
	Short: "Prints the public key for the key file",
	RunE: func(*cobra.Command, []string) error {
		priv, err := loadKey()
		if err != nil {
			return err
		}
		fmt.Printf("public key: %s\n", hex.EncodeToString(priv.Public().(ed25519.PublicKey)))
		return nil
	},
}

func loadKey() (ed25519.PrivateKey, error) {
	b, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, err
	}
	raw, err := hex.DecodeString(strings.TrimSpace(string(b)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedKeyFile, keyFile)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: %s has %d bytes", ErrMalformedKeyFile, keyFile, len(raw))
	}
	return ed25519.PrivateKey(raw), nil
}
