// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ledgerlabs/tokenledger/ident"
	"github.com/ledgerlabs/tokenledger/server"
)

type Config struct {
	Self ident.Name `json:"self"`

	HTTPHost       string   `json:"httpHost"`
	HTTPPort       int      `json:"httpPort"`
	MetricsPort    int      `json:"metricsPort"`
	AllowedOrigins []string `json:"allowedOrigins"`

	HTTP server.HTTPConfig `json:"http"`

	DatabaseDir  string `json:"databaseDir"`
	DatabaseSync bool   `json:"databaseSync"`

	GenesisFile string `json:"genesisFile"`

	LogLevel      string `json:"logLevel"`
	LogFile       string `json:"logFile"` // empty logs to stderr only
	LogMaxSizeMB  int    `json:"logMaxSizeMB"`
	LogMaxBackups int    `json:"logMaxBackups"`
	LogMaxAgeDays int    `json:"logMaxAgeDays"`

	ShutdownTimeout time.Duration `json:"shutdownTimeout"`
}

func defaultConfig() Config {
	return Config{
		Self:           "token.ledger",
		HTTPHost:       "127.0.0.1",
		HTTPPort:       9650,
		MetricsPort:    9651,
		AllowedOrigins: []string{"*"},
		HTTP: server.HTTPConfig{
			ReadTimeout:       30 * time.Second,
			ReadHeaderTimeout: 30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		DatabaseDir:     ".tokend/db",
		GenesisFile:     "genesis.json",
		LogLevel:        "info",
		LogMaxSizeMB:    100,
		LogMaxBackups:   5,
		LogMaxAgeDays:   30,
		ShutdownTimeout: 10 * time.Second,
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
