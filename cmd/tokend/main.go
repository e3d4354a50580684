// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// "tokend" runs the token ledger daemon: a pebble-backed engine behind a
// JSON-RPC API, with prometheus metrics on a separate port.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ledgerlabs/tokenledger/consts"
	"github.com/ledgerlabs/tokenledger/engine"
	"github.com/ledgerlabs/tokenledger/pebble"
	"github.com/ledgerlabs/tokenledger/rpc"
	"github.com/ledgerlabs/tokenledger/server"
)

var (
	configFile string

	rootCmd = &cobra.Command{
		Use:   "tokend",
		Short: "Token ledger daemon",
		RunE:  runFunc,
	}
)

func init() {
	cobra.EnablePrefixMatching = true
	rootCmd.PersistentFlags().StringVar(
		&configFile,
		"config",
		"",
		"path to JSON config file",
	)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Prints the daemon version",
	RunE: func(*cobra.Command, []string) error {
		fmt.Printf("%s %s\n", consts.Name, consts.Version)
		return nil
	},
}

func runFunc(*cobra.Command, []string) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	pebbleCfg := pebble.NewDefaultConfig()
	pebbleCfg.Sync = cfg.DatabaseSync
	db, dbRegistry, err := pebble.New(cfg.DatabaseDir, pebbleCfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		_ = db.Close()
	}()

	registry := prometheus.NewRegistry()
	if err := registry.Register(dbRegistry); err != nil {
		return err
	}
	e, err := engine.New(db, cfg.Self, log, registry)
	if err != nil {
		return err
	}

	genesisBytes, err := os.ReadFile(cfg.GenesisFile)
	if err != nil {
		return fmt.Errorf("read genesis: %w", err)
	}
	if err := e.Bootstrap(context.Background(), genesisBytes); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	handler, err := server.NewHandler(rpc.NewJSONRPCServer(e), consts.Name)
	if err != nil {
		return err
	}
	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.HTTPHost, cfg.HTTPPort))
	if err != nil {
		return err
	}
	srv := server.New(log, listener, cfg.HTTP, cfg.AllowedOrigins, cfg.ShutdownTimeout)
	if err := srv.AddRoute(handler, rpc.Endpoint); err != nil {
		return err
	}

	metricsSrv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTPHost, cfg.MetricsPort),
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("serving API",
			zap.String("address", listener.Addr().String()),
			zap.String("endpoint", rpc.Endpoint),
		)
		if err := srv.Dispatch(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("serving metrics",
			zap.String("address", metricsSrv.Addr),
		)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		_ = metricsSrv.Close()
		return srv.Shutdown()
	})
	return g.Wait()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
