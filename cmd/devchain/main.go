// Copyright 2025 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ledgerwatch/log/v3"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/erigontech/devchain/node"
	"github.com/erigontech/devchain/node/nodecfg"
	"github.com/erigontech/devchain/rpc"
	"github.com/erigontech/devchain/turbo/logging"
)

const shutdownTimeout = 5 * time.Second

func main() {
	app := cli.NewApp()
	app.Name = "devchain"
	app.Usage = "Local development chain with automining and mainnet forking"
	app.Version = "0.1.0"
	app.Flags = append(append([]cli.Flag{}, DefaultFlags...), logging.Flags...)
	app.Action = runDevchain

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cliCtx *cli.Context) (nodecfg.Config, error) {
	cfg := nodecfg.DefaultConfig()
	if path := cliCtx.String(ConfigFlag.Name); path != "" {
		if err := nodecfg.LoadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := applyFlags(cliCtx, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func runDevchain(cliCtx *cli.Context) error {
	logger := logging.SetupLoggerCtx("devchain", cliCtx)

	cfg, err := loadConfig(cliCtx)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cliCtx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	n, err := node.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to start node: %w", err)
	}
	defer n.Close()

	srv := rpc.NewServer(cfg.HTTP.BatchLimit, cfg.HTTP.TraceRequests, logger)
	defer srv.Stop()
	if cfg.HTTP.AccessList != "" {
		data, err := os.ReadFile(cfg.HTTP.AccessList)
		if err != nil {
			return fmt.Errorf("failed to read access list: %w", err)
		}
		allowList, err := rpc.ParseAccessList(data)
		if err != nil {
			return err
		}
		srv.SetAllowList(allowList)
	}
	if err := srv.RegisterAPIs(n.APIs(), cfg.HTTP.API); err != nil {
		return err
	}

	handler := rpc.NewHTTPHandler(srv, rpc.HTTPConfig{
		CorsDomains: cfg.HTTP.CorsDomains,
		MaxBodySize: cfg.HTTP.MaxBodySize,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return n.Run(ctx) })
	g.Go(func() error {
		return serve(ctx, &http.Server{Addr: cfg.HTTP.Endpoint(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}, "HTTP endpoint", logger)
	})
	if cfg.Metrics.Enabled {
		g.Go(func() error {
			return serve(ctx, &http.Server{Addr: cfg.Metrics.Endpoint(), Handler: metricsRouter(), ReadHeaderTimeout: 10 * time.Second}, "metrics endpoint", logger)
		})
	}

	for i, addr := range n.Accounts() {
		logger.Info("[node] dev account", "index", i, "address", addr)
	}
	logger.Info("[node] devchain started", "chainID", cfg.ChainID, "http", cfg.HTTP.Endpoint(), "automine", cfg.Mining.Auto, "fork", cfg.Fork.URL)

	return g.Wait()
}

// serve runs srv until ctx is cancelled and then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, name string, logger log.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("[node] "+name+" started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("[node] "+name+" shutdown failed", "err", err)
	}
	logger.Info("[node] " + name + " stopped")
	return nil
}
