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
	"fmt"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/erigontech/devchain/node/nodecfg"
)

var (
	ConfigFlag = cli.StringFlag{
		Name:  "config",
		Usage: "Sets devchain flags from TOML configuration file",
	}

	HTTPListenAddrFlag = cli.StringFlag{
		Name:  "http.addr",
		Usage: "HTTP-RPC server listening interface",
		Value: nodecfg.DefaultHTTPHost,
	}
	HTTPPortFlag = cli.IntFlag{
		Name:  "http.port",
		Usage: "HTTP-RPC server listening port",
		Value: nodecfg.DefaultHTTPPort,
	}
	HTTPCORSDomainFlag = cli.StringFlag{
		Name:  "http.corsdomain",
		Usage: "Comma separated list of domains from which to accept cross origin requests (browser enforced)",
	}
	HTTPApiFlag = cli.StringFlag{
		Name:  "http.api",
		Usage: "API's offered over the HTTP-RPC interface",
		Value: strings.Join(nodecfg.DefaultHTTPModules, ","),
	}
	HTTPTraceFlag = cli.BoolFlag{
		Name:  "http.trace",
		Usage: "Print all HTTP requests to logs with INFO level",
	}
	RpcBatchLimit = cli.IntFlag{
		Name:  "rpc.batch.limit",
		Usage: "Maximum number of requests in a batch",
		Value: 100,
	}
	RpcMaxBodyFlag = cli.StringFlag{
		Name:  "rpc.maxbody",
		Usage: "Maximum size of an HTTP-RPC request body",
		Value: "5MB",
	}
	RpcAccessListFlag = cli.StringFlag{
		Name:  "rpc.accessList",
		Usage: "Specify granular (method-by-method) API allowlist",
	}

	ChainIDFlag = cli.Uint64Flag{
		Name:  "chain.id",
		Usage: "Chain id reported by eth_chainId and net_version",
		Value: nodecfg.DefaultChainID,
	}
	MinerGasLimitFlag = cli.Uint64Flag{
		Name:  "miner.gaslimit",
		Usage: "Target gas limit for mined blocks",
		Value: 30_000_000,
	}
	MinerGasPriceFlag = cli.Uint64Flag{
		Name:  "miner.gasprice",
		Usage: "Minimum gas price for mining a transaction",
	}
	MinerBaseFeeFlag = cli.Uint64Flag{
		Name:  "miner.basefee",
		Usage: "Base fee of mined blocks, 0 disables it",
	}
	MinerEtherbaseFlag = cli.StringFlag{
		Name:  "miner.etherbase",
		Usage: "Public address for block mining rewards",
	}
	MineAutoFlag = cli.BoolFlag{
		Name:  "mine.auto",
		Usage: "Mine a block for every admitted transaction",
		Value: true,
	}
	MineIntervalFlag = cli.DurationFlag{
		Name:  "mine.interval",
		Usage: "Mine a block every interval, 0 disables it",
	}

	AccountsCountFlag = cli.IntFlag{
		Name:  "accounts.count",
		Usage: "Number of unlocked dev accounts",
		Value: 10,
	}
	AccountsBalanceFlag = cli.Uint64Flag{
		Name:  "accounts.balance",
		Usage: "Initial balance of every dev account, in ether",
		Value: 10_000,
	}

	ForkURLFlag = cli.StringFlag{
		Name:  "fork.url",
		Usage: "JSON-RPC endpoint of the chain to fork",
	}
	ForkBlockFlag = cli.Uint64Flag{
		Name:  "fork.block",
		Usage: "Block to fork at, 0 means the latest one",
	}
	ForkTimeoutFlag = cli.DurationFlag{
		Name:  "fork.timeout",
		Usage: "Timeout of a single request to the fork source",
	}
	ForkRetriesFlag = cli.Uint64Flag{
		Name:  "fork.retries",
		Usage: "Retries of a failed request to the fork source",
	}
	ForkRPSFlag = cli.Float64Flag{
		Name:  "fork.rps",
		Usage: "Requests per second sent to the fork source, 0 is unlimited",
	}

	MetricsEnabledFlag = cli.BoolFlag{
		Name:  "metrics",
		Usage: "Enable metrics collection and reporting",
	}
	MetricsHTTPFlag = cli.StringFlag{
		Name:  "metrics.addr",
		Usage: "Enable stand-alone metrics HTTP server listening interface",
		Value: nodecfg.DefaultMetricsHost,
	}
	MetricsPortFlag = cli.IntFlag{
		Name:  "metrics.port",
		Usage: "Metrics HTTP server listening port",
		Value: nodecfg.DefaultMetricsPort,
	}
)

var DefaultFlags = []cli.Flag{
	&ConfigFlag,
	&HTTPListenAddrFlag,
	&HTTPPortFlag,
	&HTTPCORSDomainFlag,
	&HTTPApiFlag,
	&HTTPTraceFlag,
	&RpcBatchLimit,
	&RpcMaxBodyFlag,
	&RpcAccessListFlag,
	&ChainIDFlag,
	&MinerGasLimitFlag,
	&MinerGasPriceFlag,
	&MinerBaseFeeFlag,
	&MinerEtherbaseFlag,
	&MineAutoFlag,
	&MineIntervalFlag,
	&AccountsCountFlag,
	&AccountsBalanceFlag,
	&ForkURLFlag,
	&ForkBlockFlag,
	&ForkTimeoutFlag,
	&ForkRetriesFlag,
	&ForkRPSFlag,
	&MetricsEnabledFlag,
	&MetricsHTTPFlag,
	&MetricsPortFlag,
}

func splitAndTrim(input string) []string {
	var res []string
	for _, r := range strings.Split(input, ",") {
		if r = strings.TrimSpace(r); r != "" {
			res = append(res, r)
		}
	}
	return res
}

// applyFlags overrides cfg with the flags set on the command line. Flags left
// unset keep the value of the config file, or the default without one.
func applyFlags(ctx *cli.Context, cfg *nodecfg.Config) error {
	if ctx.IsSet(HTTPListenAddrFlag.Name) {
		cfg.HTTP.Addr = ctx.String(HTTPListenAddrFlag.Name)
	}
	if ctx.IsSet(HTTPPortFlag.Name) {
		cfg.HTTP.Port = ctx.Int(HTTPPortFlag.Name)
	}
	if ctx.IsSet(HTTPCORSDomainFlag.Name) {
		cfg.HTTP.CorsDomains = splitAndTrim(ctx.String(HTTPCORSDomainFlag.Name))
	}
	if ctx.IsSet(HTTPApiFlag.Name) {
		cfg.HTTP.API = splitAndTrim(ctx.String(HTTPApiFlag.Name))
	}
	if ctx.IsSet(HTTPTraceFlag.Name) {
		cfg.HTTP.TraceRequests = ctx.Bool(HTTPTraceFlag.Name)
	}
	if ctx.IsSet(RpcBatchLimit.Name) {
		cfg.HTTP.BatchLimit = ctx.Int(RpcBatchLimit.Name)
	}
	if ctx.IsSet(RpcMaxBodyFlag.Name) {
		var size datasize.ByteSize
		if err := size.UnmarshalText([]byte(ctx.String(RpcMaxBodyFlag.Name))); err != nil {
			return fmt.Errorf("invalid --%s: %w", RpcMaxBodyFlag.Name, err)
		}
		cfg.HTTP.MaxBodySize = size
	}
	if ctx.IsSet(RpcAccessListFlag.Name) {
		cfg.HTTP.AccessList = ctx.String(RpcAccessListFlag.Name)
	}

	if ctx.IsSet(ChainIDFlag.Name) {
		cfg.ChainID = ctx.Uint64(ChainIDFlag.Name)
	}
	if ctx.IsSet(MinerGasLimitFlag.Name) {
		cfg.TxPool.BlockGasLimit = ctx.Uint64(MinerGasLimitFlag.Name)
	}
	if ctx.IsSet(MinerGasPriceFlag.Name) {
		cfg.TxPool.MinGasPrice = ctx.Uint64(MinerGasPriceFlag.Name)
	}
	if ctx.IsSet(MinerBaseFeeFlag.Name) {
		cfg.Mining.BaseFee = ctx.Uint64(MinerBaseFeeFlag.Name)
	}
	if ctx.IsSet(MinerEtherbaseFlag.Name) {
		etherbase := ctx.String(MinerEtherbaseFlag.Name)
		if !common.IsHexAddress(etherbase) {
			return fmt.Errorf("invalid --%s: %q is not an address", MinerEtherbaseFlag.Name, etherbase)
		}
		cfg.Mining.Coinbase = common.HexToAddress(etherbase)
	}
	if ctx.IsSet(MineAutoFlag.Name) {
		cfg.Mining.Auto = ctx.Bool(MineAutoFlag.Name)
	}
	if ctx.IsSet(MineIntervalFlag.Name) {
		cfg.Mining.Interval = nodecfg.Duration(ctx.Duration(MineIntervalFlag.Name))
	}

	if ctx.IsSet(AccountsCountFlag.Name) {
		cfg.Accounts.Count = ctx.Int(AccountsCountFlag.Name)
	}
	if ctx.IsSet(AccountsBalanceFlag.Name) {
		cfg.Accounts.BalanceEther = ctx.Uint64(AccountsBalanceFlag.Name)
	}

	if ctx.IsSet(ForkURLFlag.Name) {
		cfg.Fork.URL = ctx.String(ForkURLFlag.Name)
	}
	if ctx.IsSet(ForkBlockFlag.Name) {
		cfg.Fork.Block = ctx.Uint64(ForkBlockFlag.Name)
	}
	if ctx.IsSet(ForkTimeoutFlag.Name) {
		cfg.Fork.Timeout = nodecfg.Duration(ctx.Duration(ForkTimeoutFlag.Name))
	}
	if ctx.IsSet(ForkRetriesFlag.Name) {
		cfg.Fork.MaxRetries = ctx.Uint64(ForkRetriesFlag.Name)
	}
	if ctx.IsSet(ForkRPSFlag.Name) {
		cfg.Fork.RateLimit = ctx.Float64(ForkRPSFlag.Name)
	}

	if ctx.IsSet(MetricsEnabledFlag.Name) {
		cfg.Metrics.Enabled = ctx.Bool(MetricsEnabledFlag.Name)
	}
	if ctx.IsSet(MetricsHTTPFlag.Name) {
		cfg.Metrics.Addr = ctx.String(MetricsHTTPFlag.Name)
	}
	if ctx.IsSet(MetricsPortFlag.Name) {
		cfg.Metrics.Port = ctx.Int(MetricsPortFlag.Name)
	}
	return cfg.Validate()
}
