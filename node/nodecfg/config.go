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

package nodecfg

import (
	"fmt"
	"os"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pelletier/go-toml/v2"

	"github.com/erigontech/devchain/txnprovider/txpool/txpoolcfg"
)

const (
	DefaultHTTPHost    = "127.0.0.1"
	DefaultHTTPPort    = 8545
	DefaultMetricsHost = "127.0.0.1"
	DefaultMetricsPort = 6061
	DefaultChainID     = 31337

	// DefaultMnemonicSeed is the seed dev accounts are derived from.
	DefaultMnemonicSeed = "test test test test test test test test test test test junk"
)

// DefaultHTTPModules are the API namespaces exposed when --http.api is unset.
var DefaultHTTPModules = []string{"eth", "net", "web3", "txpool", "hardhat", "evm"}

// Duration is a time.Duration that reads and writes as a string ("1s", "250ms")
// in config files.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

type HTTPConfig struct {
	Addr          string            `toml:"addr"`
	Port          int               `toml:"port"`
	CorsDomains   []string          `toml:"cors_domains"`
	API           []string          `toml:"api"`
	BatchLimit    int               `toml:"batch_limit"`
	MaxBodySize   datasize.ByteSize `toml:"max_body_size"`
	AccessList    string            `toml:"access_list"` // path to a JSON allow list
	TraceRequests bool              `toml:"trace_requests"`
}

func (c HTTPConfig) Endpoint() string { return fmt.Sprintf("%s:%d", c.Addr, c.Port) }

type MiningConfig struct {
	// Auto mines every admitted transaction right away.
	Auto bool `toml:"auto"`
	// Interval mines a block every period, zero disables it. Both can be on.
	Interval Duration       `toml:"interval"`
	Coinbase common.Address `toml:"coinbase"`
	BaseFee  uint64         `toml:"base_fee"`
}

type AccountsConfig struct {
	Count        int    `toml:"count"`
	BalanceEther uint64 `toml:"balance_ether"`
	Seed         string `toml:"seed"`
}

// ForkConfig enables fork mode when URL is set. Block zero means the latest
// remote block at startup.
type ForkConfig struct {
	URL        string   `toml:"url"`
	Block      uint64   `toml:"block"`
	Timeout    Duration `toml:"timeout"`
	MaxRetries uint64   `toml:"max_retries"`
	RateLimit  float64  `toml:"rate_limit"` // requests per second, zero is unlimited
	CacheSize  int      `toml:"cache_size"`
}

func (c ForkConfig) Enabled() bool { return c.URL != "" }

type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
	Port    int    `toml:"port"`
}

func (c MetricsConfig) Endpoint() string { return fmt.Sprintf("%s:%d", c.Addr, c.Port) }

// Config represents a small collection of configuration values to fine tune the
// dev node.
type Config struct {
	ChainID  uint64           `toml:"chain_id"`
	HTTP     HTTPConfig       `toml:"http"`
	Mining   MiningConfig     `toml:"mining"`
	TxPool   txpoolcfg.Config `toml:"txpool"`
	Accounts AccountsConfig   `toml:"accounts"`
	Fork     ForkConfig       `toml:"fork"`
	Metrics  MetricsConfig    `toml:"metrics"`
}

func DefaultConfig() Config {
	return Config{
		ChainID: DefaultChainID,
		HTTP: HTTPConfig{
			Addr:        DefaultHTTPHost,
			Port:        DefaultHTTPPort,
			API:         append([]string(nil), DefaultHTTPModules...),
			BatchLimit:  100,
			MaxBodySize: 5 * datasize.MB,
		},
		Mining: MiningConfig{
			Auto:     true,
			Coinbase: common.HexToAddress("0xc014ba5ec014ba5ec014ba5ec014ba5ec014ba5e"),
		},
		TxPool: txpoolcfg.DefaultConfig,
		Accounts: AccountsConfig{
			Count:        10,
			BalanceEther: 10_000,
			Seed:         DefaultMnemonicSeed,
		},
		Fork: ForkConfig{
			Timeout:    Duration(20 * time.Second),
			MaxRetries: 5,
		},
		Metrics: MetricsConfig{
			Addr: DefaultMetricsHost,
			Port: DefaultMetricsPort,
		},
	}
}

// LoadFile reads the TOML file at path over cfg. Keys missing from the file
// keep the values already in cfg.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg.Validate()
}

func (c *Config) Validate() error {
	if c.TxPool.BlockGasLimit == 0 {
		return fmt.Errorf("block gas limit must be greater than zero")
	}
	if c.Accounts.Count < 0 {
		return fmt.Errorf("negative account count %d", c.Accounts.Count)
	}
	if c.HTTP.BatchLimit < 0 {
		return fmt.Errorf("negative batch limit %d", c.HTTP.BatchLimit)
	}
	return nil
}
