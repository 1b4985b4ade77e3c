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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devchain.toml")
	err := os.WriteFile(path, []byte(`
chain_id = 1337

[http]
port = 9545
max_body_size = "10MB"

[mining]
auto = false
interval = "1500ms"
coinbase = "0x00000000000000000000000000000000000000aa"

[txpool]
block_gas_limit = 42000

[fork]
url = "http://localhost:8546"
timeout = "3s"
`), 0o600)
	require.NoError(t, err)

	cfg := DefaultConfig()
	require.NoError(t, LoadFile(path, &cfg))

	require.Equal(t, uint64(1337), cfg.ChainID)
	require.Equal(t, 9545, cfg.HTTP.Port)
	require.Equal(t, DefaultHTTPHost, cfg.HTTP.Addr)
	require.Equal(t, 10*datasize.MB, cfg.HTTP.MaxBodySize)
	require.False(t, cfg.Mining.Auto)
	require.Equal(t, Duration(1500*time.Millisecond), cfg.Mining.Interval)
	require.Equal(t, common.HexToAddress("0xaa"), cfg.Mining.Coinbase)
	require.Equal(t, uint64(42000), cfg.TxPool.BlockGasLimit)
	require.Equal(t, uint64(10), cfg.TxPool.PriceBump)
	require.True(t, cfg.Fork.Enabled())
	require.Equal(t, Duration(3*time.Second), cfg.Fork.Timeout)
	require.Equal(t, uint64(5), cfg.Fork.MaxRetries)
}

func TestLoadFileInvalid(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	require.Error(t, LoadFile(filepath.Join(dir, "missing.toml"), &cfg))

	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[txpool]\nblock_gas_limit = 0\n"), 0o600))
	cfg = DefaultConfig()
	require.ErrorContains(t, LoadFile(path, &cfg), "block gas limit")
}

func TestDefaultConfigIsolated(t *testing.T) {
	a := DefaultConfig()
	a.HTTP.API[0] = "debug"
	require.Equal(t, "eth", DefaultConfig().HTTP.API[0])
	require.NoError(t, a.Validate())
}
