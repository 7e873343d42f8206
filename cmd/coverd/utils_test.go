// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"flag"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "gopkg.in/urfave/cli.v1"
)

func newContext(t *testing.T, args ...string) *cli.Context {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range []cli.Flag{dataDirFlag, genesisFlag, cacheFlag} {
		f.Apply(set)
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(nil, set, nil)
}

func TestReadIntFromUInt64Flag(t *testing.T) {
	got, err := readIntFromUInt64Flag(42)
	assert.NoError(t, err)
	assert.Equal(t, 42, got)

	got, err = readIntFromUInt64Flag(uint64(math.MaxInt))
	assert.NoError(t, err)
	assert.Equal(t, math.MaxInt, got)

	_, err = readIntFromUInt64Flag(uint64(math.MaxInt) + 1)
	assert.Error(t, err)
}

func TestLoadGenesis(t *testing.T) {
	gen, err := loadGenesis(newContext(t))
	require.NoError(t, err)
	assert.Equal(t, uint32(1), gen.Oracle.Threshold)

	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte("oracle:\n  threshold: 3\n  bootstrapEras: 20\n"), 0o600))
	gen, err = loadGenesis(newContext(t, "--genesis", path))
	require.NoError(t, err)
	assert.Equal(t, uint32(3), gen.Oracle.Threshold)
	assert.Equal(t, uint32(20), gen.Oracle.BootstrapEras)

	_, err = loadGenesis(newContext(t, "--genesis", filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, err)
}

func TestOpenDatabases(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	ctx := newContext(t, "--data-dir", dir)

	dataDir, err := makeDataDir(ctx)
	require.NoError(t, err)
	assert.Equal(t, dir, dataDir)

	ledger, err := openLedgerDB(ctx, dataDir)
	require.NoError(t, err)
	assert.NoError(t, ledger.Close())

	events, err := openEventDB(dataDir)
	require.NoError(t, err)
	assert.NoError(t, events.Close())

	_, err = makeDataDir(newContext(t, "--data-dir", ""))
	assert.Error(t, err)
}
