package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/blend-actions/internal/config"
	"github.com/kelsos/blend-actions/internal/models"
)

func TestReadRequest(t *testing.T) {
	req, err := readRequest([]string{"a", "b"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, req.Addresses)

	path := filepath.Join(t.TempDir(), "request.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"addresses":["x"]}`), 0600))

	req, err = readRequest(nil, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, req.Addresses)

	_, err = readRequest([]string{"a"}, path)
	assert.Error(t, err)
}

func TestWriteResult(t *testing.T) {
	result := models.ActionsByAddress{"a": {}}

	var buf bytes.Buffer
	require.NoError(t, writeResult(&buf, "json", result))
	assert.JSONEq(t, `{"a": []}`, buf.String())

	buf.Reset()
	require.NoError(t, writeResult(&buf, "table", result))
	assert.Contains(t, buf.String(), "no actions")

	assert.Error(t, writeResult(&buf, "csv", result))
}

func TestResolveCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.DataDir = dir
	require.NoError(t, cfg.ResolvePaths())

	records := filepath.Join(dir, "records.json")
	require.NoError(t, os.WriteFile(records, []byte(`{
		"clateral": [{"timestamp":100,"ledger":5,"pool":"P1","asset":"USDC","clateral":"1000","delta":"1000","source":"addr1"}],
		"borrowed": []
	}`), 0600))

	importCmd := newImportCmd(cfg)
	importCmd.SetArgs([]string{records})
	importCmd.SetOut(&bytes.Buffer{})
	require.NoError(t, importCmd.ExecuteContext(context.Background()))

	var out bytes.Buffer
	resolveCmd := newResolveCmd(cfg)
	resolveCmd.SetArgs([]string{"addr1"})
	resolveCmd.SetOut(&out)
	require.NoError(t, resolveCmd.ExecuteContext(context.Background()))

	assert.JSONEq(t, `{"addr1":[{"kind":"Collateral","timestamp":100,"ledger":5,"pool":"P1","asset":"USDC","tvl":1000,"delta":1000,"source":"addr1"}]}`, out.String())

	_, err := os.Stat(filepath.Join(dir, "index.db"))
	assert.NoError(t, err)
}
