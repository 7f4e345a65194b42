package backup

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/blend-actions/internal/amount"
	"github.com/kelsos/blend-actions/internal/models"
	"github.com/kelsos/blend-actions/internal/storage"
)

func TestCreateBackup(t *testing.T) {
	dataDir := t.TempDir()
	backupDir := filepath.Join(t.TempDir(), "backups")

	store, err := storage.Open(filepath.Join(dataDir, "index.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.InsertCollateral(context.Background(), []models.CollateralRecord{
		{Timestamp: 1, Ledger: 1, Pool: "P", Asset: "A", Collateral: amount.NewInt128(5), Delta: amount.NewInt128(5), Source: "addr1"},
	}))
	require.NoError(t, storage.SaveCheckpoint(dataDir, storage.TableCollateral, 1))

	backupFile, err := CreateBackup(context.Background(), store, dataDir, backupDir)
	require.NoError(t, err)
	assert.Equal(t, backupDir, filepath.Dir(backupFile))

	reader, err := zip.OpenReader(backupFile)
	require.NoError(t, err)
	defer reader.Close()

	var names []string
	for _, f := range reader.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"clateral_checkpoint.json", "index.db"}, names)

	// the snapshot is a working index
	extracted := filepath.Join(t.TempDir(), "restored.db")
	require.NoError(t, extract(reader, "index.db", extracted))

	restored, err := storage.Open(extracted)
	require.NoError(t, err)
	defer restored.Close()

	records, err := restored.Collaterals(context.Background(), "addr1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestShouldIncludeInBackup(t *testing.T) {
	assert.True(t, ShouldIncludeInBackup("borrowed_checkpoint.json"))
	assert.False(t, ShouldIncludeInBackup("index.db"))
	assert.False(t, ShouldIncludeInBackup("index.db-wal"))
}

func extract(reader *zip.ReadCloser, name, dest string) error {
	for _, f := range reader.File {
		if f.Name != name {
			continue
		}
		src, err := f.Open()
		if err != nil {
			return err
		}
		defer src.Close()

		out, err := os.Create(dest)
		if err != nil {
			return err
		}
		defer out.Close()

		_, err = io.Copy(out, src)
		return err
	}
	return fmt.Errorf("%s not in archive", name)
}
