package backup

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelsos/blend-actions/internal/logger"
)

const snapshotName = "index.db"

// Snapshotter writes a consistent copy of the index database
type Snapshotter interface {
	Snapshot(ctx context.Context, path string) error
}

// GetDefaultBackupDir returns the default backup directory
func GetDefaultBackupDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, "backups"), nil
}

// CreateBackup zips a snapshot of the index database together with the import checkpoints in dataDir
func CreateBackup(ctx context.Context, db Snapshotter, dataDir, backupDir string) (string, error) {
	if backupDir == "" {
		var err error
		backupDir, err = GetDefaultBackupDir()
		if err != nil {
			return "", fmt.Errorf("failed to get default backup directory: %w", err)
		}
	}

	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	stagingDir, err := os.MkdirTemp("", "blend-actions-backup-")
	if err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	snapshotPath := filepath.Join(stagingDir, snapshotName)
	if err := db.Snapshot(ctx, snapshotPath); err != nil {
		return "", err
	}

	timestamp := time.Now().Format("20060102_150405")
	backupFile := filepath.Join(backupDir, fmt.Sprintf("actions_backup_%s.zip", timestamp))

	zipFile, err := os.Create(backupFile)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer zipFile.Close()

	zipWriter := zip.NewWriter(zipFile)

	if err := addFile(zipWriter, snapshotPath, snapshotName); err != nil {
		zipWriter.Close()
		return "", err
	}

	if dataDir != "" {
		entries, err := os.ReadDir(dataDir)
		if err != nil && !os.IsNotExist(err) {
			zipWriter.Close()
			return "", fmt.Errorf("failed to read data directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !ShouldIncludeInBackup(entry.Name()) {
				logger.Debug("Skipping file: %s", entry.Name())
				continue
			}
			if err := addFile(zipWriter, filepath.Join(dataDir, entry.Name()), entry.Name()); err != nil {
				zipWriter.Close()
				return "", err
			}
		}
	}

	if err := zipWriter.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize backup: %w", err)
	}

	logger.Info("Backup created successfully: %s", backupFile)
	return backupFile, nil
}

func addFile(zipWriter *zip.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to create file header: %w", err)
	}

	header.Name = name
	header.Method = zip.Deflate

	writer, err := zipWriter.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create file in zip: %w", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(writer, file); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}

	logger.Debug("Added file to backup: %s", name)
	return nil
}

// ShouldIncludeInBackup checks if a data directory file should be included next to the snapshot.
// The live database files are skipped since the snapshot replaces them.
func ShouldIncludeInBackup(name string) bool {
	return strings.HasSuffix(name, "_checkpoint.json")
}
