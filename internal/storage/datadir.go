package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// CheckpointData records the highest ledger imported into a table
type CheckpointData struct {
	LastLedger uint32 `json:"last_ledger"`
	UpdatedAt  int64  `json:"updated_at"`
}

// GetAppDataDir returns the application data directory
func GetAppDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	appDataDir := filepath.Join(homeDir, ".blend-actions")
	if err := os.MkdirAll(appDataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create app data directory: %w", err)
	}

	return appDataDir, nil
}

// DefaultDBPath returns the index database path inside dataDir, or inside the app data dir when dataDir is empty
func DefaultDBPath(dataDir string) (string, error) {
	if dataDir == "" {
		var err error
		dataDir, err = GetAppDataDir()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(dataDir, "index.db"), nil
}

func checkpointPath(dataDir, table string) string {
	return filepath.Join(dataDir, fmt.Sprintf("%s_checkpoint.json", table))
}

// SaveCheckpoint saves the last imported ledger for a table
func SaveCheckpoint(dataDir, table string, ledger uint32) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data := CheckpointData{
		LastLedger: ledger,
		UpdatedAt:  time.Now().Unix(),
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint data: %w", err)
	}

	if err := os.WriteFile(checkpointPath(dataDir, table), jsonData, 0600); err != nil {
		return fmt.Errorf("failed to write checkpoint file: %w", err)
	}

	return nil
}

// GetLastCheckpoint returns the last imported ledger for a table, 0 if nothing was imported yet
func GetLastCheckpoint(dataDir, table string) (uint32, error) {
	filePath := checkpointPath(dataDir, table)

	if _, statErr := os.Stat(filePath); os.IsNotExist(statErr) {
		return 0, nil
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to read checkpoint file: %w", err)
	}

	var data CheckpointData
	if err := json.Unmarshal(fileData, &data); err != nil {
		return 0, fmt.Errorf("failed to unmarshal checkpoint data: %w", err)
	}

	return data.LastLedger, nil
}
