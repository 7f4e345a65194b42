package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kelsos/blend-actions/internal/amount"
	"github.com/kelsos/blend-actions/internal/storage"
)

// Config holds all application configuration
type Config struct {
	// Storage settings
	DataDir string
	DBPath  string

	// Server settings
	Port            int
	RequestTimeout  time.Duration
	APIReadyTimeout int

	// Resolver settings
	OverflowPolicy amount.Policy
	Concurrency    int

	// API settings
	ServerURL string

	// Backup settings
	BackupDir string
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		DataDir:         "~/.blend-actions",
		Port:            59010,
		RequestTimeout:  30 * time.Second,
		APIReadyTimeout: 30,
		OverflowPolicy:  amount.PolicyError,
		Concurrency:     1,
		BackupDir:       "~/backups",
	}
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() error {
	if dataDir := os.Getenv("ACTIONS_DATA_DIR"); dataDir != "" {
		c.DataDir = dataDir
	}

	if dbPath := os.Getenv("ACTIONS_DB_PATH"); dbPath != "" {
		c.DBPath = dbPath
	}

	if port := os.Getenv("ACTIONS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Port = p
		}
	}

	if timeout := os.Getenv("ACTIONS_REQUEST_TIMEOUT"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			c.RequestTimeout = time.Duration(t) * time.Millisecond
		}
	}

	if timeout := os.Getenv("ACTIONS_API_TIMEOUT"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			c.APIReadyTimeout = t
		}
	}

	if policy := os.Getenv("ACTIONS_OVERFLOW_POLICY"); policy != "" {
		p, err := amount.ParsePolicy(policy)
		if err != nil {
			return err
		}
		c.OverflowPolicy = p
	}

	if concurrency := os.Getenv("ACTIONS_CONCURRENCY"); concurrency != "" {
		if n, err := strconv.Atoi(concurrency); err == nil {
			c.Concurrency = n
		}
	}

	if serverURL := os.Getenv("ACTIONS_SERVER_URL"); serverURL != "" {
		c.ServerURL = serverURL
	}

	if backupDir := os.Getenv("ACTIONS_BACKUP_DIR"); backupDir != "" {
		c.BackupDir = backupDir
	}

	return nil
}

// SetBaseURL sets the server URL from the configured port unless one was given
func (c *Config) SetBaseURL() {
	if c.ServerURL == "" {
		c.ServerURL = fmt.Sprintf("http://localhost:%d", c.Port)
	}
}

// ResolvePaths expands ~ in directories and derives the database path from the data dir
func (c *Config) ResolvePaths() error {
	var err error
	if c.DataDir, err = expandHome(c.DataDir); err != nil {
		return err
	}
	if c.BackupDir, err = expandHome(c.BackupDir); err != nil {
		return err
	}
	if c.DBPath == "" {
		if c.DBPath, err = storage.DefaultDBPath(c.DataDir); err != nil {
			return err
		}
	} else if c.DBPath != ":memory:" {
		if c.DBPath, err = expandHome(c.DBPath); err != nil {
			return err
		}
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !(len(path) > 1 && path[:2] == "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Port < 1024 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1024 and 65535, got: %d", c.Port)
	}

	if c.DBPath == "" && c.DataDir == "" {
		return fmt.Errorf("either a database path or a data directory is required")
	}

	if c.APIReadyTimeout <= 0 {
		return fmt.Errorf("API ready timeout must be positive, got: %d", c.APIReadyTimeout)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got: %s", c.RequestTimeout)
	}

	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got: %d", c.Concurrency)
	}

	if _, err := amount.ParsePolicy(string(c.OverflowPolicy)); err != nil {
		return err
	}

	return nil
}
