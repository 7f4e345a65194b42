package utils

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadEnvironment loads environment variables from .env files and returns the files it loaded.
// ACTIONS_ENV_FILE is tried first, then the current directory, then the directory of the executable.
// Variables already set are never overridden, so earlier files win.
func LoadEnvironment() []string {
	candidates := make([]string, 0, 3)
	if envFile := os.Getenv("ACTIONS_ENV_FILE"); envFile != "" {
		candidates = append(candidates, envFile)
	}
	candidates = append(candidates, ".env")

	if execPath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(execPath), ".env"))
	}

	loaded := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, path := range candidates {
		abs, err := filepath.Abs(path)
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true

		if err := godotenv.Load(abs); err == nil {
			loaded = append(loaded, abs)
		}
	}

	return loaded
}
