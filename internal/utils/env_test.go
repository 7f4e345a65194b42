package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvironment(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "custom.env")
	require.NoError(t, os.WriteFile(envFile, []byte("ACTIONS_TEST_VALUE=from-file\nACTIONS_TEST_PRESET=from-file\n"), 0600))

	t.Setenv("ACTIONS_ENV_FILE", envFile)
	t.Setenv("ACTIONS_TEST_PRESET", "from-env")
	t.Setenv("ACTIONS_TEST_VALUE", "")
	os.Unsetenv("ACTIONS_TEST_VALUE")

	loaded := LoadEnvironment()

	assert.Contains(t, loaded, envFile)
	assert.Equal(t, "from-file", os.Getenv("ACTIONS_TEST_VALUE"))
	assert.Equal(t, "from-env", os.Getenv("ACTIONS_TEST_PRESET"))
}
