//go:build integration

package freespacemap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gostonefire/freespacemap/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("loads a yaml file", func(t *testing.T) {
		// Prepare
		path := filepath.Join(t.TempDir(), "fsm.yaml")
		err := os.WriteFile(path, []byte("cache_pages: 16\ndirectory_blocks: 12\nevict_empty_first: true\n"), 0644)
		require.NoError(t, err, "write config file")

		// Execute
		config, err := LoadConfig(path)

		// Check
		assert.NoError(t, err, "load config")
		assert.Equal(t, Config{CachePages: 16, DirectoryBlocks: 12, EvictEmptyFirst: true}, config, "all fields read")
	})

	t.Run("missing fields fall back to defaults", func(t *testing.T) {
		// Prepare
		path := filepath.Join(t.TempDir(), "fsm.yaml")
		err := os.WriteFile(path, []byte("evict_empty_first: true\n"), 0644)
		require.NoError(t, err, "write config file")

		// Execute
		config, err := LoadConfig(path)

		// Check
		assert.NoError(t, err, "load config")
		expected := DefaultConfig()
		expected.EvictEmptyFirst = true
		assert.Equal(t, expected, config, "defaults filled in")
	})

	t.Run("error on malformed yaml", func(t *testing.T) {
		// Prepare
		path := filepath.Join(t.TempDir(), "fsm.yaml")
		err := os.WriteFile(path, []byte("cache_pages: [1, 2\n"), 0644)
		require.NoError(t, err, "write config file")

		// Execute
		_, err = LoadConfig(path)

		// Check
		assert.Error(t, err, "malformed yaml")
	})

	t.Run("error on missing file", func(t *testing.T) {
		// Execute
		_, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))

		// Check
		assert.ErrorIs(t, err, os.ErrNotExist, "missing file")
	})
}

func TestConfigureLogging(t *testing.T) {
	t.Run("writes debug lines to a file", func(t *testing.T) {
		// Prepare
		logPath := filepath.Join(t.TempDir(), "logs", "fsm.log")

		// Execute
		err := ConfigureLogging("debug", logPath)
		require.NoError(t, err, "configure logging")
		fsm, _, err := NewFreeSpaceMap(testName(t), DefaultConfig())
		require.NoError(t, err, "creates free space map")
		require.NoError(t, fsm.RemoveFiles(), "removes files")

		// Check
		data, err := os.ReadFile(logPath)
		assert.NoError(t, err, "log file written")
		assert.Contains(t, string(data), "free space map opened", "info line logged")

		// Clean up
		assert.NoError(t, logging.Close(), "restore default logger")
	})
}
