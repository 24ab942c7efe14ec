package config

import (
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	tempDir := t.TempDir()
	if _, err := Initialize(tempDir, log.New(ioutil.Discard, "", 0)); err != nil {
		t.Fatal(err)
	}

	// Check that the config is valid
	cfg, err := Load(tempDir)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("OpenEventLog", func(t *testing.T) {
		fd, err := cfg.OpenEventLog()
		assert.Nil(t, err)
		fd.Close()

		_, err = os.Stat(filepath.Join(tempDir, "events.log"))
		assert.Nil(t, err)
	})

	t.Run("ReadEventLog", func(t *testing.T) {
		fd, err := cfg.ReadEventLog()
		assert.Nil(t, err)
		fd.Close()
	})

	t.Run("Load config file path", func(t *testing.T) {
		_, err := Load(filepath.Join(tempDir, ConfigurationName))
		assert.Nil(t, err)
	})
}

func TestInitialize_keepsExisting(t *testing.T) {
	tempDir := t.TempDir()
	custom := []byte("prompt: 'custom> '\n")
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, ConfigurationName), custom, 0600))

	cfg, err := Initialize(tempDir, log.New(ioutil.Discard, "", 0))
	require.NoError(t, err)
	assert.Equal(t, "custom> ", cfg.Prompt)

	got, err := os.ReadFile(filepath.Join(tempDir, ConfigurationName))
	require.NoError(t, err)
	assert.Equal(t, custom, got)
}

func TestInitialize_createsDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "config")

	_, err := Initialize(dir, log.New(ioutil.Discard, "", 0))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ConfigurationName))
	assert.NoError(t, err)
}
