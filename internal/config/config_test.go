package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Invoice.StartingNumber)
	assert.Equal(t, 1, cfg.Invoice.DefaultQuantity)
	assert.Equal(t, "stderr", cfg.Log.Output)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
invoice:
  starting_number: 2000
  default_quantity: 0
instructor:
  name: Alex Rivera
  license: D-12345
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.Invoice.StartingNumber)
	assert.Equal(t, 1, cfg.Invoice.DefaultQuantity)
	assert.Equal(t, "Alex Rivera", cfg.Instructor.Name)
	assert.Equal(t, "D-12345", cfg.Instructor.License)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.NotEmpty(t, cfg.Database.Path)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Database.Path = filepath.Join(dir, "db", "jumplog.db")
	cfg.Invoice.OutputDir = filepath.Join(dir, "out")
	cfg.Instructor.Email = "alex@example.com"
	require.NoError(t, cfg.Save(path))
	require.NoError(t, cfg.EnsureDirectories())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	assert.DirExists(t, filepath.Join(dir, "out"))
	assert.DirExists(t, filepath.Join(dir, "db"))
}
