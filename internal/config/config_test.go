package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_ProducesValidValuesExceptRoot(t *testing.T) {
	cfg := Default()
	assert.Equal(t, int64(1<<20), cfg.MaxFileSize)
	assert.Equal(t, 500, cfg.DebounceMs)
	assert.Equal(t, 0.20, cfg.RebuildThreshold)
	assert.Equal(t, 0.7, cfg.VectorWeight)

	err := cfg.Validate()
	require.Error(t, err, "codebaseRoot is unset so Validate must fail")
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.CodebaseRoot)
}

func TestLoad_ParsesYAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	content := "codebaseRoot: " + dir + "\nmaxFileSize: 2048\ndebounceMs: 750\nvectorWeight: 0.3\n"
	require.NoError(t, os.WriteFile(yamlPath, []byte(content), 0o644))

	cfg, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.CodebaseRoot)
	assert.Equal(t, int64(2048), cfg.MaxFileSize)
	assert.Equal(t, 750, cfg.DebounceMs)
	assert.Equal(t, 0.3, cfg.VectorWeight)
	// Defaults not present in the YAML survive the merge.
	assert.Equal(t, 16, cfg.HNSW.M)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("CODESEARCH_EMBEDDING_PROVIDER", "mock")
	t.Setenv("CODESEARCH_DEBOUNCE_MS", "1000")
	t.Setenv("CODESEARCH_CACHE_CAPACITY", "512")

	cfg := Default()
	cfg.applyEnvOverrides()
	assert.Equal(t, "mock", cfg.EmbeddingProvider)
	assert.Equal(t, 1000, cfg.DebounceMs)
	assert.Equal(t, 512, cfg.Cache.Capacity)
}

func TestValidate_RejectsNonexistentRoot(t *testing.T) {
	cfg := Default()
	cfg.CodebaseRoot = filepath.Join(t.TempDir(), "missing")
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONFIG_ERROR")
}

func TestValidate_RejectsOutOfRangeVectorWeight(t *testing.T) {
	cfg := Default()
	cfg.CodebaseRoot = t.TempDir()
	cfg.VectorWeight = 1.5
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vectorWeight")
}

func TestValidate_RejectsBadLogLevel(t *testing.T) {
	cfg := Default()
	cfg.CodebaseRoot = t.TempDir()
	cfg.LogLevel = "verbose"
	err := cfg.Validate()
	require.Error(t, err)
}

func TestWriteYAML_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.CodebaseRoot = dir
	path := filepath.Join(dir, "out.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.MaxFileSize, loaded.MaxFileSize)
	assert.Equal(t, cfg.HNSW, loaded.HNSW)
}

func TestStoreDir(t *testing.T) {
	assert.Equal(t, filepath.Join("root", ".codebase-search"), StoreDir("root"))
}
