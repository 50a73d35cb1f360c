package gwconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	tmpDir := t.TempDir()
	nonExistent := filepath.Join(tmpDir, "nonexistent.yaml")

	cfg, err := Load(nonExistent)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.BindAddress)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "default", cfg.Account)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, 9090, cfg.Metrics.Port)
}

func TestLoadAppliesDefaultsOverPartialFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
account: "acme"
store:
  backend: file
  container_dir: "` + filepath.ToSlash(tmpDir) + `/objects"
logging:
  level: DEBUG
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "acme", cfg.Account)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoadParsesHumanReadableByteSize(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
account: "acme"
store:
  backend: file
  container_dir: "` + filepath.ToSlash(tmpDir) + `/objects"
  max_object_size: "100Mi"
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, uint64(100*1024*1024), cfg.Store.MaxObjectSize.Uint64())
}

func TestLoadInvalidYAMLErrors(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("logging:\n  level: INFO\n  broken [[[\n"), 0644))

	_, err := Load(configPath)
	assert.Error(t, err)
}

func TestValidateRejectsMissingContainerDirForFileBackend(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Store.Backend = "file"
	err := Validate(cfg)
	assert.Error(t, err)
}

func TestValidateRejectsMissingAccount(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Account = ""
	assert.Error(t, Validate(cfg))
}

func TestSaveConfigRoundTrips(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Account = "roundtrip"
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "roundtrip", loaded.Account)
}

func TestMustLoadErrorsWithoutConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	missing := filepath.Join(tmpDir, "config.yaml")
	_, err := MustLoad(missing)
	assert.Error(t, err)
}
