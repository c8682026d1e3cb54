package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader("/path/to/config.json")
	assert.NotNil(t, loader)
	assert.Equal(t, "/path/to/config.json", loader.configPath)
}

func TestLoaderLoad(t *testing.T) {
	t.Run("load default config when file doesn't exist", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "nonexistent.json")

		loader := NewLoader(configPath)
		cfg, err := loader.Load()

		require.NoError(t, err)
		assert.NotNil(t, cfg)
		assert.Equal(t, "anthropic", cfg.Agent.Provider)
		assert.Equal(t, 4096, cfg.Agent.MaxTokens)
		assert.Equal(t, 10, cfg.Agent.MaxIterations)
	})

	t.Run("load config from file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.json")

		testConfig := `{
			"providers": [
				{"provider": "anthropic", "api_key": "sk-ant-test-key"}
			],
			"agent": {
				"provider": "anthropic",
				"model": "claude-sonnet-4-5",
				"max_iterations": 5
			}
		}`
		err := os.WriteFile(configPath, []byte(testConfig), 0644)
		require.NoError(t, err)

		loader := NewLoader(configPath)
		cfg, err := loader.Load()

		require.NoError(t, err)
		assert.Equal(t, "sk-ant-test-key", cfg.APIKeyFor("anthropic"))
		assert.Equal(t, "claude-sonnet-4-5", cfg.Agent.Model)
		assert.Equal(t, 5, cfg.Agent.MaxIterations)
	})

	t.Run("set default paths", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.json")

		testConfig := `{"data_dir": "` + tmpDir + `"}`
		err := os.WriteFile(configPath, []byte(testConfig), 0644)
		require.NoError(t, err)

		loader := NewLoader(configPath)
		cfg, err := loader.Load()

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(tmpDir, "anara.log"), cfg.Logging.File)
		assert.Equal(t, filepath.Join(tmpDir, "memory.db"), cfg.Memory.Path)
	})

	t.Run("fail on malformed file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.json")

		err := os.WriteFile(configPath, []byte("{not json"), 0644)
		require.NoError(t, err)

		_, err = NewLoader(configPath).Load()
		assert.Error(t, err)
	})
}

func TestLoaderSave(t *testing.T) {
	t.Run("round-trip a config", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.json")

		cfg := DefaultConfig()
		cfg.Providers = []ProviderProfile{{Provider: "openai", APIKey: "sk-test"}}
		cfg.Agent.Model = "gpt-5.2"

		loader := NewLoader(configPath)
		require.NoError(t, loader.Save(cfg))

		loaded, err := loader.Load()
		require.NoError(t, err)

		assert.Equal(t, "sk-test", loaded.APIKeyFor("openai"))
		assert.Equal(t, "gpt-5.2", loaded.Agent.Model)
	})
}

func TestGetConfigPath(t *testing.T) {
	t.Run("explicit path wins", func(t *testing.T) {
		loader := NewLoader("/tmp/custom.json")
		assert.Equal(t, "/tmp/custom.json", loader.GetConfigPath())
	})

	t.Run("default path lives under the home directory", func(t *testing.T) {
		loader := NewLoader("")
		path := loader.GetConfigPath()
		assert.Contains(t, path, ".anara")
	})
}
