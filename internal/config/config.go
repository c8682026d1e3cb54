package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Config represents the main Anara configuration
type Config struct {
	// Provider credentials
	Providers []ProviderProfile `json:"providers" mapstructure:"providers"`

	// Agent defaults
	Agent AgentConfig `json:"agent" mapstructure:"agent"`

	// Memory store
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Tracing
	Tracing TracingConfig `json:"tracing" mapstructure:"tracing"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// ProviderProfile holds one provider credential
type ProviderProfile struct {
	Provider string `json:"provider" mapstructure:"provider"` // anthropic, openai
	APIKey   string `json:"api_key" mapstructure:"api_key"`
}

// AgentConfig holds run-loop defaults
type AgentConfig struct {
	Provider      string   `json:"provider" mapstructure:"provider"`
	Model         string   `json:"model" mapstructure:"model"`
	System        string   `json:"system" mapstructure:"system"`
	Temperature   *float64 `json:"temperature,omitempty" mapstructure:"temperature"`
	MaxTokens     int      `json:"max_tokens" mapstructure:"max_tokens"`
	MaxIterations int      `json:"max_iterations" mapstructure:"max_iterations"`
}

// MemoryConfig holds memory store configuration
type MemoryConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
	AgentID string `json:"agent_id" mapstructure:"agent_id"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `json:"level" mapstructure:"level"`
	File    string `json:"file" mapstructure:"file"`
	Console bool   `json:"console" mapstructure:"console"`
	Pretty  bool   `json:"pretty" mapstructure:"pretty"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled     bool   `json:"enabled" mapstructure:"enabled"`
	ServiceName string `json:"service_name" mapstructure:"service_name"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Providers: []ProviderProfile{},
		Agent: AgentConfig{
			Provider:      "anthropic",
			MaxTokens:     4096,
			MaxIterations: 10,
		},
		Memory: MemoryConfig{
			Enabled: false,
			AgentID: "default",
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			Pretty:  true,
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "anara",
		},
	}
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// APIKeyFor returns the configured key for a provider, if any.
func (c *Config) APIKeyFor(provider string) string {
	for _, profile := range c.Providers {
		if profile.Provider == provider {
			return profile.APIKey
		}
	}
	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	for i, profile := range c.Providers {
		if profile.Provider == "" {
			return fmt.Errorf("provider profile %d: provider is required", i)
		}
		if profile.Provider != "anthropic" && profile.Provider != "openai" {
			return fmt.Errorf("provider profile %d: invalid provider %s (must be: anthropic, openai)", i, profile.Provider)
		}
		if profile.APIKey == "" {
			return fmt.Errorf("provider profile %s: api_key is required", profile.Provider)
		}
		if profile.Provider == "anthropic" && !strings.HasPrefix(profile.APIKey, "sk-ant-") {
			return fmt.Errorf("provider profile anthropic: api_key should start with sk-ant-")
		}
	}

	if c.Agent.Provider != "" && c.Agent.Provider != "anthropic" && c.Agent.Provider != "openai" {
		return fmt.Errorf("agent: invalid provider %s (must be: anthropic, openai)", c.Agent.Provider)
	}
	if c.Agent.MaxTokens < 0 {
		return fmt.Errorf("agent: max_tokens cannot be negative")
	}
	if c.Agent.MaxIterations < 0 {
		return fmt.Errorf("agent: max_iterations cannot be negative")
	}
	if c.Agent.Temperature != nil && (*c.Agent.Temperature < 0 || *c.Agent.Temperature > 1) {
		return fmt.Errorf("agent: temperature must be between 0 and 1")
	}

	if c.Memory.Enabled {
		if c.Memory.AgentID == "" {
			return fmt.Errorf("memory: agent_id is required when memory is enabled")
		}
	}

	return nil
}
