package cli

import (
	"fmt"

	"github.com/anara-ai/anara/internal/config"
	"github.com/spf13/cobra"
)

var configureFlags struct {
	anthropicKey string
	openaiKey    string
	provider     string
	model        string
}

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Write provider credentials and defaults to the config file",
	RunE:  runConfigure,
}

func init() {
	configureCmd.Flags().StringVar(&configureFlags.anthropicKey, "anthropic-api-key", "", "Anthropic API key")
	configureCmd.Flags().StringVar(&configureFlags.openaiKey, "openai-api-key", "", "OpenAI API key")
	configureCmd.Flags().StringVar(&configureFlags.provider, "provider", "", "default provider (anthropic or openai)")
	configureCmd.Flags().StringVar(&configureFlags.model, "model", "", "default model")

	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader(cfgFile)
	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	if configureFlags.anthropicKey != "" {
		setProviderKey(cfg, "anthropic", configureFlags.anthropicKey)
	}
	if configureFlags.openaiKey != "" {
		setProviderKey(cfg, "openai", configureFlags.openaiKey)
	}
	if configureFlags.provider != "" {
		cfg.Agent.Provider = configureFlags.provider
	}
	if configureFlags.model != "" {
		cfg.Agent.Model = configureFlags.model
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := loader.Save(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to: %s\n", loader.GetConfigPath())
	return nil
}

func setProviderKey(cfg *config.Config, provider, key string) {
	for i, profile := range cfg.Providers {
		if profile.Provider == provider {
			cfg.Providers[i].APIKey = key
			return
		}
	}
	cfg.Providers = append(cfg.Providers, config.ProviderProfile{Provider: provider, APIKey: key})
}
