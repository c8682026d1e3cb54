package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/anara-ai/anara/internal/config"
	"github.com/anara-ai/anara/internal/logger"
	"github.com/anara-ai/anara/pkg/agent"
	"github.com/anara-ai/anara/pkg/memory"
	"github.com/anara-ai/anara/pkg/schema"
	"github.com/anara-ai/anara/pkg/tracing"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var chatFlags struct {
	provider       string
	model          string
	system         string
	deps           []string
	memoryID       string
	noMemoryUpdate bool
	maxIterations  int
	temperature    float64
	outputSchema   string
}

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Run one agent conversation",
	Long: `Run one agent conversation: send a message, let the model call tools
until it settles on an answer, and print the result. With --output-schema the
result is a JSON record validated against the schema instead of free text.`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatFlags.provider, "provider", "", "LLM provider (anthropic or openai)")
	chatCmd.Flags().StringVar(&chatFlags.model, "model", "", "model override")
	chatCmd.Flags().StringVar(&chatFlags.system, "system", "", "system prompt template")
	chatCmd.Flags().StringArrayVar(&chatFlags.deps, "dep", nil, "template value as key=value (repeatable)")
	chatCmd.Flags().StringVar(&chatFlags.memoryID, "memory-id", "", "memory scope id (requires memory enabled in config)")
	chatCmd.Flags().BoolVar(&chatFlags.noMemoryUpdate, "no-memory-update", false, "load memory but skip the post-run update")
	chatCmd.Flags().IntVar(&chatFlags.maxIterations, "max-iterations", 0, "tool loop budget override")
	chatCmd.Flags().Float64Var(&chatFlags.temperature, "temperature", -1, "sampling temperature (0 to 1)")
	chatCmd.Flags().StringVar(&chatFlags.outputSchema, "output-schema", "", "path to a JSON schema forcing structured output")

	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	log, err := logger.New(logger.Config{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
		Console: cfg.Logging.Console,
		Pretty:  cfg.Logging.Pretty,
	})
	if err != nil {
		return err
	}
	defer log.Close()

	providerName := cfg.Agent.Provider
	if chatFlags.provider != "" {
		providerName = chatFlags.provider
	}
	model := cfg.Agent.Model
	if chatFlags.model != "" {
		model = chatFlags.model
	}
	system := cfg.Agent.System
	if chatFlags.system != "" {
		system = chatFlags.system
	}
	maxIterations := cfg.Agent.MaxIterations
	if chatFlags.maxIterations > 0 {
		maxIterations = chatFlags.maxIterations
	}
	temperature := cfg.Agent.Temperature
	if cmd.Flags().Changed("temperature") {
		temperature = &chatFlags.temperature
	}

	runnerCfg := agent.Config{
		Provider:      providerName,
		APIKey:        cfg.APIKeyFor(providerName),
		Model:         model,
		System:        system,
		MaxTokens:     cfg.Agent.MaxTokens,
		Temperature:   temperature,
		MaxIterations: maxIterations,
		Logger:        log.GetZerolog(),
	}

	if chatFlags.outputSchema != "" {
		contract, err := loadOutputContract(chatFlags.outputSchema)
		if err != nil {
			return err
		}
		runnerCfg.Output = contract
	}

	ctx := cmd.Context()

	if cfg.Tracing.Enabled {
		if err := tracing.InitOpenTelemetry(cfg.Tracing.ServiceName); err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		defer tracing.ShutdownOpenTelemetry(ctx)

		spanCtx, sink := tracing.NewRunSink(ctx, "anara")
		defer sink.End()
		ctx = spanCtx
		runnerCfg.Sink = sink
	}

	memoryID := chatFlags.memoryID
	if cfg.Memory.Enabled {
		contract, err := memoryContract()
		if err != nil {
			return err
		}
		store, err := memory.New(memory.Config{
			Path:     cfg.Memory.Path,
			AgentID:  cfg.Memory.AgentID,
			Contract: contract,
			Logger:   log.GetZerolog(),
		})
		if err != nil {
			return err
		}
		defer store.Close()
		runnerCfg.Memory = store

		// Ephemeral scope when none was given.
		if memoryID == "" {
			memoryID = uuid.NewString()
		}
	} else if memoryID != "" {
		return fmt.Errorf("--memory-id requires memory to be enabled in the config")
	}

	runner, err := agent.NewRunner(runnerCfg)
	if err != nil {
		return err
	}

	result, err := runner.Run(ctx, agent.RunParams{
		Message:          args[0],
		Deps:             parseDeps(chatFlags.deps),
		MemoryID:         memoryID,
		SkipMemoryUpdate: chatFlags.noMemoryUpdate,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.Structured != nil {
		encoded, err := json.MarshalIndent(result.Structured, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(encoded))
		return nil
	}

	fmt.Fprintln(out, result.Text)
	return nil
}

func parseDeps(pairs []string) map[string]interface{} {
	if len(pairs) == 0 {
		return nil
	}
	deps := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		key, value, _ := strings.Cut(pair, "=")
		deps[key] = value
	}
	return deps
}

func loadOutputContract(path string) (*schema.Contract, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read output schema: %w", err)
	}

	var definition map[string]interface{}
	if err := json.Unmarshal(raw, &definition); err != nil {
		return nil, fmt.Errorf("failed to parse output schema: %w", err)
	}

	name, _ := definition["title"].(string)
	if name == "" {
		name = "structured_output"
	}
	description, _ := definition["description"].(string)

	return schema.New(name, description, definition)
}

// memoryContract is the record shape the chat command persists per scope.
func memoryContract() (*schema.Contract, error) {
	return schema.New("user_memory", "Facts worth remembering about the user", map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"facts": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Standalone facts learned about the user",
			},
		},
	})
}
