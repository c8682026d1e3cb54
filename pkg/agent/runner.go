package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anara-ai/anara/internal/observability"
	"github.com/anara-ai/anara/pkg/prompt"
	"github.com/anara-ai/anara/pkg/schema"
	"github.com/anara-ai/anara/pkg/tool"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

const (
	defaultSystemPrompt  = "You are a helpful assistant."
	defaultMaxTokens     = 4096
	defaultMaxIterations = 10

	memoryUpdateInstruction = "Based on the conversation, update the stored memory record. Keep existing values unless the conversation contradicts them."
)

// Renderer substitutes dependency values into the system-prompt template.
type Renderer interface {
	Render(templateStr string, vars map[string]interface{}) (string, error)
}

// Config holds runner configuration.
type Config struct {
	// Provider selects the LLM backend: "anthropic" (default) or "openai".
	Provider string
	// APIKey authenticates against the provider.
	APIKey string
	// Model overrides the provider's default model.
	Model string
	// System is the system-prompt template.
	System string
	// Tools is the immutable registry of callable tools.
	Tools *tool.Registry
	// Output, when set, forces the model to satisfy this contract via a
	// synthetic tool instead of returning free text.
	Output *schema.Contract
	// Memory is the optional persistent record store.
	Memory MemoryStore
	// MaxTokens caps each provider response. Defaults to 4096.
	MaxTokens int
	// Temperature is the sampling temperature; nil uses the provider
	// default.
	Temperature *float64
	// MaxIterations bounds the tool loop. Defaults to 10.
	MaxIterations int
	// Logger receives structured run logs.
	Logger zerolog.Logger
	// Sink receives tracing notifications. Nil disables tracing.
	Sink Sink
	// Renderer overrides the default strict template renderer.
	Renderer Renderer
	// ProviderFactory overrides provider construction, mainly for tests.
	ProviderFactory ProviderCreator
}

// Runner drives multi-round conversations against one LLM provider. All
// conversation state lives inside a single Run invocation; a Runner may
// serve concurrent runs.
type Runner struct {
	provider      Provider
	model         string
	system        string
	tools         *tool.Registry
	output        *schema.Contract
	memory        MemoryStore
	maxTokens     int
	temperature   *float64
	maxIterations int
	logger        zerolog.Logger
	sink          Sink
	renderer      Renderer

	retryBaseDelay time.Duration
}

// NewRunner creates a new agent runner.
func NewRunner(cfg Config) (*Runner, error) {
	observability.EnsureRegistered()

	if cfg.Provider == "" {
		cfg.Provider = "anthropic"
	}
	if cfg.System == "" {
		cfg.System = defaultSystemPrompt
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.MaxTokens < 0 {
		return nil, configErrorf("max tokens cannot be negative")
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = defaultMaxIterations
	}
	if cfg.MaxIterations < 1 {
		return nil, configErrorf("max iterations must be at least 1")
	}
	if cfg.Temperature != nil && (*cfg.Temperature < 0 || *cfg.Temperature > 1) {
		return nil, configErrorf("temperature must be between 0 and 1")
	}

	factory := cfg.ProviderFactory
	if factory == nil {
		factory = &ProviderFactory{}
	}

	provider, model, err := factory.NewProvider(cfg.Provider, cfg.APIKey, cfg.Model)
	if err != nil {
		return nil, err
	}

	renderer := cfg.Renderer
	if renderer == nil {
		renderer = prompt.NewRenderer(prompt.Strict)
	}

	return &Runner{
		provider:       provider,
		model:          model,
		system:         cfg.System,
		tools:          cfg.Tools,
		output:         cfg.Output,
		memory:         cfg.Memory,
		maxTokens:      cfg.MaxTokens,
		temperature:    cfg.Temperature,
		maxIterations:  cfg.MaxIterations,
		logger:         cfg.Logger,
		sink:           cfg.Sink,
		renderer:       renderer,
		retryBaseDelay: time.Second,
	}, nil
}

// Run executes one conversation with the model. It terminates within
// MaxIterations provider calls; tool calls inside each round run
// concurrently, rounds run strictly in sequence.
func (r *Runner) Run(ctx context.Context, params RunParams) (*RunResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if params.Message == "" {
		return nil, configErrorf("message cannot be empty")
	}
	if params.MemoryID != "" && r.memory == nil {
		return nil, configErrorf("memory id was provided but no memory store is configured")
	}

	runID, _ := gonanoid.New()
	logger := r.logger.With().
		Str("run_id", runID).
		Str("provider", r.provider.Name()).
		Str("model", r.model).
		Logger()

	start := time.Now()
	result, err := r.execute(ctx, logger, params)
	observability.RecordRun(r.provider.Name(), time.Since(start), err == nil)
	if err != nil {
		logger.Error().Err(err).Msg("Agent run failed")
		return nil, err
	}

	logger.Info().
		Int("provider_calls", result.ProviderCalls).
		Int("input_tokens", result.Usage.InputTokens).
		Int("output_tokens", result.Usage.OutputTokens).
		Msg("Agent run completed")
	return result, nil
}

func (r *Runner) execute(ctx context.Context, logger zerolog.Logger, params RunParams) (*RunResult, error) {
	var record map[string]interface{}
	if params.MemoryID != "" {
		loaded, found, err := r.memory.Get(ctx, params.MemoryID)
		if err != nil {
			return nil, fmt.Errorf("failed to load memory record: %w", err)
		}
		if found {
			record = loaded
		}
	}

	system, err := r.renderSystemPrompt(params.Deps, record)
	if err != nil {
		return nil, err
	}

	schemas := r.tools.Schemas()
	choice := AutoToolChoice()
	if r.output != nil {
		schemas = append(schemas, tool.Schema{
			Name:        r.output.Name,
			Description: r.output.Description,
			Parameters:  r.output.Definition,
		})
		choice = ForcedToolChoice(r.output.Name)
	}

	conversation := []Message{{Role: RoleUser, Content: params.Message}}
	if r.sink != nil {
		r.sink.UserMessage(params.Message)
	}

	var usage Usage
	var structured map[string]interface{}
	providerCalls := 0
	lastText := ""
	finalText := ""
	done := false

	for iteration := 0; iteration < r.maxIterations; iteration++ {
		if r.sink != nil {
			r.sink.RoundStart(r.provider.Name(), r.model, r.temperature, r.maxTokens)
		}

		response, err := r.chat(ctx, logger, ChatRequest{
			Model:       r.model,
			Messages:    conversation,
			System:      system,
			Tools:       schemas,
			ToolChoice:  choice,
			MaxTokens:   r.maxTokens,
			Temperature: r.temperature,
		})
		if err != nil {
			return nil, err
		}
		providerCalls++
		usage.Add(response.Usage)
		lastText = response.Text

		if r.sink != nil && response.Text != "" {
			r.sink.AssistantMessage(response.Text)
		}

		if len(response.ToolCalls) == 0 {
			finalText = response.Text
			done = true
			break
		}

		if r.output != nil {
			committed, err := r.commitStructuredOutput(response.ToolCalls, &structured)
			if err != nil {
				return nil, err
			}
			if committed {
				// Any other tool calls in this round are dropped:
				// the output commit ends the conversation.
				done = true
				break
			}
		}

		conversation = append(conversation, Message{
			Role:      RoleAssistant,
			Content:   response.Text,
			ToolCalls: response.ToolCalls,
		})

		outcomes := r.dispatchToolCalls(ctx, response.ToolCalls)
		conversation = append(conversation, Message{
			Role:        RoleUser,
			ToolResults: outcomes,
		})

		// Stop compelling the output tool once the model has started
		// calling tools on its own.
		if choice.Mode == ToolChoiceForced {
			choice = AutoToolChoice()
		}
	}

	if !done {
		finalText = lastText
		logger.Warn().
			Int("max_iterations", r.maxIterations).
			Msg("Iteration budget exhausted, returning last response text")
	}

	if params.MemoryID != "" && !params.SkipMemoryUpdate {
		memUsage, memCalls := r.updateMemory(ctx, logger, params.MemoryID, record, conversation, finalText)
		usage.Add(memUsage)
		providerCalls += memCalls
	}

	if r.sink != nil {
		r.sink.Usage(usage.InputTokens, usage.OutputTokens)
	}

	return &RunResult{
		Text:          finalText,
		Structured:    structured,
		Usage:         usage,
		ProviderCalls: providerCalls,
	}, nil
}

// commitStructuredOutput scans a round's tool calls for the output contract.
// Invalid arguments are a terminal error: the caller asked for this shape
// and the model failed to produce it.
func (r *Runner) commitStructuredOutput(calls []ToolCall, structured *map[string]interface{}) (bool, error) {
	for _, tc := range calls {
		if tc.Name != r.output.Name {
			continue
		}
		if err := r.output.Validate(tc.Arguments); err != nil {
			return false, fmt.Errorf("structured output rejected: %w", err)
		}
		*structured = tc.Arguments
		return true, nil
	}
	return false, nil
}

// renderSystemPrompt renders the template with dependency values and, when a
// memory record was loaded, prepends it wrapped in a delimiter the model can
// distinguish from instructions.
func (r *Runner) renderSystemPrompt(deps, record map[string]interface{}) (string, error) {
	rendered, err := r.renderer.Render(r.system, deps)
	if err != nil {
		return "", configErrorf("failed to render system prompt: %v", err)
	}

	if record == nil {
		return rendered, nil
	}

	serialized, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize memory record: %w", err)
	}
	return fmt.Sprintf("<memory>\n%s\n</memory>\n\n%s", serialized, rendered), nil
}

// updateMemory issues the post-run memory-update call: one forced call to
// the record contract's synthetic tool, over the text-bearing conversation
// only. Every failure here is non-fatal; the main result stands.
func (r *Runner) updateMemory(ctx context.Context, logger zerolog.Logger, id string, record map[string]interface{}, conversation []Message, finalText string) (Usage, int) {
	contract := r.memory.Contract()
	if contract == nil {
		logger.Warn().Msg("Memory store has no record contract, skipping update")
		return Usage{}, 0
	}

	current := record
	if current == nil {
		current = map[string]interface{}{}
	}
	currentJSON, err := json.Marshal(current)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to serialize current memory record, skipping update")
		return Usage{}, 0
	}

	instruction := r.memory.UpdatePrompt()
	if instruction == "" {
		instruction = memoryUpdateInstruction
	}

	system := fmt.Sprintf(
		"Current memory record:\n%s\n\nRecord schema:\n%s\n\n%s\n\nCall the %s tool with the complete updated record.",
		currentJSON, contract.JSON(), instruction, contract.Name,
	)

	messages := condenseConversation(conversation)
	if finalText != "" {
		messages = append(messages, Message{Role: RoleAssistant, Content: finalText})
	}

	start := time.Now()
	response, err := r.chat(ctx, logger, ChatRequest{
		Model:    r.model,
		Messages: messages,
		System:   system,
		Tools: []tool.Schema{{
			Name:        contract.Name,
			Description: contract.Description,
			Parameters:  contract.Definition,
		}},
		ToolChoice:  ForcedToolChoice(contract.Name),
		MaxTokens:   r.maxTokens,
		Temperature: r.temperature,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Memory update call failed")
		return Usage{}, 0
	}

	for _, tc := range response.ToolCalls {
		if tc.Name != contract.Name {
			continue
		}
		if err := contract.Validate(tc.Arguments); err != nil {
			logger.Warn().Err(err).Msg("Memory update produced an invalid record, skipping write")
			break
		}
		if err := r.memory.Put(ctx, id, tc.Arguments); err != nil {
			logger.Warn().Err(err).Msg("Failed to write memory record")
			break
		}
		observability.RecordMemoryWrite(time.Since(start))
		logger.Debug().Str("memory_id", id).Msg("Memory record updated")
		break
	}

	return response.Usage, 1
}

// condenseConversation keeps only text-bearing turns, dropping structural
// tool-use and tool-result messages.
func condenseConversation(conversation []Message) []Message {
	out := make([]Message, 0, len(conversation))
	for _, msg := range conversation {
		if msg.Content == "" {
			continue
		}
		out = append(out, Message{Role: msg.Role, Content: msg.Content})
	}
	return out
}
