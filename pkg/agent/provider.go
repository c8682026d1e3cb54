package agent

import (
	"context"

	"github.com/anara-ai/anara/pkg/tool"
)

// ChatRequest carries everything one provider call needs, in canonical form.
type ChatRequest struct {
	Model       string
	Messages    []Message
	System      string
	Tools       []tool.Schema
	ToolChoice  ToolChoice
	MaxTokens   int
	Temperature *float64
}

// ChatResponse is the normalized result of one provider call.
type ChatResponse struct {
	Text      string
	ToolCalls []ToolCall
	Usage     Usage
}

// Provider is the interface over one LLM API. Implementations translate the
// canonical request to the wire format, and classify transport and status
// failures into ConnectionError / StatusError so the retry wrapper can judge
// them.
type Provider interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Name() string
}

// ProviderCreator builds providers from a name and credentials. The runner
// takes one so tests can substitute stub providers.
type ProviderCreator interface {
	NewProvider(name, apiKey, model string) (Provider, string, error)
}

const (
	defaultAnthropicModel = "claude-haiku-4-5-20251001"
	defaultOpenAIModel    = "gpt-5.2"
)

// ProviderFactory is the default ProviderCreator over the supported SDKs.
type ProviderFactory struct{}

// NewProvider creates a provider by name, applying the per-provider default
// model when none is given. It returns the resolved model alongside the
// provider.
func (f *ProviderFactory) NewProvider(name, apiKey, model string) (Provider, string, error) {
	switch name {
	case "anthropic":
		if model == "" {
			model = defaultAnthropicModel
		}
		return NewAnthropicProvider(apiKey), model, nil
	case "openai":
		if model == "" {
			model = defaultOpenAIModel
		}
		return NewOpenAIProvider(apiKey), model, nil
	default:
		return nil, "", configErrorf("unknown provider %q, use \"anthropic\" or \"openai\"", name)
	}
}
