package agent

import (
	"errors"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anara-ai/anara/pkg/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderFactory(t *testing.T) {
	factory := &ProviderFactory{}

	t.Run("should default the anthropic model", func(t *testing.T) {
		provider, model, err := factory.NewProvider("anthropic", "key", "")
		require.NoError(t, err)

		assert.Equal(t, "anthropic", provider.Name())
		assert.Equal(t, defaultAnthropicModel, model)
	})

	t.Run("should default the openai model", func(t *testing.T) {
		provider, model, err := factory.NewProvider("openai", "key", "")
		require.NoError(t, err)

		assert.Equal(t, "openai", provider.Name())
		assert.Equal(t, defaultOpenAIModel, model)
	})

	t.Run("should keep an explicit model", func(t *testing.T) {
		_, model, err := factory.NewProvider("anthropic", "key", "claude-sonnet-4-5")
		require.NoError(t, err)

		assert.Equal(t, "claude-sonnet-4-5", model)
	})

	t.Run("should reject unknown providers", func(t *testing.T) {
		_, _, err := factory.NewProvider("cohere", "key", "")

		require.Error(t, err)
		var configErr *ConfigError
		assert.True(t, errors.As(err, &configErr))
	})
}

func TestToAnthropicMessages(t *testing.T) {
	t.Run("should fold a round's outcomes into one user message", func(t *testing.T) {
		out := toAnthropicMessages([]Message{
			{Role: RoleUser, Content: "hi"},
			{Role: RoleAssistant, Content: "checking", ToolCalls: []ToolCall{
				{ID: "call_1", Name: "lookup", Arguments: map[string]interface{}{"city": "Oslo"}},
				{ID: "call_2", Name: "lookup", Arguments: map[string]interface{}{"city": "Bergen"}},
			}},
			{Role: RoleUser, ToolResults: []ToolOutcome{
				{ID: "call_1", Name: "lookup", Content: "fjords"},
				{ID: "call_2", Name: "lookup", Content: "rain", IsError: false},
			}},
		})

		require.Len(t, out, 3)
		assert.Equal(t, anthropic.MessageParamRoleUser, out[0].Role)
		assert.Equal(t, anthropic.MessageParamRoleAssistant, out[1].Role)
		// Text block plus one tool-use block per call.
		assert.Len(t, out[1].Content, 3)
		assert.Equal(t, anthropic.MessageParamRoleUser, out[2].Role)
		assert.Len(t, out[2].Content, 2)
	})

	t.Run("should omit the text block for empty assistant text", func(t *testing.T) {
		out := toAnthropicMessages([]Message{
			{Role: RoleAssistant, ToolCalls: []ToolCall{
				{ID: "call_1", Name: "lookup", Arguments: map[string]interface{}{}},
			}},
		})

		require.Len(t, out, 1)
		assert.Len(t, out[0].Content, 1)
	})
}

func TestToAnthropicTools(t *testing.T) {
	t.Run("should carry required fields from either list shape", func(t *testing.T) {
		req := ChatRequest{Tools: []tool.Schema{
			{
				Name: "a",
				Parameters: map[string]interface{}{
					"type":       "object",
					"properties": map[string]interface{}{"x": map[string]interface{}{"type": "string"}},
					"required":   []string{"x"},
				},
			},
			{
				Name: "b",
				Parameters: map[string]interface{}{
					"type":       "object",
					"properties": map[string]interface{}{"y": map[string]interface{}{"type": "string"}},
					"required":   []interface{}{"y"},
				},
			},
		}}

		tools := toAnthropicTools(req)

		require.Len(t, tools, 2)
		assert.Equal(t, []string{"x"}, tools[0].OfTool.InputSchema.Required)
		assert.Equal(t, []string{"y"}, tools[1].OfTool.InputSchema.Required)
	})
}

func TestToAnthropicToolChoice(t *testing.T) {
	t.Run("should map auto mode", func(t *testing.T) {
		choice := toAnthropicToolChoice(AutoToolChoice())
		assert.NotNil(t, choice.OfAuto)
		assert.Nil(t, choice.OfTool)
	})

	t.Run("should map forced mode with the tool name", func(t *testing.T) {
		choice := toAnthropicToolChoice(ForcedToolChoice("trip_plan"))
		require.NotNil(t, choice.OfTool)
		assert.Equal(t, "trip_plan", choice.OfTool.Name)
	})
}

func TestToOpenAIMessages(t *testing.T) {
	t.Run("should prepend the system prompt and fan out tool results", func(t *testing.T) {
		out, err := toOpenAIMessages("be helpful", []Message{
			{Role: RoleUser, Content: "hi"},
			{Role: RoleAssistant, Content: "checking", ToolCalls: []ToolCall{
				{ID: "call_1", Name: "lookup", Arguments: map[string]interface{}{}},
				{ID: "call_2", Name: "lookup", Arguments: map[string]interface{}{}},
			}},
			{Role: RoleUser, ToolResults: []ToolOutcome{
				{ID: "call_1", Name: "lookup", Content: "fjords"},
				{ID: "call_2", Name: "lookup", Content: "rain"},
			}},
		})
		require.NoError(t, err)

		// system + user + assistant + one tool message per outcome
		require.Len(t, out, 5)
		assert.NotNil(t, out[0].OfSystem)
		assert.NotNil(t, out[1].OfUser)
		assert.NotNil(t, out[2].OfAssistant)
		assert.NotNil(t, out[3].OfTool)
		assert.NotNil(t, out[4].OfTool)
	})

	t.Run("should skip the system message when empty", func(t *testing.T) {
		out, err := toOpenAIMessages("", []Message{{Role: RoleUser, Content: "hi"}})
		require.NoError(t, err)

		require.Len(t, out, 1)
		assert.NotNil(t, out[0].OfUser)
	})
}

func TestToOpenAIToolChoice(t *testing.T) {
	t.Run("should map forced mode with the tool name", func(t *testing.T) {
		choice := toOpenAIToolChoice(ForcedToolChoice("trip_plan"))
		require.NotNil(t, choice.OfChatCompletionNamedToolChoice)
		assert.Equal(t, "trip_plan", choice.OfChatCompletionNamedToolChoice.Function.Name)
	})
}
