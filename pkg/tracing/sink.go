package tracing

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/anara-ai/anara/pkg/tracing"

// RunSink records one agent run as an OpenTelemetry span with GenAI
// semantic-convention events. It satisfies the agent package's Sink
// interface and is safe for concurrent use: tool notifications arrive from
// dispatcher goroutines.
//
// The caller owns the span lifecycle: create one sink per run and End it
// when the run returns.
type RunSink struct {
	mu   sync.Mutex
	span trace.Span
}

// NewRunSink starts an "agent.run" span as a child of ctx and returns a
// sink recording onto it, along with the span context for downstream calls.
func NewRunSink(ctx context.Context, agentName string) (context.Context, *RunSink) {
	ctx, span := StartSpan(ctx, tracerName, "agent.run",
		attribute.String("agent.name", agentName),
	)
	return ctx, &RunSink{span: span}
}

// RoundStart records the sampling parameters in effect for one provider call.
func (s *RunSink) RoundStart(provider, model string, temperature *float64, maxTokens int) {
	attrs := []attribute.KeyValue{
		attribute.String("gen_ai.system", provider),
		attribute.String("gen_ai.request.model", model),
		attribute.Int("gen_ai.request.max_tokens", maxTokens),
	}
	if temperature != nil {
		attrs = append(attrs, attribute.Float64("gen_ai.request.temperature", *temperature))
	}
	s.addEvent("gen_ai.round.start", attrs...)
}

// UserMessage records the user input opening the conversation.
func (s *RunSink) UserMessage(content string) {
	s.addEvent("gen_ai.user.message", attribute.String("gen_ai.message.content", content))
}

// AssistantMessage records assistant text from a provider response.
func (s *RunSink) AssistantMessage(content string) {
	s.addEvent("gen_ai.assistant.message", attribute.String("gen_ai.message.content", content))
}

// ToolCall records one requested tool invocation.
func (s *RunSink) ToolCall(name, arguments string) {
	s.addEvent("gen_ai.tool.call",
		attribute.String("gen_ai.tool.name", name),
		attribute.String("gen_ai.tool.arguments", arguments),
	)
}

// ToolResult records the rendered outcome of one tool invocation.
func (s *RunSink) ToolResult(name, output string) {
	s.addEvent("gen_ai.tool.result",
		attribute.String("gen_ai.tool.name", name),
		attribute.String("gen_ai.tool.output", output),
	)
}

// Usage records the accumulated token totals on the run span.
func (s *RunSink) Usage(inputTokens, outputTokens int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.span.SetAttributes(
		attribute.Int("gen_ai.usage.input_tokens", inputTokens),
		attribute.Int("gen_ai.usage.output_tokens", outputTokens),
	)
}

// Fail marks the run span as failed.
func (s *RunSink) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.span.RecordError(err)
}

// End finishes the run span.
func (s *RunSink) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.span.End()
}

func (s *RunSink) addEvent(name string, attrs ...attribute.KeyValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.span.AddEvent(name, trace.WithAttributes(attrs...))
}
