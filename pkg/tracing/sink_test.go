package tracing

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupExporter(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})

	return exporter
}

func TestRunSink(t *testing.T) {
	t.Run("should record the conversation as span events", func(t *testing.T) {
		exporter := setupExporter(t)

		_, sink := NewRunSink(context.Background(), "concierge")
		temp := 0.7
		sink.RoundStart("anthropic", "claude-haiku-4-5-20251001", &temp, 4096)
		sink.UserMessage("hi")
		sink.AssistantMessage("hello")
		sink.ToolCall("lookup", `{"city":"Oslo"}`)
		sink.ToolResult("lookup", "fjords")
		sink.Usage(30, 20)
		sink.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		span := spans[0]

		assert.Equal(t, "agent.run", span.Name)
		require.Len(t, span.Events, 5)
		assert.Equal(t, "gen_ai.round.start", span.Events[0].Name)
		assert.Equal(t, "gen_ai.user.message", span.Events[1].Name)
		assert.Equal(t, "gen_ai.assistant.message", span.Events[2].Name)
		assert.Equal(t, "gen_ai.tool.call", span.Events[3].Name)
		assert.Equal(t, "gen_ai.tool.result", span.Events[4].Name)
	})

	t.Run("should record usage as span attributes", func(t *testing.T) {
		exporter := setupExporter(t)

		_, sink := NewRunSink(context.Background(), "concierge")
		sink.Usage(30, 20)
		sink.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)

		attrs := map[string]int64{}
		for _, kv := range spans[0].Attributes {
			if kv.Value.Type() == attribute.INT64 {
				attrs[string(kv.Key)] = kv.Value.AsInt64()
			}
		}
		assert.Equal(t, int64(30), attrs["gen_ai.usage.input_tokens"])
		assert.Equal(t, int64(20), attrs["gen_ai.usage.output_tokens"])
	})

	t.Run("should tolerate concurrent tool notifications", func(t *testing.T) {
		exporter := setupExporter(t)

		_, sink := NewRunSink(context.Background(), "concierge")

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				sink.ToolCall("lookup", "{}")
				sink.ToolResult("lookup", "ok")
			}()
		}
		wg.Wait()
		sink.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Len(t, spans[0].Events, 20)
	})
}
