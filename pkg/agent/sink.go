package agent

// Sink receives run-loop notifications for tracing. Implementations must be
// safe for concurrent use: tool notifications arrive from dispatcher
// goroutines. A nil sink on the runner disables tracing entirely; the loop
// never builds notification payloads in that case.
type Sink interface {
	// RoundStart fires before each provider call with the sampling
	// parameters in effect.
	RoundStart(provider, model string, temperature *float64, maxTokens int)
	// UserMessage records the user input opening the conversation.
	UserMessage(content string)
	// AssistantMessage records assistant text from a provider response.
	AssistantMessage(content string)
	// ToolCall records one requested tool invocation with its arguments
	// serialized to JSON.
	ToolCall(name, arguments string)
	// ToolResult records the rendered outcome of one tool invocation.
	ToolResult(name, output string)
	// Usage records the accumulated token totals at the end of the run.
	Usage(inputTokens, outputTokens int)
}
