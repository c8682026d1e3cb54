// Package agent implements a bounded tool-use conversation loop against a
// pluggable LLM provider.
//
// A Runner is configured once with a provider, a tool registry, an optional
// structured-output contract, and an optional memory store, then serves any
// number of concurrent Run invocations. Each run sends the user message,
// dispatches any tool calls the model makes (concurrently within a round,
// sequentially across rounds), feeds the results back, and repeats until the
// model answers in plain text, the structured-output tool is satisfied, or
// the iteration budget is exhausted.
//
//	runner, err := agent.NewRunner(agent.Config{
//		Provider: "anthropic",
//		APIKey:   apiKey,
//		System:   "You are a travel assistant for {{deps.city}}.",
//		Tools:    registry,
//		Logger:   logger,
//	})
//	if err != nil {
//		return err
//	}
//	result, err := runner.Run(ctx, agent.RunParams{
//		Message: "What should I pack?",
//		Deps:    map[string]interface{}{"city": "Oslo"},
//	})
//
// Provider calls retry transiently failing requests with exponential backoff
// before surfacing an error. Usage and call counts accumulate across every
// completed call in a run, including the post-run memory update.
package agent
