package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/anara-ai/anara/internal/observability"
)

// maxToolWorkers caps how many tool calls of one round run in parallel.
const maxToolWorkers = 10

// dispatchToolCalls executes every tool call of a round and returns the
// outcomes in request order regardless of completion order: each worker
// writes to its own index. Failures never escape a slot; they become
// error-flagged outcomes the model sees next round.
func (r *Runner) dispatchToolCalls(ctx context.Context, calls []ToolCall) []ToolOutcome {
	outcomes := make([]ToolOutcome, len(calls))

	workers := len(calls)
	if workers > maxToolWorkers {
		workers = maxToolWorkers
	}
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(idx int, tc ToolCall) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[idx] = r.executeToolCall(ctx, tc)
		}(i, call)
	}
	wg.Wait()

	return outcomes
}

// executeToolCall runs one tool call in isolation, folding every failure
// mode into the outcome shape.
func (r *Runner) executeToolCall(ctx context.Context, tc ToolCall) ToolOutcome {
	if r.sink != nil {
		args, _ := json.Marshal(tc.Arguments)
		r.sink.ToolCall(tc.Name, string(args))
	}

	outcome := ToolOutcome{ID: tc.ID, Name: tc.Name}

	var known bool
	if r.tools != nil {
		_, known = r.tools.Get(tc.Name)
	}

	if !known {
		outcome.Content = fmt.Sprintf("Error: Unknown tool '%s'", tc.Name)
		outcome.IsError = true
	} else {
		start := time.Now()
		result, err := r.tools.Invoke(ctx, tc.Name, tc.Arguments)
		observability.RecordToolExecution(tc.Name, time.Since(start), err == nil)
		if err != nil {
			outcome.Content = fmt.Sprintf("Error executing tool '%s': %v", tc.Name, err)
			outcome.IsError = true
		} else {
			outcome.Content = result
		}
	}

	if r.sink != nil {
		r.sink.ToolResult(tc.Name, outcome.Content)
	}

	return outcome
}
