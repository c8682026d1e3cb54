package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/anara-ai/anara/internal/observability"
	"github.com/rs/zerolog"
)

// maxChatAttempts bounds one logical provider call: the initial attempt plus
// up to two retries.
const maxChatAttempts = 3

// chat performs one logical provider call, retrying transient failures with
// exponential backoff (1s, 2s between attempts). Non-retryable errors
// propagate immediately; after the final attempt the last error surfaces.
// The run loop treats the call as atomic.
func (r *Runner) chat(ctx context.Context, logger zerolog.Logger, req ChatRequest) (*ChatResponse, error) {
	var lastErr error

	start := time.Now()
	for attempt := 0; attempt < maxChatAttempts; attempt++ {
		response, err := r.provider.Chat(ctx, req)
		if err == nil {
			observability.RecordProviderCall(r.provider.Name(), time.Since(start), true)
			return response, nil
		}

		if !IsRetryable(err) {
			observability.RecordProviderCall(r.provider.Name(), time.Since(start), false)
			return nil, err
		}

		lastErr = err
		observability.RecordProviderRetry(r.provider.Name())

		if attempt == maxChatAttempts-1 {
			break
		}

		delay := r.retryBaseDelay << attempt
		logger.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Retrying provider call after transient error")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	observability.RecordProviderCall(r.provider.Name(), time.Since(start), false)
	return nil, fmt.Errorf("provider call failed after %d attempts: %w", maxChatAttempts, lastErr)
}
