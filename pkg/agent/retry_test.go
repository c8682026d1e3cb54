package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func overloaded() stubTurn {
	return stubTurn{err: &StatusError{Provider: "stub", Code: 503, Message: "overloaded"}}
}

func TestChatRetry(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.ErrorLevel)
	req := ChatRequest{Model: "stub-model", Messages: []Message{{Role: RoleUser, Content: "hi"}}}

	t.Run("should retry transient status errors until success", func(t *testing.T) {
		provider := &stubProvider{turns: []stubTurn{
			overloaded(),
			overloaded(),
			textTurn("recovered", Usage{InputTokens: 3, OutputTokens: 2}),
		}}
		runner := newTestRunner(t, provider, nil)

		response, err := runner.chat(context.Background(), logger, req)
		require.NoError(t, err)

		assert.Equal(t, "recovered", response.Text)
		assert.Equal(t, 3, provider.callCount())
	})

	t.Run("should give up after three attempts", func(t *testing.T) {
		provider := &stubProvider{turns: []stubTurn{
			overloaded(),
			overloaded(),
			overloaded(),
		}}
		runner := newTestRunner(t, provider, nil)

		_, err := runner.chat(context.Background(), logger, req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed after 3 attempts")
		assert.Equal(t, 3, provider.callCount())

		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, 503, statusErr.Code)
	})

	t.Run("should not retry non-retryable errors", func(t *testing.T) {
		provider := &stubProvider{turns: []stubTurn{
			{err: &StatusError{Provider: "stub", Code: 401, Message: "invalid key"}},
		}}
		runner := newTestRunner(t, provider, nil)

		_, err := runner.chat(context.Background(), logger, req)

		require.Error(t, err)
		assert.Equal(t, 1, provider.callCount())
	})

	t.Run("should retry connection errors", func(t *testing.T) {
		provider := &stubProvider{turns: []stubTurn{
			{err: &ConnectionError{Provider: "stub", Err: fmt.Errorf("connection refused")}},
			textTurn("recovered", Usage{}),
		}}
		runner := newTestRunner(t, provider, nil)

		response, err := runner.chat(context.Background(), logger, req)
		require.NoError(t, err)

		assert.Equal(t, "recovered", response.Text)
		assert.Equal(t, 2, provider.callCount())
	})

	t.Run("should stop waiting when the context is canceled", func(t *testing.T) {
		provider := &stubProvider{turns: []stubTurn{
			overloaded(),
			textTurn("too late", Usage{}),
		}}
		runner := newTestRunner(t, provider, nil)
		runner.retryBaseDelay = time.Second

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := runner.chat(ctx, logger, req)

		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, provider.callCount())
	})
}
