package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/sparrow/internal/core"
)

func TestClassifyError(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, core.ClientMalformedResponse, classifyError(ctx, errNoChoices))
	assert.Equal(t, core.ClientTimeout, classifyError(ctx, context.DeadlineExceeded))
	assert.Equal(t, core.ClientTimeout, classifyError(ctx, fmt.Errorf("call failed: %w", context.DeadlineExceeded)))
	assert.Equal(t, core.ClientTransport, classifyError(ctx, errors.New("connection refused")))
}

func TestClassifyError_ExpiredRunDeadlineIsNotATimeout(t *testing.T) {
	// When the run's own context is already dead, a deadline error means the
	// whole run is over, not that one request was slow.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, core.ClientTransport, classifyError(ctx, context.DeadlineExceeded))
}

func TestRetryable(t *testing.T) {
	assert.True(t, retryable(core.ClientTimeout, context.DeadlineExceeded))
	assert.True(t, retryable(core.ClientTransport, errors.New("got 429 Too Many Requests")))
	assert.True(t, retryable(core.ClientTransport, errors.New("rate limit exceeded")))
	assert.True(t, retryable(core.ClientTransport, errors.New("connection reset by peer")))
	assert.True(t, retryable(core.ClientTransport, errors.New("502 Bad Gateway")))

	assert.False(t, retryable(core.ClientTransport, errors.New("401 invalid api key")))
	assert.False(t, retryable(core.ClientTransport, nil))
	assert.False(t, retryable(core.ClientMalformedResponse, errNoChoices))
}
