// Package llm implements the review client against the OpenAI API, plus the
// token and cost estimation used for review planning.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/sevigo/sparrow/internal/core"
)

const baseRetryDelay = 2 * time.Second

var errNoChoices = errors.New("completion response contains no choices")

// Config holds the review client's settings.
type Config struct {
	APIToken       string
	Model          string
	Seed           int
	Temperature    float64
	RequestTimeout time.Duration
	MaxRetries     int
}

// Client implements core.ReviewClient using JSON-mode chat completions.
type Client struct {
	api    openai.Client
	cfg    Config
	logger *slog.Logger

	initOnce sync.Once
	initErr  error
}

// NewClient creates a review client. Call Init before the first review to
// verify the configured model against the service.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		api:    openai.NewClient(option.WithAPIKey(cfg.APIToken)),
		cfg:    cfg,
		logger: logger,
	}
}

// Init verifies once per process that the configured model exists and the
// token is valid. The outcome is cached, so repeated calls are cheap and
// idempotent.
func (c *Client) Init(ctx context.Context) error {
	c.initOnce.Do(func() {
		model, err := c.api.Models.Get(ctx, c.cfg.Model)
		if err != nil {
			c.initErr = fmt.Errorf("failed to look up model %q: %w", c.cfg.Model, err)
			return
		}
		c.logger.Debug("review model verified", "model", model.ID)
	})
	return c.initErr
}

// Review obtains a verdict for one file. Transient failures are retried with
// exponential backoff up to MaxRetries; any terminal failure is reported as a
// *core.ClientError so the orchestrator can downgrade the file to skipped.
func (c *Client) Review(ctx context.Context, diff core.FileDiff) (*core.ReviewResult, error) {
	if err := c.Init(ctx); err != nil {
		return nil, &core.ClientError{Kind: core.ClientTransport, Path: diff.Path, Err: err}
	}

	prompt := reviewPrompt(diff)

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := baseRetryDelay * time.Duration(1<<(attempt-1))
			c.logger.Warn("review call failed, retrying",
				"path", diff.Path,
				"attempt", attempt,
				"delay", delay,
				"error", lastErr,
			)
			select {
			case <-ctx.Done():
				return nil, &core.ClientError{Kind: core.ClientTransport, Path: diff.Path, Err: ctx.Err()}
			case <-time.After(delay):
			}
		}

		content, err := c.complete(ctx, prompt)
		if err != nil {
			lastErr = err
			kind := classifyError(ctx, err)
			if !retryable(kind, err) {
				return nil, &core.ClientError{Kind: kind, Path: diff.Path, Err: err}
			}
			continue
		}

		result, err := parseVerdict(content)
		if err != nil {
			return nil, &core.ClientError{Kind: core.ClientMalformedResponse, Path: diff.Path, Err: err}
		}
		return result, nil
	}

	return nil, &core.ClientError{Kind: classifyError(ctx, lastErr), Path: diff.Path, Err: lastErr}
}

// complete performs one chat completion call under the per-request timeout.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	rctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	completion, err := c.api.Chat.Completions.New(rctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(reviewInstructions),
			openai.UserMessage(prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: openai.Ptr(shared.NewResponseFormatJSONObjectParam()),
		},
		Temperature: openai.Float(c.cfg.Temperature),
		Seed:        openai.Int(int64(c.cfg.Seed)),
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errNoChoices
	}
	return completion.Choices[0].Message.Content, nil
}

// classifyError maps a failed call onto the client error taxonomy.
func classifyError(ctx context.Context, err error) core.ClientErrorKind {
	switch {
	case err == nil:
		return core.ClientTransport
	case errors.Is(err, errNoChoices):
		return core.ClientMalformedResponse
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		// The request deadline expired while the run itself is still live.
		return core.ClientTimeout
	default:
		return core.ClientTransport
	}
}

// retryable reports whether another attempt is worthwhile. Timeouts and
// typical transient transport failures qualify; everything else fails fast.
func retryable(kind core.ClientErrorKind, err error) bool {
	if kind == core.ClientTimeout {
		return true
	}
	if kind != core.ClientTransport || err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"rate limit", "429", "500", "502", "503", "504", "connection", "temporar"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
