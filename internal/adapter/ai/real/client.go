// Package real implements domain.AIClient against an OpenAI-compatible
// chat completions API.
package real

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/adapter/ai/tokencount"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/adapter/observability"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/config"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
	obsctx "github.com/HYRE-AU/Hyrenow-sub000/internal/observability"
)

// LimiterKey is the shared bucket every text-generation call draws from.
const LimiterKey = "ai:chat"

// Limiter blocks until the shared bucket admits a call.
type Limiter interface {
	Wait(ctx context.Context, key string, cost int64) error
}

// Client calls chat completions with retries, a shared rate limit and a
// circuit breaker.
type Client struct {
	cfg     config.Config
	api     *openai.Client
	limiter Limiter
	breaker *CircuitBreaker
	counter *tokencount.Counter
}

// New constructs a Client. limiter may be nil.
func New(cfg config.Config, limiter Limiter) *Client {
	oc := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		oc.BaseURL = cfg.OpenAIBaseURL
	}
	oc.HTTPClient = &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   cfg.AIRequestTimeout,
	}
	return &Client{
		cfg:     cfg,
		api:     openai.NewClientWithConfig(oc),
		limiter: limiter,
		breaker: NewCircuitBreaker(5, 30*time.Second),
		counter: tokencount.DefaultCounter,
	}
}

func (c *Client) retryPolicy() *backoff.ExponentialBackOff {
	expo := backoff.NewExponentialBackOff()
	expo.MaxElapsedTime, expo.InitialInterval, expo.MaxInterval, expo.Multiplier = c.cfg.GetAIBackoffConfig()
	return expo
}

// ChatJSON sends one system+user exchange and returns the reply content.
// 429 and 5xx responses and transport failures are retried; other 4xx
// responses are returned immediately.
func (c *Client) ChatJSON(ctx domain.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	if c.cfg.OpenAIAPIKey == "" {
		return "", fmt.Errorf("op=ai.chat: %w: OPENAI_API_KEY missing", domain.ErrInvalidArgument)
	}
	operation := obsctx.AIOperationFromContext(ctx)
	lg := obsctx.LoggerFromContext(ctx).With(slog.String("provider", "openai"), slog.String("operation", operation))

	if !c.breaker.Allow() {
		observability.ObserveAIRequest(operation, "circuit_open", 0, 0)
		return "", fmt.Errorf("op=ai.chat: %w: circuit open", domain.ErrUpstreamTimeout)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, LimiterKey, 1); err != nil {
			c.breaker.Release()
			return "", fmt.Errorf("op=ai.chat: %w: %v", domain.ErrRateLimited, err)
		}
	}

	promptTokens, err := c.counter.CountChatTokens(systemPrompt, userPrompt, c.cfg.ChatModel)
	if err != nil {
		promptTokens = (len(systemPrompt) + len(userPrompt)) / 4
	}
	req := openai.ChatCompletionRequest{
		Model:       c.cfg.ChatModel,
		Temperature: 0.2,
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	var resp openai.ChatCompletionResponse
	attempts := 0
	start := time.Now()
	op := func() error {
		attempts++
		r, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			cerr := classify(err)
			lg.Warn("ai request failed", slog.Int("attempt", attempts), slog.Any("error", cerr))
			return cerr
		}
		resp = r
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(c.retryPolicy(), ctx)); err != nil {
		observability.ObserveAIRequest(operation, "error", time.Since(start), promptTokens)
		switch {
		case errors.Is(err, domain.ErrInvalidArgument):
			// The provider answered; the request was at fault.
			c.breaker.RecordSuccess()
		case errors.Is(err, context.Canceled):
			c.breaker.Release()
		default:
			c.breaker.RecordFailure()
		}
		if ctxErr := ctx.Err(); ctxErr != nil && !domain.IsRetryable(err) {
			err = fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, ctxErr)
		}
		return "", fmt.Errorf("op=ai.chat: %w", err)
	}
	c.breaker.RecordSuccess()

	if resp.Usage.PromptTokens > 0 {
		promptTokens = resp.Usage.PromptTokens
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		observability.ObserveAIRequest(operation, "empty", time.Since(start), promptTokens)
		return "", fmt.Errorf("op=ai.chat: %w: empty completion", domain.ErrSchemaInvalid)
	}
	observability.ObserveAIRequest(operation, "ok", time.Since(start), promptTokens)
	lg.Debug("ai request completed",
		slog.Int("attempts", attempts),
		slog.String("model", resp.Model),
		slog.Int("prompt_tokens", promptTokens),
		slog.Int("completion_tokens", resp.Usage.CompletionTokens),
		slog.String("finish_reason", string(resp.Choices[0].FinishReason)))
	return resp.Choices[0].Message.Content, nil
}

// classify maps a client error onto the domain taxonomy and marks the ones
// not worth retrying as permanent.
func classify(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", domain.ErrUpstreamRateLimit, err)
	case status == http.StatusRequestTimeout:
		return fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
	case status >= 400 && status < 500:
		return backoff.Permanent(fmt.Errorf("%w: status %d: %v", domain.ErrInvalidArgument, status, err))
	case status >= 500:
		return fmt.Errorf("%w: status %d: %v", domain.ErrUpstreamTimeout, status, err)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return backoff.Permanent(err)
	}
	return fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
}
