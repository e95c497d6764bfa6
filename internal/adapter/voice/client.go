// Package voice fetches call details from the voice provider when a
// completion callback arrives without a transcript.
package voice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/config"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
)

// Client implements domain.CallDetailFetcher over the provider REST API.
type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
	retry   func() backoff.BackOff
}

// New builds a Client from configuration.
func New(cfg config.Config) *Client {
	maxElapsed, initial, maxInterval, mult := cfg.GetAIBackoffConfig()
	return &Client{
		baseURL: strings.TrimRight(cfg.VoiceAPIBaseURL, "/"),
		apiKey:  cfg.VoiceAPIKey,
		hc: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.VoiceAPITimeout,
		},
		retry: func() backoff.BackOff {
			expo := backoff.NewExponentialBackOff()
			expo.MaxElapsedTime, expo.InitialInterval, expo.MaxInterval, expo.Multiplier = maxElapsed, initial, maxInterval, mult
			return backoff.WithMaxRetries(expo, 3)
		},
	}
}

// FetchCall returns the transcript, turns and recording of one call.
func (c *Client) FetchCall(ctx domain.Context, callID string) (domain.CallDetail, error) {
	if callID == "" {
		return domain.CallDetail{}, fmt.Errorf("op=voice.fetch_call: %w: empty call id", domain.ErrInvalidArgument)
	}
	if c.apiKey == "" {
		return domain.CallDetail{}, fmt.Errorf("op=voice.fetch_call: %w: VOICE_API_KEY missing", domain.ErrInvalidArgument)
	}
	endpoint := c.baseURL + "/call/" + url.PathEscape(callID)

	var call Call
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Accept", "application/json")
		resp, err := c.hc.Do(req)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return backoff.Permanent(err)
			}
			return fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
		}
		defer func() { _ = resp.Body.Close() }()
		body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
		if err != nil {
			return fmt.Errorf("%w: read body: %v", domain.ErrUpstreamTimeout, err)
		}
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(fmt.Errorf("%w: call %s", domain.ErrNotFound, callID))
		case resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: status 429", domain.ErrUpstreamRateLimit)
		case resp.StatusCode >= 500:
			return fmt.Errorf("%w: status %d", domain.ErrUpstreamTimeout, resp.StatusCode)
		case resp.StatusCode >= 400:
			return backoff.Permanent(fmt.Errorf("%w: status %d", domain.ErrInvalidArgument, resp.StatusCode))
		}
		if err := json.Unmarshal(body, &call); err != nil {
			return backoff.Permanent(fmt.Errorf("%w: decode call: %v", domain.ErrSchemaInvalid, err))
		}
		return nil
	}
	notify := func(err error, wait time.Duration) {
		slog.Warn("call detail fetch retry", slog.String("call_id", callID), slog.Duration("wait", wait), slog.Any("error", err))
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(c.retry(), ctx), notify); err != nil {
		return domain.CallDetail{}, fmt.Errorf("op=voice.fetch_call: %w", err)
	}
	return call.Detail(), nil
}
