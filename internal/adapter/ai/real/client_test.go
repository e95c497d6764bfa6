package real

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/config"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
	obsctx "github.com/HYRE-AU/Hyrenow-sub000/internal/observability"
)

func completion(content string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{"prompt_tokens": 42, "completion_tokens": 7, "total_tokens": 49},
	}
}

func testConfig(baseURL string) config.Config {
	return config.Config{
		AppEnv:           "test",
		OpenAIAPIKey:     "sk-test",
		OpenAIBaseURL:    baseURL,
		ChatModel:        "gpt-4o-mini",
		AIRequestTimeout: 5 * time.Second,
	}
}

type countingLimiter struct{ n atomic.Int32 }

func (l *countingLimiter) Wait(context.Context, string, int64) error {
	l.n.Add(1)
	return nil
}

func TestChatJSON_Success(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completion(`{"score":3}`))
	}))
	defer srv.Close()

	lim := &countingLimiter{}
	c := New(testConfig(srv.URL+"/v1"), lim)
	ctx := obsctx.ContextWithAIOperation(context.Background(), "score")
	out, err := c.ChatJSON(ctx, "system", "user", 300)
	require.NoError(t, err)
	assert.Equal(t, `{"score":3}`, out)
	assert.Equal(t, int32(1), lim.n.Load())

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 300, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, got.ResponseFormat.Type)
}

func TestChatJSON_RetriesRateLimitThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(completion(`{"ok":true}`))
	}))
	defer srv.Close()

	out, err := New(testConfig(srv.URL), nil).ChatJSON(context.Background(), "s", "u", 50)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
	assert.Equal(t, int32(2), calls.Load())
}

func TestChatJSON_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad model","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), nil)
	_, err := c.ChatJSON(context.Background(), "s", "u", 50)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, CircuitClosed, c.breaker.State())
}

func TestChatJSON_ServerErrorExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`upstream unavailable`))
	}))
	defer srv.Close()

	_, err := New(testConfig(srv.URL), nil).ChatJSON(context.Background(), "s", "u", 50)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamTimeout)
	assert.True(t, domain.IsRetryable(err))
	assert.Greater(t, calls.Load(), int32(1))
}

func TestChatJSON_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","choices":[]}`))
	}))
	defer srv.Close()

	_, err := New(testConfig(srv.URL), nil).ChatJSON(context.Background(), "s", "u", 50)
	assert.ErrorIs(t, err, domain.ErrSchemaInvalid)
}

func TestChatJSON_MissingKey(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.OpenAIAPIKey = ""
	_, err := New(cfg, nil).ChatJSON(context.Background(), "s", "u", 50)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestChatJSON_OpenCircuitFailsFast(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), nil)
	for i := 0; i < 5; i++ {
		c.breaker.RecordFailure()
	}
	_, err := c.ChatJSON(context.Background(), "s", "u", 50)
	assert.ErrorIs(t, err, domain.ErrUpstreamTimeout)
	assert.ErrorContains(t, err, "circuit open")
	assert.Zero(t, calls.Load())
}

func TestCircuitBreaker_Lifecycle(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	cb := NewCircuitBreaker(2, time.Minute)
	cb.now = func() time.Time { return now }

	assert.True(t, cb.Allow())
	cb.RecordFailure()
	assert.Equal(t, CircuitClosed, cb.State())
	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())
	assert.False(t, cb.Allow())

	now = now.Add(2 * time.Minute)
	assert.True(t, cb.Allow())
	assert.Equal(t, CircuitHalfOpen, cb.State())
	assert.False(t, cb.Allow(), "only one probe while half-open")

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())

	now = now.Add(2 * time.Minute)
	require.True(t, cb.Allow())
	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
	assert.Equal(t, "closed", cb.State().String())
}

type failingLimiter struct{}

func (failingLimiter) Wait(context.Context, string, int64) error {
	return errors.New("redis: connection refused")
}

func TestChatJSON_HalfOpenProbeRejectedThenRecovers(t *testing.T) {
	var calls atomic.Int32
	var healthy atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if !healthy.Load() {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"context too long","type":"invalid_request_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(completion(`{"ok":true}`))
	}))
	defer srv.Close()

	now := time.Unix(1_700_000_000, 0)
	c := New(testConfig(srv.URL), nil)
	c.breaker.now = func() time.Time { return now }
	for i := 0; i < 5; i++ {
		c.breaker.RecordFailure()
	}
	now = now.Add(time.Minute)

	_, err := c.ChatJSON(context.Background(), "s", "u", 50)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Equal(t, CircuitClosed, c.breaker.State())

	healthy.Store(true)
	out, err := c.ChatJSON(context.Background(), "s", "u", 50)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
	assert.Equal(t, int32(2), calls.Load())
}

func TestChatJSON_LimiterErrorReleasesProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completion(`{"ok":true}`))
	}))
	defer srv.Close()

	now := time.Unix(1_700_000_000, 0)
	c := New(testConfig(srv.URL), failingLimiter{})
	c.breaker.now = func() time.Time { return now }
	for i := 0; i < 5; i++ {
		c.breaker.RecordFailure()
	}
	now = now.Add(time.Minute)

	_, err := c.ChatJSON(context.Background(), "s", "u", 50)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, CircuitOpen, c.breaker.State())

	c.limiter = &countingLimiter{}
	_, err = c.ChatJSON(context.Background(), "s", "u", 50)
	require.NoError(t, err)
	assert.Equal(t, CircuitClosed, c.breaker.State())
}

func TestCircuitBreaker_StaleProbeIsReplaced(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	cb := NewCircuitBreaker(1, time.Minute)
	cb.now = func() time.Time { return now }

	cb.RecordFailure()
	now = now.Add(time.Minute)
	require.True(t, cb.Allow())
	assert.False(t, cb.Allow())

	now = now.Add(30 * time.Second)
	assert.False(t, cb.Allow())
	now = now.Add(30 * time.Second)
	assert.True(t, cb.Allow(), "a probe that never reported back is replaced")
	assert.Equal(t, CircuitHalfOpen, cb.State())
}
