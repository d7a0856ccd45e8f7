package review

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noSleepClock struct{ slept atomic.Int32 }

func (c *noSleepClock) Now() time.Time { return time.Unix(0, 0) }

func (c *noSleepClock) Sleep(context.Context, time.Duration) error {
	c.slept.Add(1)
	return nil
}

func env(key string) func(string) string {
	return func(name string) string {
		if name == APIKeyEnv {
			return key
		}
		return ""
	}
}

func completion(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": content}}},
	})
	return string(b)
}

func newServer(t *testing.T, status int, body string, hits *atomic.Int32, check func(*http.Request, chatRequest)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		raw, _ := io.ReadAll(r.Body)
		var req chatRequest
		_ = json.Unmarshal(raw, &req)
		if check != nil {
			check(r, req)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestReview_EmptyDiffNoNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, 200, completion("RESULT: PASS"), &hits, nil)
	clk := &noSleepClock{}
	c := NewClient(Options{Endpoint: srv.URL, Getenv: env(""), Clock: clk})

	res, err := c.Review(context.Background(), "  \n\t ")
	require.NoError(t, err)
	assert.True(t, res.Passed)
	assert.Equal(t, "No changes to review.", res.Feedback)
	assert.Zero(t, hits.Load())
	assert.Zero(t, clk.slept.Load())
}

func TestReview_MissingKey(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, 200, completion("RESULT: PASS"), &hits, nil)
	c := NewClient(Options{Endpoint: srv.URL, Getenv: env("   ")})

	_, err := c.Review(context.Background(), "diff --git a/x b/x\n+hello\n")
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.Zero(t, hits.Load())
}

func TestReview_RequestShapeAndPass(t *testing.T) {
	var hits atomic.Int32
	var seen chatRequest
	var auth string
	srv := newServer(t, 200, completion("RESULT: PASS\nLooks fine.\n- minor nit"), &hits, func(r *http.Request, req chatRequest) {
		seen = req
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, http.MethodPost, r.Method)
	})
	c := NewClient(Options{Endpoint: srv.URL, Model: "test-model", Getenv: env("k-123"), Clock: &noSleepClock{}})

	res, err := c.Review(context.Background(), "+func add(a, b int) int { return a + b }\n")
	require.NoError(t, err)
	assert.True(t, res.Passed)
	assert.Equal(t, "Looks fine.\n- minor nit", res.Feedback)
	assert.Equal(t, "Bearer k-123", auth)
	assert.Equal(t, "test-model", seen.Model)
	assert.InDelta(t, 0.3, seen.Temperature, 1e-9)
	assert.Equal(t, 1024, seen.MaxTokens)
	require.Len(t, seen.Messages, 1)
	assert.Equal(t, "user", seen.Messages[0].Role)
	assert.Contains(t, seen.Messages[0].Content, "Act as a Senior Code Reviewer")
	assert.Contains(t, seen.Messages[0].Content, "```diff\n+func add(a, b int) int { return a + b }\n")
}

func TestReview_DefaultModel(t *testing.T) {
	var hits atomic.Int32
	var model string
	srv := newServer(t, 200, completion("RESULT: REJECT\nSQL injection"), &hits, func(_ *http.Request, req chatRequest) {
		model = req.Model
	})
	c := NewClient(Options{Endpoint: srv.URL, Getenv: env("k"), Clock: &noSleepClock{}})
	res, err := c.Review(context.Background(), "+x")
	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.Equal(t, "SQL injection", res.Feedback)
	assert.Equal(t, "llama-3.3-70b-versatile", model)
}

func TestReview_UpstreamError(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, http.StatusTooManyRequests, `{"error":"slow down"}`, &hits, nil)
	c := NewClient(Options{Endpoint: srv.URL, Getenv: env("k"), Clock: &noSleepClock{}})

	_, err := c.Review(context.Background(), "+x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstream))
	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, 429, ue.Status)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "slow down")
}

func TestReview_ParseError(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, 200, "<html>not json</html>", &hits, nil)
	c := NewClient(Options{Endpoint: srv.URL, Getenv: env("k"), Clock: &noSleepClock{}})
	_, err := c.Review(context.Background(), "+x")
	assert.True(t, errors.Is(err, ErrParse))
}

func TestReview_NoChoices(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, 200, `{"choices":[]}`, &hits, nil)
	c := NewClient(Options{Endpoint: srv.URL, Getenv: env("k"), Clock: &noSleepClock{}})
	res, err := c.Review(context.Background(), "+x")
	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.Equal(t, "No response from AI", res.RawResponse)
	assert.Equal(t, "No response from AI", res.Feedback)
}

func TestReview_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()
	c := NewClient(Options{Endpoint: url, Getenv: env("k"), Clock: &noSleepClock{}})
	_, err := c.Review(context.Background(), "+x")
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestReview_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)
	c := NewClient(Options{Endpoint: srv.URL, Getenv: env("k"), Clock: &noSleepClock{}, Timeout: 50 * time.Millisecond})
	_, err := c.Review(context.Background(), "+x")
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestReview_SharedLimiter(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, 200, completion("RESULT: PASS"), &hits, nil)
	clk := &noSleepClock{}
	c := NewClient(Options{Endpoint: srv.URL, Getenv: env("k"), Clock: clk, RequestsPerMinute: 1})
	for i := 0; i < 3; i++ {
		_, err := c.Review(context.Background(), "+x")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), hits.Load())
	// the fake clock never advances, so every call after the first waits
	assert.Equal(t, int32(2), clk.slept.Load())
}

func TestReview_TruncatesLargeDiff(t *testing.T) {
	var hits atomic.Int32
	var prompt string
	srv := newServer(t, 200, completion("RESULT: PASS"), &hits, func(_ *http.Request, req chatRequest) {
		prompt = req.Messages[0].Content
	})
	c := NewClient(Options{Endpoint: srv.URL, Getenv: env("k"), Clock: &noSleepClock{}})
	_, err := c.Review(context.Background(), strings.Repeat("+", MaxDiffBytes+500))
	require.NoError(t, err)
	assert.Contains(t, prompt, "[diff truncated, 500 characters omitted]")
}
