// Package review asks a hosted chat-completions model to review the staged
// diff and reduces its answer to a pass/reject verdict.
package review

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nodpts/no-dpts/internal/config"
	"github.com/nodpts/no-dpts/internal/logging"
	"github.com/nodpts/no-dpts/internal/ratelimit"
	"github.com/nodpts/no-dpts/internal/types"
)

const (
	// DefaultEndpoint is the Groq OpenAI-compatible completions endpoint.
	DefaultEndpoint = "https://api.groq.com/openai/v1/chat/completions"
	// APIKeyEnv names the environment variable holding the credential.
	APIKeyEnv = "GROQ_API_KEY"

	defaultTimeout = 60 * time.Second
	temperature    = 0.3
	maxTokens      = 1024
	maxBodyBytes   = 1 << 20

	noResponse = "No response from AI"
	noChanges  = "No changes to review."
)

const promptTemplate = `Act as a Senior Code Reviewer with expertise in security and best practices.

Analyze the following Git diff for:
1. Logic bugs or errors
2. Security vulnerabilities (SQL injection, XSS, auth issues, etc.)
3. Code smells (dead code, duplications, poor naming, etc.)
4. Performance issues
5. Best practice violations

IMPORTANT: Your response MUST start with exactly one of these lines:
- "RESULT: PASS" if the code is acceptable (may have minor suggestions)
- "RESULT: REJECT" if the code has critical issues that must be fixed

After the RESULT line, provide a brief explanation of your findings.

Here is the diff to review:

` + "```diff\n%s\n```"

// Prompt renders the review instruction for diff.
func Prompt(diff string) string {
	return fmt.Sprintf(promptTemplate, diff)
}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	Model             string
	Endpoint          string
	RequestsPerMinute int
	Timeout           time.Duration

	HTTPClient *http.Client
	Clock      ratelimit.Clock
	// Getenv reads the credential at call time.
	Getenv func(string) string
	Log    *zap.Logger
}

// OptionsFromConfig maps the effective configuration onto client options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{Model: cfg.AIModel, RequestsPerMinute: cfg.RequestsPerMinute}
}

// Client reviews diffs. It is safe for concurrent use; requests share one
// rate limiter.
type Client struct {
	model    string
	endpoint string
	http     *http.Client
	limiter  *ratelimit.Limiter
	getenv   func(string) string
	log      *zap.Logger
}

// NewClient builds a Client from opts.
func NewClient(opts Options) *Client {
	c := &Client{
		model:    opts.Model,
		endpoint: opts.Endpoint,
		http:     opts.HTTPClient,
		getenv:   opts.Getenv,
		log:      logging.OrNop(opts.Log),
		limiter:  ratelimit.New(opts.RequestsPerMinute, opts.Clock),
	}
	if c.model == "" {
		c.model = config.DefaultAIModel
	}
	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.getenv == nil {
		c.getenv = os.Getenv
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Review sends diff for review. A blank diff passes without any network
// call or rate-limit token. A missing credential fails with ErrConfiguration
// before anything is sent.
func (c *Client) Review(ctx context.Context, diff string) (types.ReviewResult, error) {
	if strings.TrimSpace(diff) == "" {
		return types.ReviewResult{Passed: true, Feedback: noChanges}, nil
	}
	key := strings.TrimSpace(c.getenv(APIKeyEnv))
	if key == "" {
		return types.ReviewResult{}, fmt.Errorf("%w: %s is not set", ErrConfiguration, APIKeyEnv)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return types.ReviewResult{}, fmt.Errorf("%w: waiting for rate limit: %v", ErrTransport, err)
	}

	content, err := c.complete(ctx, key, Prompt(Truncate(diff)))
	if err != nil {
		return types.ReviewResult{}, err
	}
	res := ParseVerdict(content)
	c.log.Debug("AI review finished", zap.Bool("passed", res.Passed), zap.Int("diff_bytes", len(diff)))
	return res, nil
}

func (c *Client) complete(ctx context.Context, key, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &UpstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(out.Choices) == 0 {
		return noResponse, nil
	}
	return out.Choices[0].Message.Content, nil
}
