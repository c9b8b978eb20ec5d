// Package textgen produces project ideas and encouragement messages through
// the Gemini generateContent API.
package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/inourx99/Englishcompition/internal/domain/model"
	"github.com/inourx99/Englishcompition/pkg/logger"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.5-flash"

	maxResponseBytes = 1 << 20
)

// Generator produces display text for the classroom.
type Generator interface {
	ProjectIdeas(ctx context.Context, grade model.Grade) (string, error)
	Encouragement(ctx context.Context, name string, points int) (string, error)
}

// GeminiClient calls the Gemini REST API.
type GeminiClient struct {
	apiKey      string
	baseURL     string
	model       string
	client      *http.Client
	maxAttempts int
	backoff     time.Duration
	log         logger.Logger
}

var _ Generator = (*GeminiClient)(nil)

// NewGeminiClient creates a client. An empty apiKey yields a client that always
// returns ErrNotConfigured.
func NewGeminiClient(apiKey string, opts ...Option) *GeminiClient {
	c := &GeminiClient{
		apiKey:      strings.TrimSpace(apiKey),
		baseURL:     DefaultBaseURL,
		model:       DefaultModel,
		client:      &http.Client{Timeout: 60 * time.Second},
		maxAttempts: 2,
		backoff:     time.Second,
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsConfigured reports whether an API key is set.
func (c *GeminiClient) IsConfigured() bool {
	return c.apiKey != ""
}

// ProjectIdeas asks for three simple English project ideas for grade.
func (c *GeminiClient) ProjectIdeas(ctx context.Context, grade model.Grade) (string, error) {
	return c.generateWithRetry(ctx, ideasPrompt(grade))
}

// Encouragement asks for a one-line message for a participant with points.
func (c *GeminiClient) Encouragement(ctx context.Context, name string, points int) (string, error) {
	return c.generateWithRetry(ctx, encouragementPrompt(name, points))
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("gemini: status %d: %s", e.code, e.body)
}

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= http.StatusInternalServerError
}

// generateWithRetry retries retryable failures with exponential backoff 1x, 2x, 4x...
func (c *GeminiClient) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	var lastErr error
	for attempt := range c.maxAttempts {
		text, err := c.generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !isRetryable(err) || attempt == c.maxAttempts-1 {
			break
		}

		backoff := c.backoff << attempt
		c.log.Warn(ctx, "text generation failed; retrying",
			logger.Int("attempt", attempt+1),
			logger.Duration("backoff", backoff),
			logger.Error(err),
		)
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
		case <-time.After(backoff):
		}
	}
	return "", fmt.Errorf("%w: %w", ErrUnavailable, lastErr)
}

func (c *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := strings.TrimRight(c.baseURL, "/") + "/v1beta/models/" + c.model + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &transportError{op: "send request", err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &transportError{op: "read response", err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &statusError{code: resp.StatusCode, body: truncate(string(respBody), 256)}
	}

	var decoded generateResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, p := range decoded.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}

	c.log.Debug(ctx, "text generated", logger.String("model", c.model), logger.Int("chars", len(text)))
	return text, nil
}

type transportError struct {
	op  string
	err error
}

func (e *transportError) Error() string { return e.op + ": " + e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// isRetryable reports network failures, 429 and 5xx responses.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.retryable()
	}
	var te *transportError
	return errors.As(err, &te)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
