package textgen

import (
	"net/http"
	"time"

	"github.com/inourx99/Englishcompition/pkg/logger"
)

// Option applies a configuration option to the GeminiClient.
type Option func(*GeminiClient)

// WithBaseURL overrides the API endpoint, e.g. for tests or a proxy.
func WithBaseURL(u string) Option {
	return func(c *GeminiClient) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithModel sets the model id.
func WithModel(m string) Option {
	return func(c *GeminiClient) {
		if m != "" {
			c.model = m
		}
	}
}

// WithTimeout sets the HTTP client timeout for one attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *GeminiClient) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *GeminiClient) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithMaxAttempts bounds the number of attempts per request.
func WithMaxAttempts(n int) Option {
	return func(c *GeminiClient) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBackoff sets the delay before the first retry; later retries double it.
func WithBackoff(d time.Duration) Option {
	return func(c *GeminiClient) {
		if d > 0 {
			c.backoff = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *GeminiClient) {
		if l != nil {
			c.log = l
		}
	}
}
