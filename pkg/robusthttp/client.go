package robusthttp

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type config struct {
	timeout   time.Duration
	transport http.RoundTripper
}

type Option func(*config)

// WithTimeout sets an overall per-request timeout on the client. Zero means no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.timeout = timeout
	}
}

// WithTransport sets a custom transport for the HTTP client. It is still wrapped with otel instrumentation.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *config) {
		c.transport = transport
	}
}

// Generates an HTTP client for directory requests: pooled connections from
// go-cleanhttp, instrumented with otelhttp.
//
// Unlike a general-purpose inter-service client, this one never retries and
// has no timeout by default. A single failed attempt is terminal; callers
// that want a deadline set one on the request context, or use WithTimeout.
func NewClient(options ...Option) *http.Client {
	cfg := config{
		transport: cleanhttp.DefaultPooledTransport(),
	}
	for _, option := range options {
		option(&cfg)
	}

	return &http.Client{
		Transport: otelhttp.NewTransport(cfg.transport),
		Timeout:   cfg.timeout,
	}
}

// For use in local integration tests. Short timeout, plain transport.
func TestingHTTPClient() *http.Client {
	return &http.Client{
		Transport: cleanhttp.DefaultTransport(),
		Timeout:   1 * time.Second,
	}
}
