package scan

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"bountyledger/internal/domain"
)

// DefaultHTTPTimeout bounds each platform request.
const DefaultHTTPTimeout = 15 * time.Second

// Source fetches and normalizes listings from one external platform.
// Scan never fails: transport and schema faults are absorbed internally,
// logged, and surface as an empty slice. The raw count reports how many
// items the platform returned before normalization.
type Source interface {
	Platform() string
	Scan(ctx context.Context) (opps []domain.Opportunity, raw int)
}

// Gate spaces successive requests against a shared public API.
type Gate interface {
	Wait(ctx context.Context) error
}

// Option configures a scanner.
type Option func(*options)

type options struct {
	client   *http.Client
	log      zerolog.Logger
	gate     Gate
	endpoint string
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithGate sets the inter-request gate for rate-limit-sensitive sources.
func WithGate(g Gate) Option {
	return func(o *options) {
		o.gate = g
	}
}

// WithEndpoint overrides a scanner's fixed API endpoint.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
	}
}

func defaultOptions() options {
	return options{
		client: &http.Client{Timeout: DefaultHTTPTimeout},
		log:    zerolog.Nop(),
	}
}

// clip truncates s to at most n runes.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
