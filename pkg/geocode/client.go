// Package geocode resolves address text to place identifiers via the Google
// Geocoding API and resolves place identifiers back to structured addresses.
package geocode

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client is the provider surface the engine depends on. Implementations must
// be safe for concurrent use.
type Client interface {
	// Resolve geocodes one address line and returns its place identifier
	// with the provider's precision class.
	Resolve(ctx context.Context, address string) (*Result, error)

	// ResolveKey reverse-resolves a place identifier to a structured address.
	ResolveKey(ctx context.Context, placeKey string) (*Address, error)
}

// Result holds the forward-resolution output for an address line.
type Result struct {
	PlaceKey         string
	LocationType     string // ROOFTOP, RANGE_INTERPOLATED, GEOMETRIC_CENTER, APPROXIMATE, UNKNOWN
	Confidence       float64
	FormattedAddress string
}

// Address is the structured form recovered from a place identifier.
type Address struct {
	HouseNumber string
	StreetName  string
	City        string
	State       string
	ZipCode     string
}

// Option configures the client.
type Option func(*client)

// WithHTTPClient sets a custom HTTP client for all provider requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second limit for provider calls.
// Burst tracks the rate but never drops below one, so sub-1 rps limits can
// still admit a request.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithCache attaches a persistent result cache.
func WithCache(cache Cache) Option {
	return func(c *client) {
		c.cache = cache
	}
}

// WithRetry sets the attempt ceiling and base delay for transient failures.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(c *client) {
		c.maxAttempts = maxAttempts
		c.baseDelay = baseDelay
	}
}

type client struct {
	apiKey      string
	httpClient  *http.Client
	limiter     *rate.Limiter
	cache       Cache
	maxAttempts int
	baseDelay   time.Duration
}

// NewClient creates a Client for the given API key.
func NewClient(apiKey string, opts ...Option) Client {
	c := &client{
		apiKey:      apiKey,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		limiter:     rate.NewLimiter(50, 50),
		maxAttempts: 3,
		baseDelay:   500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
