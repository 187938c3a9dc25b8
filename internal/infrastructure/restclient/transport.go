package restclient

import (
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitedTransport delays outbound requests to stay under a fixed rate.
type RateLimitedTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

// NewRateLimitedTransport wraps next; a nil next uses http.DefaultTransport.
func NewRateLimitedTransport(next http.RoundTripper, requestsPerSecond float64) *RateLimitedTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	burst := max(1, int(math.Ceil(requestsPerSecond)))
	return &RateLimitedTransport{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

func (t *RateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.next.RoundTrip(req)
}

// NewHTTPClient builds the HTTP client handed to the provider factory.
// Zero values keep the defaults (30s timeout, no throttling).
func NewHTTPClient(timeout time.Duration, requestsPerSecond float64) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &http.Client{Timeout: timeout}
	if requestsPerSecond > 0 {
		client.Transport = NewRateLimitedTransport(http.DefaultTransport, requestsPerSecond)
	}
	return client
}
