// Package linkcheck performs the bounded HEAD/GET check behind every
// link verdict.
package linkcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/promisetracker/linkwatch/internal/domain"
)

// DefaultTimeout bounds each request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Checker implements domain.LinkChecker over net/http.
type Checker struct {
	client    *http.Client
	userAgent string
}

// New creates a Checker. Redirects are followed (net/http's default
// policy); the timeout applies to each request separately.
func New(timeout time.Duration, userAgent string) *Checker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = domain.DefaultUserAgent
	}
	return &Checker{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Check issues a HEAD request and retries once with GET when the server
// answers 405. Status codes below 400 are valid. Transport failures come
// back as invalid with status 0; Check never returns an error.
func (c *Checker) Check(ctx context.Context, url string) domain.LinkCheck {
	code, err := c.do(ctx, http.MethodHead, url)
	if err == nil && code == http.StatusMethodNotAllowed {
		code, err = c.do(ctx, http.MethodGet, url)
	}
	if err != nil {
		return domain.LinkCheck{IsValid: false, StatusCode: 0, Message: describe(err)}
	}
	if code < 400 {
		return domain.LinkCheck{IsValid: true, StatusCode: code, Message: domain.MessageOK}
	}
	return domain.LinkCheck{IsValid: false, StatusCode: code, Message: fmt.Sprintf("HTTP %d", code)}
}

func (c *Checker) do(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	// Drain a little so the connection can be reused; GET bodies are not inspected.
	_, _ = io.CopyN(io.Discard, resp.Body, 4<<10)
	return resp.StatusCode, nil
}

// describe maps a transport error onto the verdict reason.
func describe(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.MessageTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.MessageTimeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return domain.MessageConnectionError
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return domain.MessageConnectionError
	}
	return "Request Error: " + err.Error()
}
