package engine

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"google.golang.org/api/idtoken"
)

// NewIdentityClient builds the process-lifetime engine HTTP client. The
// client attaches an ID token with the engine base URL as audience to
// every request and refreshes it internally. Credential acquisition
// failure here is startup-fatal for the caller.
func NewIdentityClient(ctx context.Context, audience string, timeout time.Duration) (*http.Client, error) {
	client, err := idtoken.NewClient(ctx, audience)
	if err != nil {
		return nil, fmt.Errorf("engine credential for %s: %w", audience, err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client.Timeout = timeout
	return client, nil
}

// SharedHTTPClient returns a pooled HTTP client for the platform API
// calls (profile lookup, reply send), created once at startup.
func SharedHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	transport := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
