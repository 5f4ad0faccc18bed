// Package httputil centralizes HTTP client construction so every remote
// collaborator shares the same timeout policy.
package httputil

import (
	"net/http"
	"time"
)

const DefaultTimeout = 15 * time.Second

// NewClient returns an HTTP client with the standard timeout. Both weather
// endpoints and the geocoder use this; per-call deadlines still come from
// the request context.
func NewClient() *http.Client {
	return NewClientWithTimeout(DefaultTimeout)
}

// NewClientWithTimeout returns an HTTP client with an explicit timeout.
func NewClientWithTimeout(d time.Duration) *http.Client {
	return &http.Client{
		Timeout: d,
	}
}
