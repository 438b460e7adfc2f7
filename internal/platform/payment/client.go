// Package payment talks to the external payment processors (PayPal,
// PhonePe, Razorpay) and exposes the endpoints the checkout pages call.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNotConfigured is returned by handlers for a provider without
// credentials.
var ErrNotConfigured = errors.New("payment provider not configured")

// ProviderError is a non-2xx answer from a processor.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Option configures a provider client.
type Option func(*httpClient)

// WithHTTPClient replaces the default client, e.g. in tests.
func WithHTTPClient(c *http.Client) Option {
	return func(h *httpClient) { h.client = c }
}

// WithBaseURL points a provider at a different API host.
func WithBaseURL(u string) Option {
	return func(h *httpClient) { h.baseURL = u }
}

// httpClient is the JSON-over-HTTP plumbing shared by the REST providers.
type httpClient struct {
	provider string
	baseURL  string
	client   *http.Client
}

func newHTTPClient(provider, baseURL string, opts []Option) httpClient {
	h := httpClient{
		provider: provider,
		baseURL:  baseURL,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(&h)
	}
	return h
}

// do sends req and decodes a 2xx JSON answer into out. Error bodies are
// truncated to 1KB.
func (h httpClient) do(req *http.Request, out interface{}) error {
	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", h.provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &ProviderError{Provider: h.provider, StatusCode: resp.StatusCode, Body: string(body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s decode response: %w", h.provider, err)
	}
	return nil
}

func (h httpClient) newJSONRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s encode request: %w", h.provider, err)
		}
		r = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("%s build request: %w", h.provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}
