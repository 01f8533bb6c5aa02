// Package contextsvc collects example host-exposed context services:
// concrete runtime.ContextService implementations a host application can
// register with a runtime.Runtime before loading plugins that call them.
// Each is grounded on one of the teacher's hostfuncs, trimmed of the
// capability/sandbox-policy machinery that spec.md §1 puts out of scope for
// the runtime itself — a host application is free to layer that back on by
// wrapping these services in a ContextService of its own.
package contextsvc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/plugyrt/plugy/runtime"
)

// FetchRequest is the argument of the "fetch" context method, the request
// shape a guest's _plugy_context_fetch import sends.
type FetchRequest struct {
	Method  string            `json:"method,omitempty"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    []byte            `json:"body,omitempty"`
}

// FetchResponse is the "fetch" method's result.
type FetchResponse struct {
	StatusCode int                 `json:"status_code"`
	Headers    map[string][]string `json:"headers,omitempty"`
	Body       []byte              `json:"body,omitempty"`
	LatencyMs  int64               `json:"latency_ms"`
}

// HTTPOption configures an HTTPService.
type HTTPOption func(*httpConfig)

type httpConfig struct {
	timeout     time.Duration
	maxBodySize int64
}

func defaultHTTPConfig() httpConfig {
	return httpConfig{
		timeout:     30 * time.Second,
		maxBodySize: 10 * 1024 * 1024,
	}
}

// WithTimeout overrides the per-request timeout (default 30s).
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *httpConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxBodySize overrides the maximum response body read (default 10MiB).
func WithMaxBodySize(n int64) HTTPOption {
	return func(c *httpConfig) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// HTTPService exposes a single "fetch" context method guest plugins call to
// perform outbound HTTP requests, the host-service-callback scenario of
// spec.md §8 scenario 3. It is the generic descendant of the teacher's
// hostfuncs.PerformHTTPRequest, with the SSRF/DNS-pinning transport and
// capability-policy checks removed: those belong to an application's own
// ContextService wrapper, not to this example.
type HTTPService[D any] struct {
	client *http.Client
	cfg    httpConfig
}

// NewHTTPService constructs an HTTPService ready to register with a
// runtime.Runtime via Runtime.Context.
func NewHTTPService[D any](opts ...HTTPOption) *HTTPService[D] {
	cfg := defaultHTTPConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &HTTPService[D]{
		client: &http.Client{Timeout: cfg.timeout},
		cfg:    cfg,
	}
}

// ContextMethods implements runtime.ContextService.
func (s *HTTPService[D]) ContextMethods() map[string]runtime.ContextHandler[D] {
	return map[string]runtime.ContextHandler[D]{
		"fetch": runtime.NewJSONContextHandler[D](s.fetch),
	}
}

func (s *HTTPService[D]) fetch(ctx context.Context, req FetchRequest) (FetchResponse, error) {
	if req.URL == "" {
		return FetchResponse{}, fmt.Errorf("contextsvc: fetch request is missing a URL")
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.timeout)
	defer cancel()

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), req.URL, body)
	if err != nil {
		return FetchResponse{}, fmt.Errorf("contextsvc: build request: %w", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := s.client.Do(httpReq)
	latency := time.Since(start)
	if err != nil {
		return FetchResponse{}, fmt.Errorf("contextsvc: fetch %s: %w", req.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	limited := io.LimitReader(resp.Body, s.cfg.maxBodySize)
	respBody, err := io.ReadAll(limited)
	if err != nil {
		return FetchResponse{}, fmt.Errorf("contextsvc: read response body: %w", err)
	}

	return FetchResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
		LatencyMs:  latency.Milliseconds(),
	}, nil
}
