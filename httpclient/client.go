// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/registry-oidc-auth/httperr"
	validation "github.com/stacklok/registry-oidc-auth/validation/http"
)

const (
	// DefaultTimeout bounds a request when neither the request nor the client sets one.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent when the client is built without WithUserAgent.
	DefaultUserAgent = "registry-oidc-auth"

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 1 << 20
)

// Request describes a single HTTP call.
type Request struct {
	Method string
	URL    string
	Header map[string]string
	// Body is JSON-encoded when non-nil.
	Body any
	// Timeout overrides the client's default deadline when positive.
	Timeout time.Duration
}

// Client issues single HTTP requests under a hard deadline and normalizes the
// outcome into an httperr.Response. It never retries.
type Client struct {
	http      *http.Client
	userAgent string
	timeout   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithTimeout sets the deadline applied to requests that do not carry their own.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient replaces the underlying *http.Client. The client's own
// Timeout is left alone; deadlines are enforced per request via context.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New returns a Client backed by the cleanhttp pooled client.
//
// If the given context has a recording OpenTelemetry span, outgoing requests
// are also traced with that span's tracer provider. Each request's span is
// parented on the context passed to Do.
func New(ctx context.Context, opts ...Option) *Client {
	c := &Client{
		http:      cleanhttp.DefaultPooledClient(),
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	transport := c.http.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	transport = &userAgentRoundTripper{userAgent: c.userAgent, inner: transport}
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		transport = otelhttp.NewTransport(transport, otelhttp.WithTracerProvider(span.TracerProvider()))
	}

	hc := *c.http
	hc.Transport = transport
	c.http = &hc
	return c
}

// Do sends req once and returns the normalized response.
//
// Errors are typed: *httperr.TimeoutError when the deadline expires before a
// response is fully read, *httperr.TransportError for other failures without a
// response, and *httperr.ResponseError wrapping httperr.ErrUnexpectedStatus
// (non-2xx) or httperr.ErrDecodeBody (2xx with malformed JSON). Requests that
// cannot be built wrap httperr.ErrInvalidRequest.
func (c *Client) Do(ctx context.Context, req *Request) (*httperr.Response, error) {
	timeout := c.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}

	httpReq, err := c.build(ctx, req)
	if err != nil {
		return nil, err
	}

	// Cancelling the context closes the underlying connection, including
	// while the body is still being read.
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	httpReq = httpReq.WithContext(reqCtx)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, c.transportError(ctx, reqCtx, req, timeout, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, c.transportError(ctx, reqCtx, req, timeout, err)
	}

	out := &httperr.Response{
		StatusCode: resp.StatusCode,
		StatusText: statusText(resp),
		Header:     resp.Header,
		Body:       string(raw),
	}

	if isJSON(resp.Header.Get("Content-Type")) {
		body, decodeErr := decodeJSON(raw)
		switch {
		case decodeErr == nil:
			out.Body = body
		case out.OK():
			return out, httperr.WithResponse(fmt.Errorf("%w: %w", httperr.ErrDecodeBody, decodeErr), out)
		}
		// Non-2xx bodies that fail to parse stay as raw text so the status
		// error still carries them.
	}

	if !out.OK() {
		return out, httperr.NewStatusError(out)
	}
	return out, nil
}

func (*Client) build(ctx context.Context, req *Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	if err := validation.ValidateHeaders(req.Header); err != nil {
		return nil, fmt.Errorf("%w: %w", httperr.ErrInvalidRequest, err)
	}

	var body io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: encoding body: %w", httperr.ErrInvalidRequest, err)
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", httperr.ErrInvalidRequest, err)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for name, value := range req.Header {
		httpReq.Header.Set(name, value)
	}
	return httpReq, nil
}

// transportError distinguishes our own deadline from a cancelled parent.
func (*Client) transportError(parent, reqCtx context.Context, req *Request, timeout time.Duration, err error) error {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	if parent.Err() == nil && errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return &httperr.TimeoutError{Method: method, URL: req.URL, Limit: timeout}
	}
	return &httperr.TransportError{Method: method, URL: req.URL, Err: err}
}

func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	// resp.Status is "418 I'm a teapot"; keep only the reason phrase.
	_, reason, _ := strings.Cut(resp.Status, " ")
	return reason
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func decodeJSON(raw []byte) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

type userAgentRoundTripper struct {
	userAgent string
	inner     http.RoundTripper
}

func (rt *userAgentRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if _, ok := req.Header["User-Agent"]; !ok {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", rt.userAgent)
	}
	return rt.inner.RoundTrip(req)
}
