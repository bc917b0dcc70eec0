// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package httperr provides error types that carry HTTP exchange context.
package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrUnexpectedStatus indicates the server answered with a status outside 200-299.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrDecodeBody indicates a response declared as JSON could not be parsed.
	ErrDecodeBody = errors.New("failed to decode response body")

	// ErrInvalidRequest indicates the request could not be built and was never sent.
	ErrInvalidRequest = errors.New("invalid request")
)

// Response is the normalized outcome of a single HTTP exchange.
// Body holds the decoded JSON value for JSON content types and the raw text otherwise.
type Response struct {
	StatusCode int
	StatusText string
	Header     http.Header
	Body       any
}

// OK reports whether the status code is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

// ResponseError wraps an error with the HTTP response that produced it.
// This allows callers to log the full failure context and classify the
// failure by status code without re-fetching.
type ResponseError struct {
	err      error
	response *Response
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	return e.err.Error()
}

// Unwrap returns the underlying error for errors.Is() and errors.As() compatibility.
func (e *ResponseError) Unwrap() error {
	return e.err
}

// Response returns the HTTP response associated with this error.
func (e *ResponseError) Response() *Response {
	return e.response
}

// HTTPCode returns the HTTP status code associated with this error.
func (e *ResponseError) HTTPCode() int {
	return e.response.StatusCode
}

// WithResponse wraps an error with the response it was derived from.
// If err is nil, WithResponse returns nil.
func WithResponse(err error, resp *Response) error {
	if err == nil {
		return nil
	}
	return &ResponseError{err: err, response: resp}
}

// NewStatusError builds the error returned for a non-2xx response.
func NewStatusError(resp *Response) error {
	return &ResponseError{
		err:      fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, resp.StatusText),
		response: resp,
	}
}

// ResponseOf extracts the HTTP response from an error chain.
func ResponseOf(err error) (*Response, bool) {
	var re *ResponseError
	if errors.As(err, &re) && re.response != nil {
		return re.response, true
	}
	return nil, false
}

// Code extracts the HTTP status code from an error.
// It returns http.StatusOK (200) for a nil error and 0 when the error
// carries no response, i.e. the request never got an answer.
func Code(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if resp, ok := ResponseOf(err); ok {
		return resp.StatusCode
	}
	return 0
}

// TransportError reports a request that failed before any response arrived.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// TimeoutError reports a request cancelled because no response arrived in time.
type TimeoutError struct {
	Method string
	URL    string
	// Limit is the deadline that expired.
	Limit time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s %s: no response within %s", e.Method, e.URL, e.Limit)
}

// Timeout reports true, matching the net.Error convention.
func (*TimeoutError) Timeout() bool {
	return true
}
