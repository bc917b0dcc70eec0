// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/stacklok/registry-oidc-auth/httperr"
)

// Outcome is the engine's decision about one attempt.
type Outcome int

const (
	// OutcomeSuccess means the attempt returned no error.
	OutcomeSuccess Outcome = iota
	// OutcomeRetryable means another attempt may succeed.
	OutcomeRetryable
	// OutcomeTerminal means retrying cannot help and the engine stops.
	OutcomeTerminal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRetryable:
		return "retryable"
	case OutcomeTerminal:
		return "terminal"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Classify decides whether err is worth another attempt.
//
// An error is retryable iff it carries no HTTP response (transport failure or
// timeout) or its status is 5xx. Any carried response below 500, including
// 4xx answers and 2xx answers the caller rejected, is terminal. Requests that
// could not be built and cancelled or expired parent contexts are terminal too.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	if errors.Is(err, httperr.ErrInvalidRequest) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return OutcomeTerminal
	}
	if resp, ok := httperr.ResponseOf(err); ok {
		if resp.StatusCode >= http.StatusInternalServerError {
			return OutcomeRetryable
		}
		return OutcomeTerminal
	}
	return OutcomeRetryable
}

// kindOf summarizes err for diagnostics.
func kindOf(err error) string {
	var timeoutErr *httperr.TimeoutError
	var transportErr *httperr.TransportError
	switch {
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &transportErr):
		return "transport"
	case errors.Is(err, httperr.ErrInvalidRequest):
		return "invalid_request"
	}
	if resp, ok := httperr.ResponseOf(err); ok {
		switch {
		case resp.StatusCode >= http.StatusInternalServerError:
			return "server_error"
		case resp.StatusCode >= http.StatusBadRequest:
			return "client_error"
		default:
			return "unusable_response"
		}
	}
	return "error"
}
