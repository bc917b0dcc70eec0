// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package retry

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/stacklok/registry-oidc-auth/httperr"
)

const testLabel = "OIDC authentication"

func statusErr(code int, body any) error {
	return httperr.NewStatusError(&httperr.Response{
		StatusCode: code,
		StatusText: http.StatusText(code),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       body,
	})
}

func transportErr(n int) error {
	return &httperr.TransportError{
		Method: http.MethodPost,
		URL:    "https://api.example.com/openid/acme/",
		Err:    fmt.Errorf("connection reset on attempt %d", n),
	}
}

func fastPolicy(attempts int) Policy {
	return NewPolicy(attempts, time.Millisecond)
}

func newObserved() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

// scripted returns an operation that answers with errs in order and then
// succeeds with "ok".
func scripted(calls *int, errs ...error) Operation[string] {
	return func(context.Context) (string, error) {
		*calls++
		if *calls <= len(errs) {
			return "", errs[*calls-1]
		}
		return "ok", nil
	}
}

func TestDo_ZeroAttemptsNeverCalls(t *testing.T) {
	t.Parallel()

	for _, attempts := range []int{0, -1} {
		t.Run(fmt.Sprintf("max_attempts=%d", attempts), func(t *testing.T) {
			t.Parallel()

			calls := 0
			logger, logs := newObserved()
			got, err := Do(context.Background(), fastPolicy(attempts), testLabel, scripted(&calls), WithLogger(logger))

			require.ErrorIs(t, err, ErrNoAttempts)
			assert.Empty(t, got)
			assert.Equal(t, 0, calls)
			assert.Equal(t, 0, logs.Len())
		})
	}
}

func TestDo_SuccessFirstAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	logger, logs := newObserved()
	start := time.Now()
	got, err := Do(context.Background(), NewPolicy(3, time.Hour), testLabel, scripted(&calls), WithLogger(logger))

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, logs.Len())
	assert.Less(t, time.Since(start), time.Minute, "no delay should follow a success")
}

func TestDo_ServerErrorsThenSuccess(t *testing.T) {
	t.Parallel()

	const maxAttempts = 5
	for k := 1; k <= maxAttempts; k++ {
		t.Run(fmt.Sprintf("success_at_%d", k), func(t *testing.T) {
			t.Parallel()

			errs := make([]error, 0, k-1)
			for i := 0; i < k-1; i++ {
				errs = append(errs, statusErr(http.StatusInternalServerError+i%4, nil))
			}

			calls := 0
			logger, logs := newObserved()
			got, err := Do(context.Background(), fastPolicy(maxAttempts), testLabel, scripted(&calls, errs...), WithLogger(logger))

			require.NoError(t, err)
			assert.Equal(t, "ok", got)
			assert.Equal(t, k, calls)
			assert.Equal(t, k-1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
			assert.Equal(t, k-1, logs.FilterMessageSnippet("retrying in").Len())
		})
	}
}

func TestDo_ClientErrorAbortsImmediately(t *testing.T) {
	t.Parallel()

	for _, code := range []int{400, 401, 403, 404, 409, 422, 429, 499} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			t.Parallel()

			calls := 0
			logger, logs := newObserved()
			clientErr := statusErr(code, map[string]any{"detail": "nope"})
			_, err := Do(context.Background(), NewPolicy(10, time.Hour), testLabel, scripted(&calls, clientErr, clientErr), WithLogger(logger))

			require.ErrorIs(t, err, httperr.ErrUnexpectedStatus)
			assert.Equal(t, code, httperr.Code(err))
			assert.Equal(t, 1, calls)
			assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
			assert.Equal(t, 0, logs.FilterMessageSnippet("retrying in").Len())
		})
	}
}

func TestDo_ExhaustionReturnsLastError(t *testing.T) {
	t.Parallel()

	calls := 0
	logger, logs := newObserved()
	_, err := Do(context.Background(), fastPolicy(3), testLabel,
		scripted(&calls, transportErr(1), transportErr(2), transportErr(3), transportErr(4)),
		WithLogger(logger))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "attempt 3")
	var te *httperr.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	// No delay after the final attempt.
	assert.Equal(t, 2, logs.FilterMessageSnippet("retrying in").Len())
}

func TestDo_SingleAttemptTerminalErrorIsUnwrapped(t *testing.T) {
	t.Parallel()

	calls := 0
	clientErr := statusErr(http.StatusUnauthorized, nil)
	logger, _ := newObserved()
	_, err := Do(context.Background(), fastPolicy(1), testLabel, scripted(&calls, clientErr), WithLogger(logger))

	require.Error(t, err)
	assert.Same(t, clientErr, err)
	assert.Equal(t, 1, calls)
}

func TestDo_TerminalNonStatusErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{"invalid request", fmt.Errorf("%w: bad header", httperr.ErrInvalidRequest)},
		{"context cancelled", &httperr.TransportError{Method: http.MethodGet, URL: "http://x", Err: context.Canceled}},
		{"2xx response rejected by caller", httperr.WithResponse(errors.New("empty token"), &httperr.Response{StatusCode: http.StatusOK})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			calls := 0
			logger, _ := newObserved()
			_, err := Do(context.Background(), fastPolicy(5), testLabel, scripted(&calls, tt.err, tt.err), WithLogger(logger))

			require.ErrorIs(t, err, tt.err)
			assert.Equal(t, 1, calls)
		})
	}
}

func TestDo_TimeoutsAreRetried(t *testing.T) {
	t.Parallel()

	timeout := &httperr.TimeoutError{Method: http.MethodPost, URL: "https://api.example.com/openid/acme/", Limit: time.Second}
	calls := 0
	logger, logs := newObserved()
	got, err := Do(context.Background(), fastPolicy(3), testLabel, scripted(&calls, timeout, timeout), WithLogger(logger))

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)

	entries := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	assert.Equal(t, "timeout", fields["error_kind"])
	assert.Equal(t, "retryable", fields["outcome"])
	assert.Equal(t, "no response received from server", fields["detail"])
	assert.Equal(t, http.MethodPost, fields["request_method"])
}

func TestDo_WaitsBetweenAttempts(t *testing.T) {
	t.Parallel()

	const base = 20 * time.Millisecond
	var stamps []time.Time
	op := func(context.Context) (int, error) {
		stamps = append(stamps, time.Now())
		if len(stamps) < 3 {
			return 0, statusErr(http.StatusServiceUnavailable, nil)
		}
		return len(stamps), nil
	}

	logger, _ := newObserved()
	got, err := Do(context.Background(), NewPolicy(3, base), testLabel, op,
		WithLogger(logger), WithRandom(func() float64 { return 0 }))

	require.NoError(t, err)
	assert.Equal(t, 3, got)
	require.Len(t, stamps, 3)
	assert.GreaterOrEqual(t, stamps[1].Sub(stamps[0]), base)
	assert.GreaterOrEqual(t, stamps[2].Sub(stamps[1]), 2*base)
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	op := func(context.Context) (string, error) {
		calls++
		cancel()
		return "", statusErr(http.StatusBadGateway, nil)
	}

	logger, _ := newObserved()
	_, err := Do(ctx, NewPolicy(5, time.Hour), testLabel, op, WithLogger(logger))

	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, err, httperr.ErrUnexpectedStatus)
	assert.Equal(t, http.StatusBadGateway, httperr.Code(err))
	assert.Equal(t, 1, calls)
}

func TestDo_CancelledWhileWaitingKeepsLastError(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var last error
	calls := 0
	op := func(context.Context) (string, error) {
		calls++
		last = transportErr(calls)
		return "", last
	}

	logger, _ := newObserved()
	_, err := Do(ctx, NewPolicy(10, 50*time.Millisecond), testLabel, op,
		WithLogger(logger), WithRandom(func() float64 { return 0 }))

	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.ErrorIs(t, err, last)
	var transport *httperr.TransportError
	require.ErrorAs(t, err, &transport)
	assert.Contains(t, err.Error(), fmt.Sprintf("connection reset on attempt %d", calls))
}

func TestDo_DiagnosticsIncludeDecodedAssertion(t *testing.T) {
	t.Parallel()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"RS256","kid":"k1"}`))
	claims := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"repo:acme/widgets:ref:refs/heads/main","aud":"api://registry"}`))
	assertion := header + "." + claims + ".raw-signature-value"

	calls := 0
	logger, logs := newObserved()
	failure := statusErr(http.StatusForbidden, map[string]any{"detail": "denied", "token": "leaked-secret"})
	_, err := Do(context.Background(), fastPolicy(3), testLabel, scripted(&calls, failure),
		WithLogger(logger), WithAssertion(assertion))
	require.Error(t, err)

	entries := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, entries, 1)
	entry := entries[0]
	fields := entry.ContextMap()

	assert.Equal(t, "OIDC authentication attempt 1 failed", entry.Message)
	assert.Equal(t, testLabel, fields["operation"])
	assert.EqualValues(t, 1, fields["attempt"])
	assert.EqualValues(t, 3, fields["max_attempts"])
	assert.Equal(t, "terminal", fields["outcome"])
	assert.Equal(t, "client_error", fields["error_kind"])
	assert.EqualValues(t, http.StatusForbidden, fields["http_status"])
	assert.Equal(t, "Forbidden", fields["http_status_text"])
	assert.Equal(t, map[string]any{"alg": "RS256", "kid": "k1"}, fields["jwt_header"])
	assert.Equal(t, "repo:acme/widgets:ref:refs/heads/main", fields["jwt_claims"].(map[string]any)["sub"])
	assert.Contains(t, fields, "stack")

	body, ok := fields["http_body"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "denied", body["detail"])
	assert.Equal(t, "[REDACTED]", body["token"])

	rendered := fmt.Sprint(fields)
	assert.NotContains(t, rendered, "leaked-secret")
	assert.NotContains(t, rendered, "raw-signature-value")
}

func TestDo_DiagnosticsReportUndecodableAssertion(t *testing.T) {
	t.Parallel()

	calls := 0
	logger, logs := newObserved()
	_, err := Do(context.Background(), fastPolicy(1), testLabel, scripted(&calls, transportErr(1)),
		WithLogger(logger), WithAssertion("only.two"))
	require.Error(t, err)

	entries := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Contains(t, fields["jwt_error"], "malformed JWT")
	assert.NotContains(t, fields, "jwt_claims")
}

func TestDo_DiagnosticsRedactResponseBodies(t *testing.T) {
	t.Parallel()

	const assertion = "eyJhbGciOiJSUzI1NiJ9.eyJzdWIiOiJjaSJ9.c2ln"

	tests := []struct {
		name     string
		body     any
		wantKept string
	}{
		{
			name:     "nested object",
			body:     map[string]any{"data": map[string]any{"token": "key-secret", "slug": "ci-bot"}},
			wantKept: "ci-bot",
		},
		{
			name:     "list of objects",
			body:     map[string]any{"items": []any{map[string]any{"Token": "key-secret"}}},
			wantKept: "items",
		},
		{
			name:     "JSON sent as text",
			body:     `{"token":"key-secret","detail":"created"}`,
			wantKept: "created",
		},
		{
			name:     "form encoded text",
			body:     "status=ok&token=key-secret",
			wantKept: "status=ok",
		},
		{
			name:     "truncated JSON text",
			body:     `{"detail":"partial","token": "key-secret`,
			wantKept: "partial",
		},
		{
			name:     "echoed assertion",
			body:     "rejected " + assertion,
			wantKept: "rejected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			calls := 0
			logger, logs := newObserved()
			_, err := Do(context.Background(), fastPolicy(1), testLabel,
				scripted(&calls, statusErr(http.StatusBadRequest, tt.body)),
				WithLogger(logger), WithAssertion(assertion))
			require.Error(t, err)

			entries := logs.FilterLevelExact(zapcore.ErrorLevel).All()
			require.Len(t, entries, 1)
			rendered := fmt.Sprint(entries[0].ContextMap()["http_body"])
			assert.NotContains(t, rendered, "key-secret")
			assert.NotContains(t, rendered, assertion)
			assert.Contains(t, rendered, tt.wantKept)
		})
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Outcome
	}{
		{"nil", nil, OutcomeSuccess},
		{"plain error", errors.New("boom"), OutcomeRetryable},
		{"transport", transportErr(1), OutcomeRetryable},
		{"timeout", &httperr.TimeoutError{Limit: time.Second}, OutcomeRetryable},
		{"500", statusErr(500, nil), OutcomeRetryable},
		{"502 wrapped", fmt.Errorf("exchange: %w", statusErr(502, nil)), OutcomeRetryable},
		{"599", statusErr(599, nil), OutcomeRetryable},
		{"400", statusErr(400, nil), OutcomeTerminal},
		{"401", statusErr(401, nil), OutcomeTerminal},
		{"499", statusErr(499, nil), OutcomeTerminal},
		{"200 with caller error", httperr.WithResponse(errors.New("empty"), &httperr.Response{StatusCode: 200}), OutcomeTerminal},
		{"invalid request", fmt.Errorf("%w: x", httperr.ErrInvalidRequest), OutcomeTerminal},
		{"cancelled", context.Canceled, OutcomeTerminal},
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), OutcomeTerminal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestOutcome_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "success", OutcomeSuccess.String())
	assert.Equal(t, "retryable", OutcomeRetryable.String())
	assert.Equal(t, "terminal", OutcomeTerminal.String())
	assert.Equal(t, "Outcome(9)", Outcome(9).String())
}
