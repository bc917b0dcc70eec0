// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package retry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/stacklok/registry-oidc-auth/httperr"
	"github.com/stacklok/registry-oidc-auth/oauth"
)

// Operation is one attempt of a fallible call.
type Operation[T any] func(ctx context.Context) (T, error)

type config struct {
	logger    *zap.Logger
	assertion string
	random    func() float64
}

// Option configures a single Do call.
type Option func(*config)

// WithLogger sets the logger that receives per-attempt diagnostics.
// The default is the global zap logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithAssertion attaches the identity token in scope. Failed attempts log its
// decoded, unverified header and claims; the raw token is never logged.
func WithAssertion(token string) Option {
	return func(c *config) {
		c.assertion = token
	}
}

// WithRandom replaces the jitter source. fn must return values in [0, 1).
func WithRandom(fn func() float64) Option {
	return func(c *config) {
		c.random = fn
	}
}

// Do runs op until it succeeds, fails terminally, or policy.MaxAttempts
// attempts have been made. Attempts are strictly sequential.
//
// A policy with MaxAttempts <= 0 never calls op and returns ErrNoAttempts.
// Every failed attempt is logged; on any failure the last error is returned
// together with the zero value of T.
func Do[T any](ctx context.Context, policy Policy, label string, op Operation[T], opts ...Option) (T, error) {
	cfg := &config{random: rand.Float64}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.L()
	}

	var zero T
	if policy.MaxAttempts <= 0 {
		return zero, fmt.Errorf("%s: %w", label, ErrNoAttempts)
	}

	attempt := 0
	var lastErr error
	result, err := backoff.Retry(ctx,
		func() (T, error) {
			attempt++
			v, err := op(ctx)
			if err == nil {
				return v, nil
			}
			lastErr = err
			outcome := Classify(err)
			cfg.report(label, attempt, policy.MaxAttempts, outcome, err)
			if outcome == OutcomeTerminal {
				return v, backoff.Permanent(err)
			}
			return v, err
		},
		backoff.WithBackOff(&exponentialBackOff{policy: policy, random: cfg.random}),
		backoff.WithMaxTries(uint(policy.MaxAttempts)),
		// Attempts are bounded by MaxAttempts alone.
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(_ error, next time.Duration) {
			cfg.logger.Info(fmt.Sprintf("%s attempt %d failed, retrying in %s", label, attempt, next.Round(time.Millisecond)),
				zap.String("operation", label),
				zap.Int("attempt", attempt),
				zap.Duration("delay", next),
			)
		}),
	)
	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Err
		}
		// Cancellation while waiting between attempts surfaces the context
		// cause alongside the error of the attempt that preceded it.
		if lastErr != nil && !errors.Is(err, lastErr) {
			err = errors.Join(err, lastErr)
		}
		return zero, err
	}
	return result, nil
}

// report logs one structured diagnostic block for a failed attempt.
func (c *config) report(label string, attempt, maxAttempts int, outcome Outcome, err error) {
	fields := []zap.Field{
		zap.String("operation", label),
		zap.Int("attempt", attempt),
		zap.Int("max_attempts", maxAttempts),
		zap.Stringer("outcome", outcome),
		zap.String("error_kind", kindOf(err)),
		zap.Error(err),
	}

	if resp, ok := httperr.ResponseOf(err); ok {
		fields = append(fields,
			zap.Int("http_status", resp.StatusCode),
			zap.String("http_status_text", resp.StatusText),
			zap.Any("http_headers", resp.Header),
			zap.Any("http_body", c.redactBody(resp.Body)),
		)
	} else {
		fields = append(fields, zap.String("detail", "no response received from server"))
		var transportErr *httperr.TransportError
		var timeoutErr *httperr.TimeoutError
		switch {
		case errors.As(err, &timeoutErr):
			fields = append(fields, zap.String("request_method", timeoutErr.Method), zap.String("request_url", timeoutErr.URL))
		case errors.As(err, &transportErr):
			fields = append(fields, zap.String("request_method", transportErr.Method), zap.String("request_url", transportErr.URL))
		}
	}

	if c.assertion != "" {
		decoded, decodeErr := oauth.DecodeUnverified(c.assertion)
		if decodeErr != nil {
			fields = append(fields, zap.String("jwt_error", decodeErr.Error()))
		} else {
			fields = append(fields,
				zap.Any("jwt_header", decoded.Header),
				zap.Any("jwt_claims", decoded.Claims),
			)
		}
	}

	fields = append(fields, zap.Stack("stack"))
	c.logger.Error(fmt.Sprintf("%s attempt %d failed", label, attempt), fields...)
}

const redacted = "[REDACTED]"

// credentialText matches token assignments in bodies that are not JSON,
// e.g. `token=abc` or a truncated `{"token": "abc`.
var credentialText = regexp.MustCompile(`(?i)("?(?:oidc_)?token"?\s*[:=]\s*"?)[^"\s,&;}]+`)

// redactBody hides credential-bearing fields of a response body at any depth.
// Text bodies are parsed as JSON when possible and otherwise scrubbed of
// token assignments. The assertion in scope is removed wherever it appears.
func (c *config) redactBody(body any) any {
	switch v := body.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, field := range v {
			if isCredentialKey(k) {
				if s, isString := field.(string); isString && s == "" {
					out[k] = field
					continue
				}
				out[k] = redacted
				continue
			}
			out[k] = c.redactBody(field)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = c.redactBody(item)
		}
		return out
	case string:
		var decoded any
		if err := json.Unmarshal([]byte(v), &decoded); err == nil {
			if _, isObject := decoded.(map[string]any); isObject {
				return c.redactBody(decoded)
			}
		}
		return c.redactText(v)
	default:
		return body
	}
}

func (c *config) redactText(s string) string {
	if c.assertion != "" {
		s = strings.ReplaceAll(s, c.assertion, redacted)
	}
	return credentialText.ReplaceAllString(s, "${1}"+redacted)
}

func isCredentialKey(key string) bool {
	switch strings.ToLower(key) {
	case "token", "oidc_token":
		return true
	}
	return false
}
