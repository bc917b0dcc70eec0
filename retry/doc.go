// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package retry runs fallible operations under a bounded, exponential backoff
policy and logs a diagnostic block for every failed attempt.

# Basic Usage

	policy := retry.NewPolicy(retry.ClampAttempts(attempts), 5*time.Second)
	resp, err := retry.Do(ctx, policy, "OIDC authentication",
		func(ctx context.Context) (*httperr.Response, error) {
			return client.Do(ctx, req)
		},
		retry.WithLogger(logger),
		retry.WithAssertion(idToken),
	)

# Classification

Classify decides whether a failed attempt is repeated:

  - no HTTP response (transport failure, timeout): retryable
  - HTTP 5xx: retryable
  - any other carried response, including 4xx: terminal
  - httperr.ErrInvalidRequest, cancelled or expired context: terminal

A terminal failure stops the loop at once without using the remaining
attempts.

# Backoff

The delay before attempt n+1 (n from 0) is BaseDelay*2^n plus a uniform
random addend in [0, BaseDelay/10). No delay follows the final attempt or a
success. The loop is driven by github.com/cenkalti/backoff/v5.
*/
package retry
