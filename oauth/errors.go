// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oauth

import "errors"

var (
	// ErrMalformedToken indicates a compact JWT could not be split or decoded.
	ErrMalformedToken = errors.New("malformed JWT")

	// ErrEmptyCredential indicates the exchange endpoint answered without a usable token.
	ErrEmptyCredential = errors.New("exchange response did not contain a token")

	// ErrUnexpectedExchangeStatus indicates a 2xx exchange answer other than 200 or 201.
	ErrUnexpectedExchangeStatus = errors.New("unexpected exchange status")

	// ErrMissingSubject indicates the "who am I" response did not name the caller.
	ErrMissingSubject = errors.New("user response did not contain a name")
)
