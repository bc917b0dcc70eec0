// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package httperr provides error types that carry HTTP exchange context.

Every failure of an outbound HTTP call falls into one of three shapes:

  - TransportError: the request was sent (or attempted) but no response
    arrived, e.g. connection refused or TLS failure.
  - TimeoutError: the request was cancelled because its deadline expired.
  - ResponseError: a response arrived but the caller cannot use it. The
    error keeps the normalized Response (status, headers, body) so it can be
    logged and classified without re-fetching.

# Basic Usage

Attach a response to any error:

	err := httperr.WithResponse(ErrEmptyCredential, resp)

Build the error for a non-2xx answer:

	err := httperr.NewStatusError(resp)
	errors.Is(err, httperr.ErrUnexpectedStatus) // true

# Extracting Status Codes

	code := httperr.Code(err)
	// Returns the status code if err carries a response
	// Returns 0 if the error carries no response
	// Returns http.StatusOK (200) if err is nil

	if resp, ok := httperr.ResponseOf(err); ok {
		log.Printf("HTTP %d %s: %v", resp.StatusCode, resp.StatusText, resp.Body)
	}
*/
package httperr
