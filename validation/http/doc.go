// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package http provides validation functions for outbound HTTP headers and API base URLs.

It keeps malformed or injected values out of requests before they reach the
transport, so a bad header fails fast instead of being retried.

# Header Validation

Validate HTTP header names and values per RFC 7230:

	if err := http.ValidateHeaders(map[string]string{"X-Api-Key": key}); err != nil {
		// Handle invalid header
	}

The validators check for:
  - CRLF injection attempts (\r\n sequences)
  - Control characters
  - RFC 7230 token compliance for header names
  - Length limits (256 bytes for names, 8192 for values)

# Base URL Validation

	if err := http.ValidateBaseURL("https://api.cloudsmith.io"); err != nil {
		// Handle invalid URL
	}
*/
package http
