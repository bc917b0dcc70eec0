// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package http provides validation functions for outbound HTTP headers and API base URLs.
package http

import (
	"fmt"
	"net/url"
	"sort"

	"golang.org/x/net/http/httpguts"
)

const (
	maxHeaderNameLength  = 256
	maxHeaderValueLength = 8192
)

// ValidateHeaderName validates that a string is a valid HTTP header name per RFC 7230.
// It checks for CRLF injection, control characters, and ensures RFC token compliance.
func ValidateHeaderName(name string) error {
	if name == "" {
		return fmt.Errorf("header name cannot be empty")
	}

	if len(name) > maxHeaderNameLength {
		return fmt.Errorf("header name exceeds maximum length of %d bytes", maxHeaderNameLength)
	}

	// Same check Go's HTTP/2 implementation applies
	if !httpguts.ValidHeaderFieldName(name) {
		return fmt.Errorf("invalid HTTP header name %q: contains invalid characters", name)
	}

	return nil
}

// ValidateHeaderValue validates that a string is a valid HTTP header value per RFC 7230.
// It checks for CRLF injection and control characters. Values are never echoed in
// errors because headers routinely carry credentials.
func ValidateHeaderValue(value string) error {
	if value == "" {
		return fmt.Errorf("header value cannot be empty")
	}

	if len(value) > maxHeaderValueLength {
		return fmt.Errorf("header value exceeds maximum length of %d bytes", maxHeaderValueLength)
	}

	if !httpguts.ValidHeaderFieldValue(value) {
		return fmt.Errorf("invalid HTTP header value: contains control characters")
	}

	return nil
}

// ValidateHeaders validates every name and value in headers.
// Names are checked in sorted order so the reported error is deterministic.
func ValidateHeaders(headers map[string]string) error {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := ValidateHeaderName(name); err != nil {
			return err
		}
		if err := ValidateHeaderValue(headers[name]); err != nil {
			return fmt.Errorf("header %s: %w", name, err)
		}
	}
	return nil
}

// ValidateBaseURL validates that a URL can serve as the root of an API.
//
// A valid base URL must:
//   - Use the http or https scheme
//   - Include a host
//   - Not contain a query string, fragment or user info
func ValidateBaseURL(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("base URL must use http or https: %s", baseURL)
	}

	if parsed.Host == "" {
		return fmt.Errorf("base URL must include a host: %s", baseURL)
	}

	if parsed.User != nil {
		return fmt.Errorf("base URL must not contain user info")
	}

	if parsed.RawQuery != "" || parsed.ForceQuery {
		return fmt.Errorf("base URL must not contain a query (?): %s", baseURL)
	}

	if parsed.Fragment != "" {
		return fmt.Errorf("base URL must not contain fragments (#): %s", baseURL)
	}

	return nil
}
