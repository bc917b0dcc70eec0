// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oauth

const redacted = "[REDACTED]"

// Credential is a registry API key issued by the exchange endpoint.
// Formatting, text marshaling and structured logging all see a redacted
// placeholder; only Value returns the key itself.
type Credential string

// String returns the redacted placeholder.
func (Credential) String() string { return redacted }

// GoString returns the redacted placeholder for %#v.
func (Credential) GoString() string { return redacted }

// MarshalText implements encoding.TextMarshaler with the redacted placeholder.
func (Credential) MarshalText() ([]byte, error) { return []byte(redacted), nil }

// Value returns the raw API key.
func (c Credential) Value() string { return string(c) }

// IsZero reports whether no credential has been issued.
func (c Credential) IsZero() bool { return c == "" }
