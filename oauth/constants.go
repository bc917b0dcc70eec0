// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oauth

// Registry API defaults.
const (
	// DefaultAPIHost is the registry API host used when no override is configured.
	DefaultAPIHost = "api.cloudsmith.io"

	// ExchangePathFormat is the OIDC exchange endpoint path. The organization
	// slug is substituted for the verb.
	ExchangePathFormat = "/openid/%s/"

	// UserSelfPath is the "who am I" endpoint used to validate an issued key.
	UserSelfPath = "/v1/user/self/"
)

// Header names used on the registry wire protocol.
const (
	// HeaderAPIKey carries the registry API key on authenticated requests.
	HeaderAPIKey = "X-Api-Key"

	// HeaderAccept is the standard content negotiation header.
	HeaderAccept = "Accept"

	// MediaTypeJSON is the JSON media type.
	MediaTypeJSON = "application/json"
)

// Names under which an issued credential is exposed to later CI steps.
const (
	// CredentialEnvVar is the environment variable holding the API key.
	CredentialEnvVar = "CLOUDSMITH_API_KEY"

	// CredentialOutput is the step output holding the API key.
	CredentialOutput = "oidc-token"
)
