// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package config loads the action inputs.

The runner passes every input as an INPUT_<NAME> environment variable, with
the name upper-cased and hyphens preserved, for example INPUT_OIDC-NAMESPACE.
Load layers them over the defaults:

	oidc-auth-retry       3     attempts per network phase, clamped to [0, 10]
	oidc-validate         true  confirm the issued key with the "who am I" call
	oidc-audience         ""    audience requested for the identity token
	oidc-retry-delay      5s    base delay between attempts
	oidc-request-timeout  30s   deadline of each HTTP request

oidc-namespace and oidc-service-slug select OIDC mode. Without them, api-key
must be set and is exported as is.
*/
package config
