// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package actions

import "errors"

var (
	// ErrIDTokenUnavailable indicates the runner did not expose the OIDC token
	// request variables, usually because the workflow lacks the
	// "id-token: write" permission.
	ErrIDTokenUnavailable = errors.New(
		"OIDC token request variables are not set; add `permissions: id-token: write` to the workflow")

	// ErrInvalidIDTokenResponse indicates the token endpoint answered without a token value.
	ErrInvalidIDTokenResponse = errors.New("identity token response did not contain a value")

	// ErrDelimiterCollision indicates a file command value contains its own heredoc delimiter.
	ErrDelimiterCollision = errors.New("value contains the file command delimiter")
)
