// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package slug validates registry slugs such as organization and service
account identifiers.

Slugs end up in request paths and bodies, so they are checked before any
request is made:

	if err := slug.Validate("organization", "acme-corp"); err != nil {
		// Handle invalid slug
	}

Valid slugs must:
  - Be non-empty (not just whitespace)
  - Start with a letter or digit
  - Contain only letters, digits, dots, underscores and dashes

# Examples

Valid slugs:

	"acme"
	"acme-corp"
	"ci_publisher.v2"

Invalid slugs:

	""              // empty
	" acme"         // leading space
	"acme/corp"     // path separator
	"-acme"         // leading dash
*/
package slug
