// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oauth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// DecodedToken holds the header and claims of a compact JWT.
// Nothing in it has been verified.
type DecodedToken struct {
	Header map[string]any
	Claims map[string]any
}

var unverifiedParser = jwt.NewParser(jwt.WithPaddingAllowed())

// DecodeUnverified splits a compact JWT and decodes its header and claims for
// diagnostics. The signature is never checked, so the result must not be used
// for any trust decision.
//
// An error wrapping ErrMalformedToken is returned when the token does not have
// exactly three segments or when the header or claims are not base64url
// encoded JSON objects. Both padded and unpadded segments are accepted.
func DecodeUnverified(token string) (*DecodedToken, error) {
	claims := jwt.MapClaims{}
	parsed, _, err := unverifiedParser.ParseUnverified(token, claims)
	// ParseUnverified reports a missing or unknown alg after both segments
	// decoded; that only matters when verifying.
	if err != nil && !errors.Is(err, jwt.ErrTokenUnverifiable) {
		return nil, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	if parsed == nil {
		return nil, ErrMalformedToken
	}
	return &DecodedToken{Header: parsed.Header, Claims: claims}, nil
}
