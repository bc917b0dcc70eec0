// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package oauth provides the wire types, constants and token helpers for the
// registry's OIDC exchange: a CI identity token is posted to the exchange
// endpoint and traded for a long-lived API key.
//
// # Exchange
//
//	req := oauth.ExchangeRequest{
//		Organization: "acme",
//		OIDCToken:    idToken,
//		ServiceSlug:  "ci-publisher",
//	}
//	// POST https://api.cloudsmith.io + req.Path() with req as JSON
//	cred, err := oauth.CredentialFromBody(resp.Body)
//
// # Credentials
//
// Credential redacts itself in fmt output, JSON and zap fields. Call Value
// only where the raw key must leave the process:
//
//	fmt.Println(cred)          // [REDACTED]
//	header.Set(oauth.HeaderAPIKey, cred.Value())
//
// # Inspecting Identity Tokens
//
// DecodeUnverified decodes a compact JWT for diagnostics without verifying it:
//
//	decoded, err := oauth.DecodeUnverified(idToken)
//	if err == nil {
//		log.Printf("sub=%v aud=%v", decoded.Claims["sub"], decoded.Claims["aud"])
//	}
package oauth
