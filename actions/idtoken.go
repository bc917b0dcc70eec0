// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package actions

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/stacklok/registry-oidc-auth/env"
	"github.com/stacklok/registry-oidc-auth/httpclient"
)

// Runner variables that expose the OIDC token endpoint to a job.
const (
	IDTokenRequestURLEnv   = "ACTIONS_ID_TOKEN_REQUEST_URL"
	IDTokenRequestTokenEnv = "ACTIONS_ID_TOKEN_REQUEST_TOKEN"
)

// IDTokenSource requests OIDC identity tokens from the GitHub Actions runner.
type IDTokenSource struct {
	env    env.Reader
	client *httpclient.Client
}

// NewIDTokenSource returns an IDTokenSource reading the runner variables
// from envReader and calling the token endpoint through client.
func NewIDTokenSource(envReader env.Reader, client *httpclient.Client) *IDTokenSource {
	return &IDTokenSource{env: envReader, client: client}
}

// IDToken returns a signed identity token for audience. An empty audience
// leaves the choice to the token endpoint.
func (s *IDTokenSource) IDToken(ctx context.Context, audience string) (string, error) {
	requestURL := s.env.Getenv(IDTokenRequestURLEnv)
	requestToken := s.env.Getenv(IDTokenRequestTokenEnv)
	if requestURL == "" || requestToken == "" {
		return "", ErrIDTokenUnavailable
	}

	u, err := url.Parse(requestURL)
	if err != nil {
		return "", fmt.Errorf("invalid %s: %w", IDTokenRequestURLEnv, err)
	}
	if audience != "" {
		q := u.Query()
		q.Set("audience", audience)
		u.RawQuery = q.Encode()
	}

	resp, err := s.client.Do(ctx, &httpclient.Request{
		Method: http.MethodGet,
		URL:    u.String(),
		Header: map[string]string{
			"Authorization": "Bearer " + requestToken,
			"Accept":        "application/json",
		},
	})
	if err != nil {
		return "", fmt.Errorf("requesting identity token: %w", err)
	}

	fields, _ := resp.Body.(map[string]any)
	value, _ := fields["value"].(string)
	if strings.TrimSpace(value) == "" {
		return "", ErrInvalidIDTokenResponse
	}
	return value, nil
}
