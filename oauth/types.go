// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oauth

import (
	"fmt"
	"net/url"
	"strings"
)

// ExchangeRequest is the body posted to the OIDC exchange endpoint.
// Organization selects the endpoint path and is not serialized.
type ExchangeRequest struct {
	Organization string `json:"-"`
	OIDCToken    string `json:"oidc_token"`
	ServiceSlug  string `json:"service_slug"`
}

// Path returns the exchange endpoint path for the request's organization.
func (r *ExchangeRequest) Path() string {
	return fmt.Sprintf(ExchangePathFormat, url.PathEscape(r.Organization))
}

// Subject identifies the principal an API key authenticates as, as returned
// by the "who am I" endpoint. Only Name is required.
type Subject struct {
	Name  string `json:"name"`
	Slug  string `json:"slug,omitempty"`
	Email string `json:"email,omitempty"`
}

// CredentialFromBody extracts the API key from a decoded exchange response.
// The token field must be present, a string and not blank.
func CredentialFromBody(body any) (Credential, error) {
	fields, ok := body.(map[string]any)
	if !ok {
		return "", ErrEmptyCredential
	}
	token, ok := fields["token"].(string)
	if !ok || strings.TrimSpace(token) == "" {
		return "", ErrEmptyCredential
	}
	return Credential(token), nil
}

// SubjectFromBody extracts the caller identity from a decoded "who am I" response.
func SubjectFromBody(body any) (*Subject, error) {
	fields, ok := body.(map[string]any)
	if !ok {
		return nil, ErrMissingSubject
	}
	name, ok := fields["name"].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return nil, ErrMissingSubject
	}
	subject := &Subject{Name: name}
	subject.Slug, _ = fields["slug"].(string)
	subject.Email, _ = fields["email"].(string)
	return subject, nil
}
