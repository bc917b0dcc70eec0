// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrAssertion indicates the identity token could not be obtained from the CI platform.
	ErrAssertion = errors.New("failed to obtain identity token")

	// ErrExport indicates an issued credential could not be handed to later steps.
	ErrExport = errors.New("failed to export credential")

	// ErrInvalidConfig indicates the authentication parameters are incomplete.
	ErrInvalidConfig = errors.New("invalid authentication config")
)

// Phase names the part of the protocol a failure belongs to.
type Phase string

const (
	// PhaseOIDCAuthentication covers everything up to and including the credential export.
	PhaseOIDCAuthentication Phase = "OIDC authentication"

	// PhaseTokenValidation covers the "who am I" check of an exported credential.
	PhaseTokenValidation Phase = "Token validation"
)

// PhaseError is the single user-facing failure of an authentication run.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}
