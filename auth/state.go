// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package auth

import "fmt"

// State is a step of the authentication protocol.
type State int

const (
	// StateStart is the initial state.
	StateStart State = iota
	// StateAssertionAcquired means an identity token is in hand.
	StateAssertionAcquired
	// StateExchanged means a credential was issued and exported.
	StateExchanged
	// StateValidated means the credential was confirmed by the registry.
	StateValidated
	// StateFailed is reachable from every state before Validated.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateAssertionAcquired:
		return "assertion_acquired"
	case StateExchanged:
		return "exchanged"
	case StateValidated:
		return "validated"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (s *session) fail(phase Phase, err error) error {
	s.state = StateFailed
	return &PhaseError{Phase: phase, Err: err}
}
