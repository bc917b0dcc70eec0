// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package auth exchanges a CI platform's OIDC identity token for a registry API
key.

An Authenticator walks one run through the states

	Start -> AssertionAcquired -> Exchanged -> Validated

and ends in Failed when any step gives up. The identity token is requested
once and never retried. The exchange and the optional validation each run
under their own retry budget (see package retry), so 5xx answers and network
failures are retried while 4xx answers abort immediately.

The issued key is exported through the Exporter right after the exchange
succeeds. A later validation failure still fails the run, but the key stays
exported.

# Usage

	a := auth.New(tokens, exporter, auth.WithLogger(zap.L()))

	cfg := auth.DefaultConfig()
	cfg.Organization = "acme"
	cfg.ServiceAccountSlug = "ci-publisher"

	res, err := a.Authenticate(ctx, cfg)
	if err != nil {
		var phaseErr *auth.PhaseError
		if errors.As(err, &phaseErr) {
			// phaseErr.Phase is "OIDC authentication" or "Token validation"
		}
		return err
	}
	fmt.Println(res.Subject.Name)
*/
package auth
