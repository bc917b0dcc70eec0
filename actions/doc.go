// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package actions talks to the GitHub Actions runner: it requests OIDC
// identity tokens, publishes values to later steps through the GITHUB_ENV and
// GITHUB_OUTPUT file commands, and writes workflow commands such as
// ::add-mask:: and ::error::.
package actions
