// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package retry

import "errors"

// ErrNoAttempts is returned when a policy allows zero attempts.
var ErrNoAttempts = errors.New("no attempts allowed")
