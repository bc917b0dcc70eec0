// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package slug

import (
	"fmt"
	"regexp"
	"strings"
)

var validSlugRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Validate checks that value is usable as a registry slug. kind names the
// value in error messages, e.g. "organization".
func Validate(kind, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty or consist only of whitespace", kind)
	}

	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s cannot contain null bytes", kind)
	}

	if strings.TrimSpace(value) != value {
		return fmt.Errorf("%s cannot have leading or trailing whitespace: %q", kind, value)
	}

	if !validSlugRegex.MatchString(value) {
		return fmt.Errorf("%s can only contain letters, digits, dots, underscores and dashes, and must start with a letter or digit: %q", kind, value)
	}

	return nil
}
