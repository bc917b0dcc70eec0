// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package actions

import (
	"fmt"
	"io"
	"strings"
)

var dataEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")

// issueCommand writes a workflow command such as "::error::message".
func issueCommand(w io.Writer, name, message string) {
	_, _ = fmt.Fprintf(w, "::%s::%s\n", name, dataEscaper.Replace(message))
}

// Fail reports message as an error annotation. The caller is expected to exit
// non-zero afterwards.
func Fail(w io.Writer, message string) {
	issueCommand(w, "error", message)
}

// Notice reports message as a notice annotation.
func Notice(w io.Writer, message string) {
	issueCommand(w, "notice", message)
}

// Mask registers secret with the runner so it is replaced by *** in logs.
func Mask(w io.Writer, secret string) {
	if secret == "" {
		return
	}
	issueCommand(w, "add-mask", secret)
}
