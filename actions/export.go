// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package actions

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stacklok/registry-oidc-auth/env"
	"github.com/stacklok/registry-oidc-auth/oauth"
)

// Runner variables naming the file command targets.
const (
	GitHubEnvFileEnv    = "GITHUB_ENV"
	GitHubOutputFileEnv = "GITHUB_OUTPUT"
)

// Exporter publishes values to later steps of a GitHub Actions job.
type Exporter struct {
	out          io.Writer
	reader       env.Reader
	writer       env.Writer
	logger       *zap.Logger
	newDelimiter func() string
}

// NewExporter returns an Exporter that writes workflow commands to out and
// file commands to the files named by GITHUB_ENV and GITHUB_OUTPUT.
func NewExporter(out io.Writer, reader env.Reader, writer env.Writer, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.L()
	}
	return &Exporter{
		out:    out,
		reader: reader,
		writer: writer,
		logger: logger,
		newDelimiter: func() string {
			return "ghadelimiter_" + uuid.NewString()
		},
	}
}

// ExportCredential masks credential, exports it as CLOUDSMITH_API_KEY and
// sets it as the oidc-token step output.
func (e *Exporter) ExportCredential(credential oauth.Credential) error {
	if credential.IsZero() {
		return oauth.ErrEmptyCredential
	}
	value := credential.Value()
	Mask(e.out, value)

	if err := e.ExportVariable(oauth.CredentialEnvVar, value); err != nil {
		return err
	}
	return e.SetOutput(oauth.CredentialOutput, value)
}

// ExportVariable sets name for this process and, when GITHUB_ENV is set,
// for all later steps.
func (e *Exporter) ExportVariable(name, value string) error {
	if err := e.writer.Setenv(name, value); err != nil {
		return fmt.Errorf("setting %s: %w", name, err)
	}
	return e.appendFileCommand(GitHubEnvFileEnv, name, value)
}

// SetOutput sets a step output when GITHUB_OUTPUT is set.
func (e *Exporter) SetOutput(name, value string) error {
	return e.appendFileCommand(GitHubOutputFileEnv, name, value)
}

func (e *Exporter) appendFileCommand(fileEnv, name, value string) error {
	path := e.reader.Getenv(fileEnv)
	if path == "" {
		e.logger.Debug("file command target not set, skipping", zap.String("variable", fileEnv), zap.String("name", name))
		return nil
	}

	message, err := e.keyValueMessage(name, value)
	if err != nil {
		return err
	}

	// #nosec G304 -- path is provided by the runner
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("opening %s: %w", fileEnv, err)
	}
	if _, err := io.WriteString(f, message); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", fileEnv, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", fileEnv, err)
	}
	return nil
}

// keyValueMessage renders name and value in the heredoc file command format.
func (e *Exporter) keyValueMessage(name, value string) (string, error) {
	delimiter := e.newDelimiter()
	if strings.Contains(name, delimiter) || strings.Contains(value, delimiter) {
		return "", fmt.Errorf("%w: %s", ErrDelimiterCollision, name)
	}
	return fmt.Sprintf("%s<<%s\n%s\n%s\n", name, delimiter, value, delimiter), nil
}
