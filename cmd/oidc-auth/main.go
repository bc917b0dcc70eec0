// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Command oidc-auth authenticates a GitHub Actions job against the package
// registry and exports the resulting API key to later steps.
//
// All inputs come from INPUT_* environment variables set by the runner.
package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/stacklok/registry-oidc-auth/actions"
	"github.com/stacklok/registry-oidc-auth/auth"
	"github.com/stacklok/registry-oidc-auth/config"
	"github.com/stacklok/registry-oidc-auth/env"
	"github.com/stacklok/registry-oidc-auth/httpclient"
	"github.com/stacklok/registry-oidc-auth/logger"
	"github.com/stacklok/registry-oidc-auth/oauth"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Stdout, &env.OSReader{}, &env.OSWriter{})
	stop()
	os.Exit(code)
}

// run executes the action and returns the process exit code.
func run(ctx context.Context, stdout io.Writer, reader env.Reader, writer env.Writer) int {
	log := logger.InitializeWithOptions(reader, logger.NewRunnerDebugProvider(reader))
	defer func() { _ = log.Sync() }()

	if err := execute(ctx, stdout, reader, writer, log); err != nil {
		message := err.Error()
		var phaseErr *auth.PhaseError
		if !errors.As(err, &phaseErr) {
			message = "Action failed: " + message
		}
		actions.Fail(stdout, message)
		return 1
	}
	return 0
}

func execute(ctx context.Context, stdout io.Writer, reader env.Reader, writer env.Writer, log *zap.Logger) error {
	cfg, err := config.Load(config.WithEnviron(reader.Environ))
	if err != nil {
		return err
	}

	exporter := actions.NewExporter(stdout, reader, writer, log)

	if cfg.Mode() == config.ModeAPIKey {
		if err := exporter.ExportCredential(oauth.Credential(cfg.APIKey)); err != nil {
			return err
		}
		logger.Info("Using provided API key for authentication.")
		return nil
	}

	ctx, finish := startTracing(ctx, log)
	defer finish()

	authCfg := cfg.Auth()
	client := httpclient.New(ctx,
		httpclient.WithUserAgent("registry-oidc-auth/"+version),
		httpclient.WithTimeout(authCfg.RequestTimeout),
	)
	authenticator := auth.New(
		actions.NewIDTokenSource(reader, client),
		exporter,
		auth.WithLogger(log),
		auth.WithClient(client),
	)

	res, err := authenticator.Authenticate(ctx, authCfg)
	if err != nil {
		return err
	}
	logger.Debugf("authentication finished in state %s", res.State)
	return nil
}
