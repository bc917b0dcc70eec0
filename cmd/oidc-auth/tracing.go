// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/stacklok/registry-oidc-auth"

// spanLogger exports finished spans as debug log lines.
type spanLogger struct {
	log *zap.Logger
}

func (s spanLogger) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		s.log.Debug("span finished",
			zap.String("span", span.Name()),
			zap.Stringer("kind", span.SpanKind()),
			zap.Duration("duration", span.EndTime().Sub(span.StartTime())),
			zap.String("status", span.Status().Code.String()),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
		)
	}
	return nil
}

func (spanLogger) Shutdown(context.Context) error {
	return nil
}

// startTracing opens the root span of a run when debug logging is enabled,
// so each registry request gets its own child span in the debug log. With
// debug off it returns ctx unchanged and a no-op finish.
func startTracing(ctx context.Context, log *zap.Logger) (context.Context, func()) {
	if !log.Core().Enabled(zap.DebugLevel) {
		return ctx, func() {}
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(spanLogger{log: log}))
	ctx, span := tp.Tracer(tracerName).Start(ctx, "oidc-auth", trace.WithSpanKind(trace.SpanKindInternal))
	return ctx, func() {
		span.End()
		_ = tp.Shutdown(context.WithoutCancel(ctx))
	}
}
