package logging

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// https://docs.cloud.google.com/logging/docs/agent/logging/configuration#special-fields
const (
	cloudTraceKey        = "logging.googleapis.com/trace"
	cloudSpanIDKey       = "logging.googleapis.com/spanId"
	cloudTraceSampledKey = "logging.googleapis.com/trace_sampled"
)

// NewCloudTraceLogHandler wraps base so that log lines are linked to the active trace in Cloud Logging
//
// NOTE: Only the *Context slog methods carry the span
func NewCloudTraceLogHandler(base slog.Handler, project string) slog.Handler {
	return &cloudTraceHandler{Handler: base, project: project}
}

type cloudTraceHandler struct {
	slog.Handler
	project string
}

func cloudTraceAttrs(project string, sc trace.SpanContext) []slog.Attr {
	return []slog.Attr{
		slog.String(cloudTraceKey, fmt.Sprintf("projects/%s/traces/%s", project, sc.TraceID())),
		slog.String(cloudSpanIDKey, sc.SpanID().String()),
		slog.Bool(cloudTraceSampledKey, sc.IsSampled()),
	}
}

func (h *cloudTraceHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(cloudTraceAttrs(h.project, sc)...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *cloudTraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &cloudTraceHandler{Handler: h.Handler.WithAttrs(attrs), project: h.project}
}

func (h *cloudTraceHandler) WithGroup(name string) slog.Handler {
	return &cloudTraceHandler{Handler: h.Handler.WithGroup(name), project: h.project}
}
