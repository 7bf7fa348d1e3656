package logging

import (
	"context"
	"log/slog"
	"os"
)

type loggerContextKey struct{}

// Used outside of requests, or if a request logger was never set
var fallbackLogger = slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("logger", "fallback"))

func FromContext(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerContextKey{}).(*slog.Logger)
	if !ok || logger == nil {
		return fallbackLogger
	}
	return logger
}

func AddToContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

// AddMetaToContext adds attrs to every line logged through ctx from now on
func AddMetaToContext(ctx context.Context, attrs ...slog.Attr) context.Context {
	if len(attrs) == 0 {
		return ctx
	}

	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}

	return AddToContext(ctx, FromContext(ctx).With(args...))
}

// AddSessionToContext tags the rest of the request's log lines with the stored session
func AddSessionToContext(ctx context.Context, sessionID string) context.Context {
	return AddMetaToContext(ctx, slog.String("sessionId", sessionID))
}
