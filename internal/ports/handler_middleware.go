package ports

import (
	"log/slog"
	"net/http"

	"github.com/puttlog/puttlog/internal/logging"
	"github.com/puttlog/puttlog/internal/ratelimiting"
	"github.com/puttlog/puttlog/internal/reporting"
)

func newIPRateLimiter(refillPerSecond float64, burstSize int) ratelimiting.RequestRateLimiter {
	limiter, _ := ratelimiting.NewTokenBucketRateLimiter(
		ratelimiting.RefillPerSecond(refillPerSecond),
		ratelimiting.BurstSize(burstSize),
	)
	return ratelimiting.NewRequestBasedRateLimiter(limiter, ratelimiting.IPKeyFunc)
}

func newPlayerIDRateLimiter(refillPerSecond float64, burstSize int) ratelimiting.RequestRateLimiter {
	limiter, _ := ratelimiting.NewTokenBucketRateLimiter(
		ratelimiting.RefillPerSecond(refillPerSecond),
		ratelimiting.BurstSize(burstSize),
	)
	return ratelimiting.NewRequestBasedRateLimiter(
		// NOTE: Rate limiting based on user controlled value
		limiter,
		ratelimiting.PlayerIDKeyFunc,
	)
}

func onLimitExceeded(w http.ResponseWriter, r *http.Request) {
	writeErrorResponse(w, "rate limit exceeded", http.StatusTooManyRequests)
}

// The middleware chain shared by all handlers. Rate limiters are applied in order.
func buildHandlerMiddleware(
	port string,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
	rateLimiters ...ratelimiting.RequestRateLimiter,
) func(http.HandlerFunc) http.HandlerFunc {
	middlewares := []func(http.HandlerFunc) http.HandlerFunc{
		buildMetricsMiddleware(port),
		logging.NewRequestLoggerMiddleware(rootLogger),
		sentryMiddleware,
		reporting.NewAddMetaMiddleware(port),
		BuildCORSMiddleware(allowedOrigins),
	}
	for _, rateLimiter := range rateLimiters {
		middlewares = append(middlewares, NewRateLimitMiddleware(rateLimiter, onLimitExceeded))
	}

	return ComposeMiddlewares(middlewares...)
}
