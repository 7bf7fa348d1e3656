package ports

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/puttlog/puttlog/internal/app"
	"github.com/puttlog/puttlog/internal/logging"
	"github.com/puttlog/puttlog/internal/reporting"
)

type logSessionRequest struct {
	DistanceFeet      *float64 `json:"distanceFeet" validate:"required"`
	Attempts          *int     `json:"attempts" validate:"required"`
	Makes             *int     `json:"makes" validate:"required"`
	LongestMakeStreak *int     `json:"longestMakeStreak"`
	// Defaults to the time the request is handled
	LoggedAt *time.Time `json:"loggedAt"`
}

type logSessionResponse struct {
	Success  bool                  `json:"success"`
	Session  sessionResponse       `json:"session"`
	Stats    statsResponse         `json:"stats"`
	Unlocked []achievementResponse `json:"unlocked"`
}

func MakeLogSessionHandler(
	logSession app.LogSession,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildHandlerMiddleware(
		"log_session",
		allowedOrigins,
		rootLogger,
		sentryMiddleware,
		newIPRateLimiter(4, 240),
		newPlayerIDRateLimiter(1, 60),
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx, playerID, ok := playerIDFromPath(w, r)
		if !ok {
			return
		}

		var request logSessionRequest
		if err := decodeRequestBody(w, r, &request); err != nil {
			logging.FromContext(ctx).InfoContext(ctx, "Invalid request body", "error", err)
			writeErrorResponse(w, "invalid request body", http.StatusBadRequest)
			return
		}

		session := sessionRequest{
			DistanceFeet:      request.DistanceFeet,
			Attempts:          request.Attempts,
			Makes:             request.Makes,
			LongestMakeStreak: request.LongestMakeStreak,
		}.toDomain()

		var loggedAt time.Time
		if request.LoggedAt != nil {
			loggedAt = *request.LoggedAt
		}

		result, err := logSession(ctx, playerID, session, loggedAt)
		if err != nil {
			writeAppErrorResponse(w, err)
			return
		}

		ctx = reporting.AddExtrasToContext(ctx, map[string]string{"sessionId": result.Session.ID})
		ctx = logging.AddSessionToContext(ctx, result.Session.ID)
		logging.FromContext(ctx).InfoContext(ctx, "Logged session", "unlocked", len(result.Unlocked))

		writeJSONResponse(ctx, w, http.StatusCreated, logSessionResponse{
			Success:  true,
			Session:  sessionToResponse(result.Session),
			Stats:    statsToResponse(result.Stats),
			Unlocked: definitionsToResponse(result.Unlocked),
		})
	}

	return middleware(handler)
}

