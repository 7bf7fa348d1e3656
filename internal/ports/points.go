package ports

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/puttlog/puttlog/internal/app"
	"github.com/puttlog/puttlog/internal/domain"
	"github.com/puttlog/puttlog/internal/logging"
)

type sessionRequest struct {
	DistanceFeet      *float64 `json:"distanceFeet" validate:"required"`
	Attempts          *int     `json:"attempts" validate:"required"`
	Makes             *int     `json:"makes" validate:"required"`
	LongestMakeStreak *int     `json:"longestMakeStreak"`
}

func (r sessionRequest) toDomain() domain.PracticeSession {
	return domain.PracticeSession{
		DistanceFeet:      *r.DistanceFeet,
		Attempts:          *r.Attempts,
		Makes:             *r.Makes,
		LongestMakeStreak: r.LongestMakeStreak,
	}
}

type pointsResponse struct {
	Success       bool        `json:"success"`
	Points        json.Number `json:"points"`
	DisplayPoints int64       `json:"displayPoints"`
}

func MakeComputePointsHandler(
	computePoints app.ComputePoints,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildHandlerMiddleware(
		"compute_points",
		allowedOrigins,
		rootLogger,
		sentryMiddleware,
		newIPRateLimiter(8, 480),
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var request sessionRequest
		if err := decodeRequestBody(w, r, &request); err != nil {
			logging.FromContext(ctx).InfoContext(ctx, "Invalid request body", "error", err)
			writeErrorResponse(w, "invalid request body", http.StatusBadRequest)
			return
		}

		points, err := computePoints(request.toDomain())
		if err != nil {
			writeAppErrorResponse(w, err)
			return
		}

		writeJSONResponse(ctx, w, http.StatusOK, pointsResponse{
			Success:       true,
			Points:        pointsToJSON(points),
			DisplayPoints: domain.DisplayPoints(points),
		})
	}

	return middleware(handler)
}
