package ports

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/puttlog/puttlog/internal/app"
)

const defaultLeaderboardLimit = 10

type leaderboardResponse struct {
	Success bool                       `json:"success"`
	Entries []leaderboardEntryResponse `json:"entries"`
}

func MakeGetLeaderboardHandler(
	getLeaderboard app.GetLeaderboard,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildHandlerMiddleware(
		"get_leaderboard",
		allowedOrigins,
		rootLogger,
		sentryMiddleware,
		newIPRateLimiter(8, 480),
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit := defaultLeaderboardLimit
		if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
			parsed, err := strconv.Atoi(rawLimit)
			if err != nil || parsed < 1 || parsed > app.MAX_LEADERBOARD_LIMIT {
				writeErrorResponse(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		entries, err := getLeaderboard(ctx, limit)
		if err != nil {
			writeAppErrorResponse(w, err)
			return
		}

		writeJSONResponse(ctx, w, http.StatusOK, leaderboardResponse{
			Success: true,
			Entries: leaderboardToResponse(entries),
		})
	}

	return middleware(handler)
}
