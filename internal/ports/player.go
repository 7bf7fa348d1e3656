package ports

import (
	"log/slog"
	"net/http"

	"github.com/puttlog/puttlog/internal/app"
)

type playerStatsResponse struct {
	Success bool          `json:"success"`
	Stats   statsResponse `json:"stats"`
}

type playerAchievementsResponse struct {
	Success      bool                  `json:"success"`
	Achievements []achievementResponse `json:"achievements"`
}

func MakeGetPlayerStatsHandler(
	getPlayerStats app.GetPlayerStats,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildHandlerMiddleware(
		"get_player_stats",
		allowedOrigins,
		rootLogger,
		sentryMiddleware,
		newIPRateLimiter(8, 480),
		newPlayerIDRateLimiter(2, 120),
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx, playerID, ok := playerIDFromPath(w, r)
		if !ok {
			return
		}

		stats, err := getPlayerStats(ctx, playerID)
		if err != nil {
			writeAppErrorResponse(w, err)
			return
		}

		writeJSONResponse(ctx, w, http.StatusOK, playerStatsResponse{
			Success: true,
			Stats:   statsToResponse(stats),
		})
	}

	return middleware(handler)
}

func MakeGetPlayerAchievementsHandler(
	getPlayerAchievements app.GetPlayerAchievements,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildHandlerMiddleware(
		"get_player_achievements",
		allowedOrigins,
		rootLogger,
		sentryMiddleware,
		newIPRateLimiter(8, 480),
		newPlayerIDRateLimiter(2, 120),
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx, playerID, ok := playerIDFromPath(w, r)
		if !ok {
			return
		}

		achievements, err := getPlayerAchievements(ctx, playerID)
		if err != nil {
			writeAppErrorResponse(w, err)
			return
		}

		writeJSONResponse(ctx, w, http.StatusOK, playerAchievementsResponse{
			Success:      true,
			Achievements: unlockedToResponse(achievements),
		})
	}

	return middleware(handler)
}

func MakeCheckAchievementsHandler(
	checkAchievements app.CheckAchievements,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildHandlerMiddleware(
		"check_achievements",
		allowedOrigins,
		rootLogger,
		sentryMiddleware,
		newIPRateLimiter(4, 240),
		newPlayerIDRateLimiter(1, 30),
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx, playerID, ok := playerIDFromPath(w, r)
		if !ok {
			return
		}

		result, err := checkAchievements(ctx, playerID)
		if err != nil {
			writeAppErrorResponse(w, err)
			return
		}

		writeJSONResponse(ctx, w, http.StatusOK, achievementsResultToResponse(result))
	}

	return middleware(handler)
}
