package ports

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/puttlog/puttlog/internal/domain"
)

type catalogResponse struct {
	Success      bool                  `json:"success"`
	Achievements []achievementResponse `json:"achievements"`
}

// MakeListAchievementsHandler serves the achievement catalog.
// The catalog is immutable, so the response is encoded once.
func MakeListAchievementsHandler(
	catalog domain.AchievementCatalog,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) (http.HandlerFunc, error) {
	middleware := buildHandlerMiddleware(
		"list_achievements",
		allowedOrigins,
		rootLogger,
		sentryMiddleware,
		newIPRateLimiter(8, 480),
	)

	response, err := json.Marshal(catalogResponse{
		Success:      true,
		Achievements: definitionsToResponse(catalog.Definitions()),
	})
	if err != nil {
		return nil, err
	}

	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "public, max-age=300")
		w.WriteHeader(http.StatusOK)
		w.Write(response)
	}

	return middleware(handler), nil
}
