package ports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/puttlog/puttlog/internal/app"
	"github.com/puttlog/puttlog/internal/domain"
	"github.com/puttlog/puttlog/internal/reporting"
	"github.com/puttlog/puttlog/internal/strutils"
	"github.com/shopspring/decimal"
)

const maxRequestBodyBytes = 16 * 1024

var validate = validator.New(validator.WithRequiredStructEnabled())

type errorResponse struct {
	Success bool   `json:"success"`
	Cause   string `json:"cause"`
}

type sessionResponse struct {
	ID                string      `json:"id"`
	DistanceFeet      float64     `json:"distanceFeet"`
	Attempts          int         `json:"attempts"`
	Makes             int         `json:"makes"`
	LongestMakeStreak int         `json:"longestMakeStreak"`
	Points            json.Number `json:"points"`
	DisplayPoints     int64       `json:"displayPoints"`
	LoggedAt          time.Time   `json:"loggedAt"`
}

type statsResponse struct {
	PlayerID           string      `json:"playerId"`
	TotalPoints        json.Number `json:"totalPoints"`
	DisplayTotalPoints int64       `json:"displayTotalPoints"`
	SessionsLogged     int         `json:"sessionsLogged"`
	CurrentStreakDays  int         `json:"currentStreakDays"`
	LongestStreakDays  int         `json:"longestStreakDays"`
	// YYYY-MM-DD, null before the first session
	LastSessionDay      *string `json:"lastSessionDay"`
	LongestMakeStreak   int     `json:"longestMakeStreak"`
	FriendCount         int     `json:"friendCount"`
	BestLeaderboardRank *int    `json:"bestLeaderboardRank"`
	ChallengesCompleted int     `json:"challengesCompleted"`
}

type achievementResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Requirement float64    `json:"requirement"`
	UnlockedAt  *time.Time `json:"unlockedAt,omitempty"`
}

type leaderboardEntryResponse struct {
	Rank               int         `json:"rank"`
	PlayerID           string      `json:"playerId"`
	TotalPoints        json.Number `json:"totalPoints"`
	DisplayTotalPoints int64       `json:"displayTotalPoints"`
	SessionsLogged     int         `json:"sessionsLogged"`
}

type achievementsResultResponse struct {
	Success  bool                  `json:"success"`
	Stats    statsResponse         `json:"stats"`
	Unlocked []achievementResponse `json:"unlocked"`
}

// Exact points as an unquoted JSON number
func pointsToJSON(points decimal.Decimal) json.Number {
	return json.Number(points.String())
}

func sessionToResponse(session domain.ScoredSession) sessionResponse {
	return sessionResponse{
		ID:                session.ID,
		DistanceFeet:      session.Session.DistanceFeet,
		Attempts:          session.Session.Attempts,
		Makes:             session.Session.Makes,
		LongestMakeStreak: session.Session.MakeStreak(),
		Points:            pointsToJSON(session.Points),
		DisplayPoints:     domain.DisplayPoints(session.Points),
		LoggedAt:          session.LoggedAt.UTC(),
	}
}

func statsToResponse(stats domain.PlayerStats) statsResponse {
	var lastSessionDay *string
	if !stats.LastSessionDay.IsZero() {
		day := stats.LastSessionDay.UTC().Format(time.DateOnly)
		lastSessionDay = &day
	}

	var bestLeaderboardRank *int
	if stats.BestLeaderboardRank > 0 {
		rank := stats.BestLeaderboardRank
		bestLeaderboardRank = &rank
	}

	return statsResponse{
		PlayerID:            stats.PlayerID,
		TotalPoints:         pointsToJSON(stats.TotalPoints),
		DisplayTotalPoints:  domain.DisplayPoints(stats.TotalPoints),
		SessionsLogged:      stats.SessionsLogged,
		CurrentStreakDays:   stats.CurrentStreakDays,
		LongestStreakDays:   stats.LongestStreakDays,
		LastSessionDay:      lastSessionDay,
		LongestMakeStreak:   stats.LongestMakeStreak,
		FriendCount:         stats.FriendCount,
		BestLeaderboardRank: bestLeaderboardRank,
		ChallengesCompleted: stats.ChallengesCompleted,
	}
}

func definitionToResponse(definition domain.AchievementDefinition) achievementResponse {
	return achievementResponse{
		ID:          definition.ID,
		Name:        definition.Name,
		Description: definition.Description,
		Icon:        definition.Icon,
		Requirement: definition.Requirement,
	}
}

func definitionsToResponse(definitions []domain.AchievementDefinition) []achievementResponse {
	responses := make([]achievementResponse, 0, len(definitions))
	for _, definition := range definitions {
		responses = append(responses, definitionToResponse(definition))
	}
	return responses
}

func unlockedToResponse(achievements []app.UnlockedAchievement) []achievementResponse {
	responses := make([]achievementResponse, 0, len(achievements))
	for _, achievement := range achievements {
		response := definitionToResponse(achievement.Definition)
		unlockedAt := achievement.UnlockedAt.UTC()
		response.UnlockedAt = &unlockedAt
		responses = append(responses, response)
	}
	return responses
}

func leaderboardToResponse(entries []domain.LeaderboardEntry) []leaderboardEntryResponse {
	responses := make([]leaderboardEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, leaderboardEntryResponse{
			Rank:               entry.Rank,
			PlayerID:           entry.PlayerID,
			TotalPoints:        pointsToJSON(entry.TotalPoints),
			DisplayTotalPoints: domain.DisplayPoints(entry.TotalPoints),
			SessionsLogged:     entry.SessionsLogged,
		})
	}
	return responses
}

func achievementsResultToResponse(result app.AchievementsResult) achievementsResultResponse {
	return achievementsResultResponse{
		Success:  true,
		Stats:    statsToResponse(result.Stats),
		Unlocked: definitionsToResponse(result.Unlocked),
	}
}

func writeErrorResponse(w http.ResponseWriter, cause string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	data, err := json.Marshal(errorResponse{Success: false, Cause: cause})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"cause":"internal server error"}`))
		return
	}
	w.WriteHeader(statusCode)
	w.Write(data)
}

func writeJSONResponse(ctx context.Context, w http.ResponseWriter, statusCode int, response any) {
	data, err := json.Marshal(response)
	if err != nil {
		reporting.Report(ctx, fmt.Errorf("failed to marshal response: %w", err))
		writeErrorResponse(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(data)
}

// Map an error returned by an app function to a response
func writeAppErrorResponse(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeErrorResponse(w, invalidInputCause(err), http.StatusBadRequest)
	case errors.Is(err, domain.ErrPlayerNotFound):
		writeErrorResponse(w, "player not found", http.StatusNotFound)
	default:
		// NOTE: App functions handle their own error reporting
		writeErrorResponse(w, "internal server error", http.StatusInternalServerError)
	}
}

// The part of the error message starting at the invalid input sentinel, without the wrapping context
func invalidInputCause(err error) string {
	message := err.Error()
	index := strings.Index(message, domain.ErrInvalidInput.Error())
	if index == -1 {
		return domain.ErrInvalidInput.Error()
	}
	return message[index:]
}

// Decode a JSON request body into dst and validate it
func decodeRequestBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	if decoder.More() {
		return errors.New("unexpected data after request body")
	}

	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// Normalize the player id in the request path and set it as the reporting user.
// Writes a 400 response and returns false if the id is invalid.
func playerIDFromPath(w http.ResponseWriter, r *http.Request) (context.Context, string, bool) {
	ctx := r.Context()

	playerID, err := strutils.NormalizeID(r.PathValue("playerID"))
	if err != nil {
		writeErrorResponse(w, "invalid player id", http.StatusBadRequest)
		return ctx, "", false
	}

	ctx = reporting.SetPlayerIDInContext(ctx, playerID)

	return ctx, playerID, true
}
