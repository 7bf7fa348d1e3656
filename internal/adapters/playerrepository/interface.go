package playerrepository

import (
	"context"
	"time"

	"github.com/puttlog/puttlog/internal/domain"
)

type PlayerRepository interface {
	// StoreSession appends the session and returns the updated stats
	StoreSession(ctx context.Context, session domain.ScoredSession) (domain.PlayerStats, error)
	GetPlayerStats(ctx context.Context, playerID string) (domain.PlayerStats, error)
	// GetSessionBests returns zero bests for a player without sessions
	GetSessionBests(ctx context.Context, playerID string) (domain.SessionBests, error)
	// UpdateBestLeaderboardRank records the player's current rank if it is their best yet
	UpdateBestLeaderboardRank(ctx context.Context, playerID string) (domain.PlayerStats, error)

	GetUnlockedAchievements(ctx context.Context, playerID string) ([]domain.UnlockRecord, error)
	// StoreUnlocks returns the ids that were not already unlocked
	StoreUnlocks(ctx context.Context, playerID string, achievementIDs []string, unlockedAt time.Time) ([]string, error)

	AddFriend(ctx context.Context, playerID, friendID string) (domain.PlayerStats, error)
	CompleteChallenge(ctx context.Context, playerID, challengeID string) (domain.PlayerStats, error)

	GetLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}
