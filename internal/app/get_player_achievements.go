package app

import (
	"context"
	"fmt"
	"time"

	"github.com/puttlog/puttlog/internal/adapters/playerrepository"
	"github.com/puttlog/puttlog/internal/domain"
	"github.com/puttlog/puttlog/internal/logging"
)

type UnlockedAchievement struct {
	Definition domain.AchievementDefinition
	UnlockedAt time.Time
}

// GetPlayerAchievements returns the player's unlocked achievements in unlock order
type GetPlayerAchievements func(ctx context.Context, playerID string) ([]UnlockedAchievement, error)

func BuildGetPlayerAchievements(repo playerrepository.PlayerRepository, catalog domain.AchievementCatalog) GetPlayerAchievements {
	return func(ctx context.Context, playerID string) ([]UnlockedAchievement, error) {
		records, err := repo.GetUnlockedAchievements(ctx, playerID)
		if err != nil {
			// NOTE: PlayerRepository implementations handle their own error reporting
			return nil, fmt.Errorf("failed to get unlocked achievements: %w", err)
		}

		achievements := make([]UnlockedAchievement, 0, len(records))
		for _, record := range records {
			definition, ok := catalog.Lookup(record.AchievementID)
			if !ok {
				// Removed from the catalog since it was unlocked
				logging.FromContext(ctx).WarnContext(ctx, "Dropping unlock of unknown achievement", "achievementId", record.AchievementID)
				continue
			}
			achievements = append(achievements, UnlockedAchievement{
				Definition: definition,
				UnlockedAt: record.UnlockedAt,
			})
		}

		return achievements, nil
	}
}
