package app

import (
	"context"
	"fmt"
	"time"

	"github.com/puttlog/puttlog/internal/adapters/playerrepository"
	"github.com/puttlog/puttlog/internal/domain"
)

// GetPlayerStats returns the player's stats with the current streak as of now
type GetPlayerStats func(ctx context.Context, playerID string) (domain.PlayerStats, error)

func BuildGetPlayerStats(repo playerrepository.PlayerRepository, nowFunc func() time.Time) GetPlayerStats {
	return func(ctx context.Context, playerID string) (domain.PlayerStats, error) {
		stats, err := repo.GetPlayerStats(ctx, playerID)
		if err != nil {
			// NOTE: PlayerRepository implementations handle their own error reporting
			return domain.PlayerStats{}, fmt.Errorf("failed to get player stats: %w", err)
		}
		return stats.AsOf(nowFunc()), nil
	}
}
