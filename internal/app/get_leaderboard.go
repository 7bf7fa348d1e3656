package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/puttlog/puttlog/internal/adapters/cache"
	"github.com/puttlog/puttlog/internal/adapters/playerrepository"
	"github.com/puttlog/puttlog/internal/domain"
)

const MAX_LEADERBOARD_LIMIT = 100

type GetLeaderboard func(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)

func BuildGetLeaderboardWithCache(leaderboardCache cache.Cache[[]domain.LeaderboardEntry], repo playerrepository.PlayerRepository) GetLeaderboard {
	return func(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
		if limit < 1 || limit > MAX_LEADERBOARD_LIMIT {
			return nil, fmt.Errorf("%w: limit must be between 1 and %d, got %d", domain.ErrInvalidInput, MAX_LEADERBOARD_LIMIT, limit)
		}

		entries, err := cache.GetOrCreate(ctx, leaderboardCache, strconv.Itoa(limit), func() ([]domain.LeaderboardEntry, error) {
			return repo.GetLeaderboard(ctx, limit)
		})
		if err != nil {
			// NOTE: GetOrCreate only returns an error if create() fails.
			// PlayerRepository implementations handle their own error reporting
			return nil, fmt.Errorf("failed to cache.GetOrCreate leaderboard: %w", err)
		}

		return entries, nil
	}
}
