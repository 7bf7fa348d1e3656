package app

import (
	"context"
	"fmt"
	"time"

	"github.com/puttlog/puttlog/internal/adapters/notifier"
	"github.com/puttlog/puttlog/internal/adapters/playerrepository"
	"github.com/puttlog/puttlog/internal/domain"
)

type AchievementsResult struct {
	Stats    domain.PlayerStats
	Unlocked []domain.AchievementDefinition
}

// CheckAchievements refreshes the player's leaderboard rank and unlocks achievements
// earned by their cumulative stats or by any of their stored sessions
type CheckAchievements func(ctx context.Context, playerID string) (AchievementsResult, error)

func BuildCheckAchievements(
	repo playerrepository.PlayerRepository,
	catalog domain.AchievementCatalog,
	unlockNotifier notifier.Notifier,
	nowFunc func() time.Time,
) CheckAchievements {
	unlock := buildUnlockAchievements(repo, catalog, unlockNotifier, nowFunc)

	return func(ctx context.Context, playerID string) (AchievementsResult, error) {
		stats, err := repo.UpdateBestLeaderboardRank(ctx, playerID)
		if err != nil {
			// NOTE: PlayerRepository implementations handle their own error reporting
			return AchievementsResult{}, fmt.Errorf("failed to update leaderboard rank: %w", err)
		}

		bests, err := repo.GetSessionBests(ctx, playerID)
		if err != nil {
			// NOTE: PlayerRepository implementations handle their own error reporting
			return AchievementsResult{}, fmt.Errorf("failed to get session bests: %w", err)
		}

		return unlockForSnapshot(ctx, unlock, domain.AchievementSnapshot{
			Stats: stats.AsOf(nowFunc()),
			Bests: &bests,
		})
	}
}

// AddFriend befriends two players and unlocks achievements for the first one
type AddFriend func(ctx context.Context, playerID, friendID string) (AchievementsResult, error)

func BuildAddFriend(
	repo playerrepository.PlayerRepository,
	catalog domain.AchievementCatalog,
	unlockNotifier notifier.Notifier,
	nowFunc func() time.Time,
) AddFriend {
	unlock := buildUnlockAchievements(repo, catalog, unlockNotifier, nowFunc)

	return func(ctx context.Context, playerID, friendID string) (AchievementsResult, error) {
		if playerID == friendID {
			return AchievementsResult{}, fmt.Errorf("%w: a player cannot befriend themselves", domain.ErrInvalidInput)
		}

		stats, err := repo.AddFriend(ctx, playerID, friendID)
		if err != nil {
			// NOTE: PlayerRepository implementations handle their own error reporting
			return AchievementsResult{}, fmt.Errorf("failed to add friend: %w", err)
		}

		return unlockForSnapshot(ctx, unlock, domain.AchievementSnapshot{Stats: stats.AsOf(nowFunc())})
	}
}

// CompleteChallenge marks a challenge as completed and unlocks achievements
type CompleteChallenge func(ctx context.Context, playerID, challengeID string) (AchievementsResult, error)

func BuildCompleteChallenge(
	repo playerrepository.PlayerRepository,
	catalog domain.AchievementCatalog,
	unlockNotifier notifier.Notifier,
	nowFunc func() time.Time,
) CompleteChallenge {
	unlock := buildUnlockAchievements(repo, catalog, unlockNotifier, nowFunc)

	return func(ctx context.Context, playerID, challengeID string) (AchievementsResult, error) {
		stats, err := repo.CompleteChallenge(ctx, playerID, challengeID)
		if err != nil {
			// NOTE: PlayerRepository implementations handle their own error reporting
			return AchievementsResult{}, fmt.Errorf("failed to complete challenge: %w", err)
		}

		return unlockForSnapshot(ctx, unlock, domain.AchievementSnapshot{Stats: stats.AsOf(nowFunc())})
	}
}

func unlockForSnapshot(ctx context.Context, unlock unlockAchievements, snapshot domain.AchievementSnapshot) (AchievementsResult, error) {
	unlocked, err := unlock(ctx, snapshot)
	if err != nil {
		// NOTE: unlockAchievements handles its own error reporting
		return AchievementsResult{}, fmt.Errorf("failed to unlock achievements: %w", err)
	}

	return AchievementsResult{
		Stats:    snapshot.Stats,
		Unlocked: unlocked,
	}, nil
}
