package app

import (
	"context"
	"fmt"
	"time"

	"github.com/puttlog/puttlog/internal/adapters/notifier"
	"github.com/puttlog/puttlog/internal/adapters/playerrepository"
	"github.com/puttlog/puttlog/internal/domain"
	"github.com/puttlog/puttlog/internal/logging"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Evaluates the catalog against the snapshot, stores the new unlocks and notifies about them
type unlockAchievements func(ctx context.Context, snapshot domain.AchievementSnapshot) ([]domain.AchievementDefinition, error)

func buildUnlockAchievements(
	repo playerrepository.PlayerRepository,
	catalog domain.AchievementCatalog,
	unlockNotifier notifier.Notifier,
	nowFunc func() time.Time,
) unlockAchievements {
	return func(ctx context.Context, snapshot domain.AchievementSnapshot) ([]domain.AchievementDefinition, error) {
		playerID := snapshot.Stats.PlayerID

		records, err := repo.GetUnlockedAchievements(ctx, playerID)
		if err != nil {
			// NOTE: PlayerRepository implementations handle their own error reporting
			return nil, fmt.Errorf("failed to get unlocked achievements: %w", err)
		}

		alreadyUnlocked := make(domain.AchievementIDSet, len(records))
		for _, record := range records {
			alreadyUnlocked[record.AchievementID] = struct{}{}
		}

		candidates := domain.EvaluateAchievements(catalog, snapshot, alreadyUnlocked)
		if len(candidates) == 0 {
			return candidates, nil
		}

		ids := make([]string, 0, len(candidates))
		for _, definition := range candidates {
			ids = append(ids, definition.ID)
		}

		unlockedAt := nowFunc()
		storedIDs, err := repo.StoreUnlocks(ctx, playerID, ids, unlockedAt)
		if err != nil {
			// NOTE: PlayerRepository implementations handle their own error reporting
			return nil, fmt.Errorf("failed to store unlocks: %w", err)
		}

		// A concurrent request may have stored some of the unlocks first
		stored := domain.NewAchievementIDSet(storedIDs...)
		unlocked := make([]domain.AchievementDefinition, 0, len(stored))
		for _, definition := range candidates {
			if !stored.Contains(definition.ID) {
				continue
			}
			unlocked = append(unlocked, definition)
			metrics.achievementsUnlocked.Add(ctx, 1, metric.WithAttributes(
				attribute.String("achievement_id", definition.ID),
			))
		}

		if len(unlocked) > 0 {
			logging.FromContext(ctx).InfoContext(ctx, "Unlocked achievements", "count", len(unlocked))
			notifyUnlocked(ctx, unlockNotifier, playerID, unlocked, unlockedAt)
		}

		return unlocked, nil
	}
}

// Send the notification in the background so the request is not held up by the sink
func notifyUnlocked(ctx context.Context, unlockNotifier notifier.Notifier, playerID string, unlocked []domain.AchievementDefinition, unlockedAt time.Time) {
	// Ignore cancellations from the request context and try to notify anyway
	// Take a maximum of 1 second to not keep goroutines around for too long
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 1*time.Second)
	go func() {
		defer cancel()
		err := unlockNotifier.NotifyUnlocked(notifyCtx, playerID, unlocked, unlockedAt)
		if err != nil {
			// NOTE: Notifier implementations handle their own error reporting
			logging.FromContext(notifyCtx).WarnContext(notifyCtx, "Failed to notify about unlocked achievements", "error", err)
		}
	}()
}
