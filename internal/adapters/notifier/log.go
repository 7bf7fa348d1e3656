package notifier

import (
	"context"
	"time"

	"github.com/puttlog/puttlog/internal/domain"
	"github.com/puttlog/puttlog/internal/logging"
)

type logNotifier struct{}

// NewLogNotifier returns a notifier that only writes unlock events to the request logger
func NewLogNotifier() Notifier {
	return logNotifier{}
}

func (logNotifier) NotifyUnlocked(ctx context.Context, playerID string, unlocked []domain.AchievementDefinition, unlockedAt time.Time) error {
	if len(unlocked) == 0 {
		return nil
	}

	ids := make([]string, 0, len(unlocked))
	for _, definition := range unlocked {
		ids = append(ids, definition.ID)
	}

	logging.FromContext(ctx).InfoContext(
		ctx,
		"Achievements unlocked",
		"playerId", playerID,
		"achievementIds", ids,
		"unlockedAt", unlockedAt.Format(time.RFC3339),
	)
	return nil
}
