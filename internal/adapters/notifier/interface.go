package notifier

import (
	"context"
	"time"

	"github.com/puttlog/puttlog/internal/domain"
)

type Notifier interface {
	NotifyUnlocked(ctx context.Context, playerID string, unlocked []domain.AchievementDefinition, unlockedAt time.Time) error
}
