package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/puttlog/puttlog/internal/adapters/notifier"
	"github.com/puttlog/puttlog/internal/adapters/playerrepository"
	"github.com/puttlog/puttlog/internal/domain"
	"github.com/puttlog/puttlog/internal/logging"
	"github.com/puttlog/puttlog/internal/reporting"
	"github.com/puttlog/puttlog/internal/strutils"
)

// Sessions may be logged slightly ahead of the server clock
const maxClockSkew = 5 * time.Minute

type SessionResult struct {
	Session  domain.ScoredSession
	Stats    domain.PlayerStats
	Unlocked []domain.AchievementDefinition
}

// LogSession scores and stores a practice session and unlocks any achievements it earns.
//
// A zero loggedAt means now.
type LogSession func(ctx context.Context, playerID string, session domain.PracticeSession, loggedAt time.Time) (SessionResult, error)

func BuildLogSession(
	repo playerrepository.PlayerRepository,
	scoringConfig domain.ScoringConfig,
	catalog domain.AchievementCatalog,
	unlockNotifier notifier.Notifier,
	nowFunc func() time.Time,
) LogSession {
	unlock := buildUnlockAchievements(repo, catalog, unlockNotifier, nowFunc)

	return func(ctx context.Context, playerID string, session domain.PracticeSession, loggedAt time.Time) (SessionResult, error) {
		logger := logging.FromContext(ctx)

		if !strutils.IDIsNormalized(playerID) {
			err := fmt.Errorf("%w: player id is not normalized", domain.ErrInvalidInput)
			reporting.Report(ctx, err, map[string]string{"playerID": playerID})
			return SessionResult{}, err
		}

		now := nowFunc()
		if loggedAt.IsZero() {
			loggedAt = now
		}
		if loggedAt.After(now.Add(maxClockSkew)) {
			return SessionResult{}, fmt.Errorf("%w: loggedAt is in the future", domain.ErrInvalidInput)
		}

		points, err := domain.ComputePoints(scoringConfig, session)
		if err != nil {
			return SessionResult{}, fmt.Errorf("failed to score session: %w", err)
		}

		sessionID, err := uuid.NewV7()
		if err != nil {
			err := fmt.Errorf("failed to generate session id: %w", err)
			reporting.Report(ctx, err)
			return SessionResult{}, err
		}

		scored := domain.ScoredSession{
			ID:       sessionID.String(),
			PlayerID: playerID,
			Session:  session,
			Points:   points,
			LoggedAt: loggedAt,
		}

		stats, err := repo.StoreSession(ctx, scored)
		if err != nil {
			// NOTE: PlayerRepository implementations handle their own error reporting
			return SessionResult{}, fmt.Errorf("failed to store session: %w", err)
		}

		metrics.sessionsLogged.Add(ctx, 1)
		metrics.pointsAwarded.Add(ctx, points.InexactFloat64())

		rankedStats, err := repo.UpdateBestLeaderboardRank(ctx, playerID)
		if err != nil {
			// NOTE: PlayerRepository implementations handle their own error reporting
			logger.ErrorContext(ctx, "Failed to update leaderboard rank", "error", err)

			// NOTE: We continue without the rank, the session is already stored
		} else {
			stats = rankedStats
		}

		unlocked, err := unlock(ctx, domain.AchievementSnapshot{Stats: stats, Session: &scored})
		if err != nil {
			// NOTE: unlockAchievements handles its own error reporting
			logger.ErrorContext(ctx, "Failed to unlock achievements", "error", err)

			// NOTE: The session is already stored, so failing the request would invite a duplicate.
			// The next check evaluates the stored session bests and picks the achievements up.
			unlocked = []domain.AchievementDefinition{}
		}

		return SessionResult{
			Session:  scored,
			Stats:    stats.AsOf(now),
			Unlocked: unlocked,
		}, nil
	}
}
