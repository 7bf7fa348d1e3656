package playerrepository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/puttlog/puttlog/internal/domain"
	"github.com/puttlog/puttlog/internal/logging"
	"github.com/puttlog/puttlog/internal/reporting"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type Postgres struct {
	db      *sqlx.DB
	schema  string
	tracer  trace.Tracer
	nowFunc func() time.Time
}

func NewPostgres(db *sqlx.DB, schema string, nowFunc func() time.Time) *Postgres {
	tracer := otel.Tracer("puttlog/playerrepository/postgres")
	return &Postgres{
		db:      db,
		schema:  schema,
		tracer:  tracer,
		nowFunc: nowFunc,
	}
}

type dbPlayerStats struct {
	PlayerID            string          `db:"player_id"`
	TotalPoints         decimal.Decimal `db:"total_points"`
	SessionsLogged      int             `db:"sessions_logged"`
	CurrentStreakDays   int             `db:"current_streak_days"`
	LongestStreakDays   int             `db:"longest_streak_days"`
	LastSessionDay      sql.NullTime    `db:"last_session_day"`
	LongestMakeStreak   int             `db:"longest_make_streak"`
	BestLeaderboardRank int             `db:"best_leaderboard_rank"`
}

type dbSessionBests struct {
	Points           decimal.Decimal `db:"best_points"`
	AccuracyPercent  decimal.Decimal `db:"best_accuracy_percent"`
	MadeDistanceFeet decimal.Decimal `db:"best_made_distance_feet"`
}

type dbUnlock struct {
	AchievementID string    `db:"achievement_id"`
	UnlockedAt    time.Time `db:"unlocked_at"`
}

type dbLeaderboardEntry struct {
	Rank           int             `db:"rank"`
	PlayerID       string          `db:"player_id"`
	TotalPoints    decimal.Decimal `db:"total_points"`
	SessionsLogged int             `db:"sessions_logged"`
}

func (s dbPlayerStats) toDomain(friendCount, challengesCompleted int) domain.PlayerStats {
	var lastSessionDay time.Time
	if s.LastSessionDay.Valid {
		lastSessionDay = domain.CalendarDay(s.LastSessionDay.Time)
	}
	return domain.PlayerStats{
		PlayerID:            s.PlayerID,
		TotalPoints:         s.TotalPoints,
		SessionsLogged:      s.SessionsLogged,
		CurrentStreakDays:   s.CurrentStreakDays,
		LongestStreakDays:   s.LongestStreakDays,
		LastSessionDay:      lastSessionDay,
		LongestMakeStreak:   s.LongestMakeStreak,
		FriendCount:         friendCount,
		BestLeaderboardRank: s.BestLeaderboardRank,
		ChallengesCompleted: challengesCompleted,
	}
}

// Start a transaction with the search path set to the repository schema
func (p *Postgres) beginTx(ctx context.Context) (*sqlx.Tx, error) {
	txx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}

	_, err = txx.ExecContext(ctx, fmt.Sprintf("SET search_path TO %s", pq.QuoteIdentifier(p.schema)))
	if err != nil {
		txx.Rollback()
		return nil, fmt.Errorf("failed to set search path: %w", err)
	}

	return txx, nil
}

func (p *Postgres) ensurePlayerExists(ctx context.Context, txx *sqlx.Tx, playerID string) error {
	now := p.nowFunc()
	_, err := txx.ExecContext(
		ctx,
		`INSERT INTO player_stats
		(player_id, created_at, updated_at)
		VALUES ($1, $2, $2)
		ON CONFLICT (player_id) DO NOTHING`,
		playerID,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert player: %w", err)
	}
	return nil
}

// Read the stats of the player, locking the row if forUpdate is set
//
// Returns domain.ErrPlayerNotFound if the player has no stats row
func getStats(ctx context.Context, txx *sqlx.Tx, playerID string, forUpdate bool) (domain.PlayerStats, error) {
	query := `SELECT
			player_id, total_points, sessions_logged,
			current_streak_days, longest_streak_days, last_session_day,
			longest_make_streak, best_leaderboard_rank
		FROM player_stats
		WHERE player_id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var stats dbPlayerStats
	err := txx.QueryRowxContext(ctx, query, playerID).StructScan(&stats)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PlayerStats{}, domain.ErrPlayerNotFound
	} else if err != nil {
		return domain.PlayerStats{}, fmt.Errorf("failed to query player stats: %w", err)
	}

	var friendCount int
	err = txx.QueryRowxContext(ctx, "SELECT COUNT(*) FROM friendships WHERE player_id = $1", playerID).Scan(&friendCount)
	if err != nil {
		return domain.PlayerStats{}, fmt.Errorf("failed to count friends: %w", err)
	}

	var challengesCompleted int
	err = txx.QueryRowxContext(ctx, "SELECT COUNT(*) FROM completed_challenges WHERE player_id = $1", playerID).Scan(&challengesCompleted)
	if err != nil {
		return domain.PlayerStats{}, fmt.Errorf("failed to count completed challenges: %w", err)
	}

	return stats.toDomain(friendCount, challengesCompleted), nil
}

func (p *Postgres) writeStats(ctx context.Context, txx *sqlx.Tx, stats domain.PlayerStats) error {
	var lastSessionDay sql.NullString
	if !stats.LastSessionDay.IsZero() {
		lastSessionDay = sql.NullString{
			String: stats.LastSessionDay.Format(time.DateOnly),
			Valid:  true,
		}
	}

	_, err := txx.ExecContext(
		ctx,
		`UPDATE player_stats SET
			total_points = $2,
			sessions_logged = $3,
			current_streak_days = $4,
			longest_streak_days = $5,
			last_session_day = $6,
			longest_make_streak = $7,
			best_leaderboard_rank = $8,
			updated_at = $9
		WHERE player_id = $1`,
		stats.PlayerID,
		stats.TotalPoints,
		stats.SessionsLogged,
		stats.CurrentStreakDays,
		stats.LongestStreakDays,
		lastSessionDay,
		stats.LongestMakeStreak,
		stats.BestLeaderboardRank,
		p.nowFunc(),
	)
	if err != nil {
		return fmt.Errorf("failed to update player stats: %w", err)
	}
	return nil
}

func (p *Postgres) StoreSession(ctx context.Context, session domain.ScoredSession) (domain.PlayerStats, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.StoreSession")
	defer span.End()

	extras := map[string]string{
		"playerID":  session.PlayerID,
		"sessionID": session.ID,
	}

	if session.PlayerID == "" {
		err := fmt.Errorf("playerID is empty")
		reporting.Report(ctx, err, extras)
		return domain.PlayerStats{}, err
	}

	txx, err := p.beginTx(ctx)
	if err != nil {
		reporting.Report(ctx, err, extras)
		return domain.PlayerStats{}, err
	}
	defer txx.Rollback()

	err = p.ensurePlayerExists(ctx, txx, session.PlayerID)
	if err != nil {
		reporting.Report(ctx, err, extras)
		return domain.PlayerStats{}, err
	}

	stats, err := getStats(ctx, txx, session.PlayerID, true)
	if err != nil {
		err := fmt.Errorf("failed to get stats for update: %w", err)
		reporting.Report(ctx, err, extras)
		return domain.PlayerStats{}, err
	}

	var longestMakeStreak sql.NullInt64
	if session.Session.LongestMakeStreak != nil {
		longestMakeStreak = sql.NullInt64{Int64: int64(*session.Session.LongestMakeStreak), Valid: true}
	}

	_, err = txx.ExecContext(
		ctx,
		`INSERT INTO practice_sessions
		(id, player_id, distance_feet, attempts, makes, longest_make_streak, points, logged_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		session.ID,
		session.PlayerID,
		session.Session.DistanceFeet,
		session.Session.Attempts,
		session.Session.Makes,
		longestMakeStreak,
		session.Points,
		session.LoggedAt,
	)
	if err != nil {
		err := fmt.Errorf("failed to insert session: %w", err)
		reporting.Report(ctx, err, extras)
		return domain.PlayerStats{}, err
	}

	updated := stats.ApplySession(session)

	err = p.writeStats(ctx, txx, updated)
	if err != nil {
		reporting.Report(ctx, err, extras)
		return domain.PlayerStats{}, err
	}

	err = txx.Commit()
	if err != nil {
		err := fmt.Errorf("failed to commit transaction: %w", err)
		reporting.Report(ctx, err, extras)
		return domain.PlayerStats{}, err
	}

	logging.FromContext(ctx).InfoContext(ctx, "Stored session", "points", session.Points.String())

	return updated, nil
}

func (p *Postgres) GetPlayerStats(ctx context.Context, playerID string) (domain.PlayerStats, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.GetPlayerStats")
	defer span.End()

	extras := map[string]string{"playerID": playerID}

	txx, err := p.beginTx(ctx)
	if err != nil {
		reporting.Report(ctx, err, extras)
		return domain.PlayerStats{}, err
	}
	defer txx.Rollback()

	stats, err := getStats(ctx, txx, playerID, false)
	if errors.Is(err, domain.ErrPlayerNotFound) {
		return domain.PlayerStats{}, err
	} else if err != nil {
		reporting.Report(ctx, err, extras)
		return domain.PlayerStats{}, err
	}

	err = txx.Commit()
	if err != nil {
		err := fmt.Errorf("failed to commit transaction: %w", err)
		reporting.Report(ctx, err, extras)
		return domain.PlayerStats{}, err
	}

	return stats, nil
}

func (p *Postgres) GetSessionBests(ctx context.Context, playerID string) (domain.SessionBests, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.GetSessionBests")
	defer span.End()

	var bests dbSessionBests
	err := p.db.QueryRowxContext(
		ctx,
		fmt.Sprintf(`SELECT
			COALESCE(MAX(points), 0) AS best_points,
			COALESCE(MAX(makes::numeric * 100 / attempts), 0) AS best_accuracy_percent,
			COALESCE(MAX(CASE WHEN makes > 0 THEN distance_feet::numeric ELSE 0 END), 0) AS best_made_distance_feet
		FROM %s.practice_sessions
		WHERE player_id = $1`,
			pq.QuoteIdentifier(p.schema)),
		playerID,
	).StructScan(&bests)
	if err != nil {
		err := fmt.Errorf("failed to select session bests: %w", err)
		reporting.Report(ctx, err, map[string]string{"playerID": playerID})
		return domain.SessionBests{}, err
	}

	return domain.SessionBests{
		Points:           bests.Points,
		AccuracyPercent:  bests.AccuracyPercent,
		MadeDistanceFeet: bests.MadeDistanceFeet,
	}, nil
}

func (p *Postgres) UpdateBestLeaderboardRank(ctx context.Context, playerID string) (domain.PlayerStats, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.UpdateBestLeaderboardRank")
	defer span.End()

	extras := map[string]string{"playerID": playerID}

	txx, err := p.beginTx(ctx)
	if err != nil {
		reporting.Report(ctx, err, extras)
		return domain.PlayerStats{}, err
	}
	defer txx.Rollback()

	stats, err := getStats(ctx, txx, playerID, true)
	if errors.Is(err, domain.ErrPlayerNotFound) {
		return domain.PlayerStats{}, err
	} else if err != nil {
		reporting.Report(ctx, err, extras)
		return domain.PlayerStats{}, err
	}

	if stats.SessionsLogged == 0 {
		// Only players with sessions are on the leaderboard
		return stats, nil
	}

	// Dense rank: one more than the number of distinct totals above the player's
	var rank int
	err = txx.QueryRowxContext(
		ctx,
		`SELECT COUNT(DISTINCT total_points) + 1
		FROM player_stats
		WHERE sessions_logged > 0 AND total_points > $1`,
		stats.TotalPoints,
	).Scan(&rank)
	if err != nil {
		err := fmt.Errorf("failed to compute leaderboard rank: %w", err)
		reporting.Report(ctx, err, extras)
		return domain.PlayerStats{}, err
	}

	updated := stats.WithLeaderboardRank(rank)
	if updated.BestLeaderboardRank == stats.BestLeaderboardRank {
		return stats, nil
	}

	err = p.writeStats(ctx, txx, updated)
	if err != nil {
		reporting.Report(ctx, err, extras)
		return domain.PlayerStats{}, err
	}

	err = txx.Commit()
	if err != nil {
		err := fmt.Errorf("failed to commit transaction: %w", err)
		reporting.Report(ctx, err, extras)
		return domain.PlayerStats{}, err
	}

	return updated, nil
}

func (p *Postgres) GetUnlockedAchievements(ctx context.Context, playerID string) ([]domain.UnlockRecord, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.GetUnlockedAchievements")
	defer span.End()

	var unlocks []dbUnlock
	err := p.db.SelectContext(
		ctx,
		&unlocks,
		fmt.Sprintf(`SELECT achievement_id, unlocked_at
		FROM %s.achievement_unlocks
		WHERE player_id = $1
		ORDER BY unlocked_at ASC, achievement_id ASC`,
			pq.QuoteIdentifier(p.schema)),
		playerID,
	)
	if err != nil {
		err := fmt.Errorf("failed to select unlocked achievements: %w", err)
		reporting.Report(ctx, err, map[string]string{"playerID": playerID})
		return nil, err
	}

	records := make([]domain.UnlockRecord, 0, len(unlocks))
	for _, unlock := range unlocks {
		records = append(records, domain.UnlockRecord{
			PlayerID:      playerID,
			AchievementID: unlock.AchievementID,
			UnlockedAt:    unlock.UnlockedAt,
		})
	}

	return records, nil
}

func (p *Postgres) StoreUnlocks(ctx context.Context, playerID string, achievementIDs []string, unlockedAt time.Time) ([]string, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.StoreUnlocks")
	defer span.End()

	extras := map[string]string{
		"playerID": playerID,
		"count":    strconv.Itoa(len(achievementIDs)),
	}

	stored := []string{}
	if len(achievementIDs) == 0 {
		return stored, nil
	}

	txx, err := p.beginTx(ctx)
	if err != nil {
		reporting.Report(ctx, err, extras)
		return nil, err
	}
	defer txx.Rollback()

	for _, achievementID := range achievementIDs {
		var insertedID string
		err := txx.QueryRowxContext(
			ctx,
			`INSERT INTO achievement_unlocks
			(player_id, achievement_id, unlocked_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (player_id, achievement_id) DO NOTHING
			RETURNING achievement_id`,
			playerID,
			achievementID,
			unlockedAt,
		).Scan(&insertedID)
		if errors.Is(err, sql.ErrNoRows) {
			// Already unlocked
			continue
		} else if err != nil {
			err := fmt.Errorf("failed to insert unlock: %w", err)
			reporting.Report(ctx, err, extras, map[string]string{"achievementID": achievementID})
			return nil, err
		}
		stored = append(stored, insertedID)
	}

	err = txx.Commit()
	if err != nil {
		err := fmt.Errorf("failed to commit transaction: %w", err)
		reporting.Report(ctx, err, extras)
		return nil, err
	}

	return stored, nil
}

func (p *Postgres) AddFriend(ctx context.Context, playerID, friendID string) (domain.PlayerStats, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.AddFriend")
	defer span.End()

	extras := map[string]string{
		"playerID": playerID,
		"friendID": friendID,
	}

	if playerID == friendID {
		return domain.PlayerStats{}, fmt.Errorf("%w: a player cannot befriend themselves", domain.ErrInvalidInput)
	}

	txx, err := p.beginTx(ctx)
	if err != nil {
		reporting.Report(ctx, err, extras)
		return domain.PlayerStats{}, err
	}
	defer txx.Rollback()

	_, err = getStats(ctx, txx, friendID, false)
	if errors.Is(err, domain.ErrPlayerNotFound) {
		return domain.PlayerStats{}, fmt.Errorf("friend: %w", err)
	} else if err != nil {
		reporting.Report(ctx, err, extras)
		return domain.PlayerStats{}, err
	}

	err = p.ensurePlayerExists(ctx, txx, playerID)
	if err != nil {
		reporting.Report(ctx, err, extras)
		return domain.PlayerStats{}, err
	}

	now := p.nowFunc()
	_, err = txx.ExecContext(
		ctx,
		`INSERT INTO friendships
		(player_id, friend_id, created_at)
		VALUES ($1, $2, $3), ($2, $1, $3)
		ON CONFLICT (player_id, friend_id) DO NOTHING`,
		playerID,
		friendID,
		now,
	)
	if err != nil {
		err := fmt.Errorf("failed to insert friendship: %w", err)
		reporting.Report(ctx, err, extras)
		return domain.PlayerStats{}, err
	}

	stats, err := getStats(ctx, txx, playerID, false)
	if err != nil {
		reporting.Report(ctx, err, extras)
		return domain.PlayerStats{}, err
	}

	err = txx.Commit()
	if err != nil {
		err := fmt.Errorf("failed to commit transaction: %w", err)
		reporting.Report(ctx, err, extras)
		return domain.PlayerStats{}, err
	}

	return stats, nil
}

func (p *Postgres) CompleteChallenge(ctx context.Context, playerID, challengeID string) (domain.PlayerStats, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.CompleteChallenge")
	defer span.End()

	extras := map[string]string{
		"playerID":    playerID,
		"challengeID": challengeID,
	}

	if challengeID == "" {
		return domain.PlayerStats{}, fmt.Errorf("%w: challengeId must not be empty", domain.ErrInvalidInput)
	}

	txx, err := p.beginTx(ctx)
	if err != nil {
		reporting.Report(ctx, err, extras)
		return domain.PlayerStats{}, err
	}
	defer txx.Rollback()

	err = p.ensurePlayerExists(ctx, txx, playerID)
	if err != nil {
		reporting.Report(ctx, err, extras)
		return domain.PlayerStats{}, err
	}

	_, err = txx.ExecContext(
		ctx,
		`INSERT INTO completed_challenges
		(player_id, challenge_id, completed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (player_id, challenge_id) DO NOTHING`,
		playerID,
		challengeID,
		p.nowFunc(),
	)
	if err != nil {
		err := fmt.Errorf("failed to insert completed challenge: %w", err)
		reporting.Report(ctx, err, extras)
		return domain.PlayerStats{}, err
	}

	stats, err := getStats(ctx, txx, playerID, false)
	if err != nil {
		reporting.Report(ctx, err, extras)
		return domain.PlayerStats{}, err
	}

	err = txx.Commit()
	if err != nil {
		err := fmt.Errorf("failed to commit transaction: %w", err)
		reporting.Report(ctx, err, extras)
		return domain.PlayerStats{}, err
	}

	return stats, nil
}

func (p *Postgres) GetLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.GetLeaderboard")
	defer span.End()

	if limit < 1 {
		err := fmt.Errorf("%w: limit must be positive, got %d", domain.ErrInvalidInput, limit)
		reporting.Report(ctx, err)
		return nil, err
	}

	var rows []dbLeaderboardEntry
	err := p.db.SelectContext(
		ctx,
		&rows,
		fmt.Sprintf(`SELECT
			DENSE_RANK() OVER (ORDER BY total_points DESC) AS rank,
			player_id, total_points, sessions_logged
		FROM %s.player_stats
		WHERE sessions_logged > 0
		ORDER BY total_points DESC, player_id ASC
		LIMIT $1`,
			pq.QuoteIdentifier(p.schema)),
		limit,
	)
	if err != nil {
		err := fmt.Errorf("failed to select leaderboard: %w", err)
		reporting.Report(ctx, err, map[string]string{"limit": strconv.Itoa(limit)})
		return nil, err
	}

	entries := make([]domain.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, domain.LeaderboardEntry{
			Rank:           row.Rank,
			PlayerID:       row.PlayerID,
			TotalPoints:    row.TotalPoints,
			SessionsLogged: row.SessionsLogged,
		})
	}

	return entries, nil
}
