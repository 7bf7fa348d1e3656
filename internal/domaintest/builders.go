package domaintest

import (
	"time"

	"github.com/puttlog/puttlog/internal/domain"
	"github.com/shopspring/decimal"
)

type sessionBuilder struct {
	session domain.PracticeSession
}

func (sb *sessionBuilder) WithDistance(distanceFeet float64) *sessionBuilder {
	sb.session.DistanceFeet = distanceFeet
	return sb
}

func (sb *sessionBuilder) WithAttempts(attempts int) *sessionBuilder {
	sb.session.Attempts = attempts
	return sb
}

func (sb *sessionBuilder) WithMakes(makes int) *sessionBuilder {
	sb.session.Makes = makes
	return sb
}

func (sb *sessionBuilder) WithMakeStreak(streak int) *sessionBuilder {
	sb.session.LongestMakeStreak = &streak
	return sb
}

func (sb *sessionBuilder) Build() domain.PracticeSession {
	session := sb.session
	if sb.session.LongestMakeStreak != nil {
		// Don't share the pointer with later builds
		streak := *sb.session.LongestMakeStreak
		session.LongestMakeStreak = &streak
	}
	return session
}

// Scored builds a scored session using the default scoring config
//
// NOTE: Panics if the session is invalid
func (sb *sessionBuilder) Scored(id, playerID string, loggedAt time.Time) domain.ScoredSession {
	session := sb.Build()
	points, err := domain.ComputePoints(domain.DefaultScoringConfig(), session)
	if err != nil {
		panic(err)
	}
	return domain.ScoredSession{
		ID:       id,
		PlayerID: playerID,
		Session:  session,
		Points:   points,
		LoggedAt: loggedAt,
	}
}

// NewSessionBuilder starts from 10 attempts from 20 feet with 5 makes
func NewSessionBuilder() *sessionBuilder {
	return &sessionBuilder{
		session: domain.PracticeSession{
			DistanceFeet: 20,
			Attempts:     10,
			Makes:        5,
		},
	}
}

type statsBuilder struct {
	stats domain.PlayerStats
}

func (sb *statsBuilder) WithTotalPoints(points int64) *statsBuilder {
	sb.stats.TotalPoints = decimal.NewFromInt(points)
	return sb
}

func (sb *statsBuilder) WithSessionsLogged(sessions int) *statsBuilder {
	sb.stats.SessionsLogged = sessions
	return sb
}

func (sb *statsBuilder) WithStreak(current int, lastSessionDay time.Time) *statsBuilder {
	sb.stats.CurrentStreakDays = current
	sb.stats.LongestStreakDays = max(sb.stats.LongestStreakDays, current)
	sb.stats.LastSessionDay = domain.CalendarDay(lastSessionDay)
	return sb
}

func (sb *statsBuilder) WithLongestMakeStreak(streak int) *statsBuilder {
	sb.stats.LongestMakeStreak = streak
	return sb
}

func (sb *statsBuilder) WithFriendCount(friends int) *statsBuilder {
	sb.stats.FriendCount = friends
	return sb
}

func (sb *statsBuilder) WithBestLeaderboardRank(rank int) *statsBuilder {
	sb.stats.BestLeaderboardRank = rank
	return sb
}

func (sb *statsBuilder) WithChallengesCompleted(challenges int) *statsBuilder {
	sb.stats.ChallengesCompleted = challenges
	return sb
}

func (sb *statsBuilder) Build() domain.PlayerStats {
	return sb.stats
}

func NewStatsBuilder(playerID string) *statsBuilder {
	return &statsBuilder{
		stats: domain.NewPlayerStats(playerID),
	}
}
