package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlayerStats are the cumulative totals derived from all of a player's activity
type PlayerStats struct {
	PlayerID string

	TotalPoints    decimal.Decimal
	SessionsLogged int

	CurrentStreakDays int
	LongestStreakDays int
	// Midnight UTC of the day of the latest session. Zero if no sessions have been logged.
	LastSessionDay time.Time

	LongestMakeStreak int

	FriendCount int
	// 1 is the best rank. 0 means the player has never been ranked.
	BestLeaderboardRank int
	ChallengesCompleted int
}

func NewPlayerStats(playerID string) PlayerStats {
	return PlayerStats{
		PlayerID:    playerID,
		TotalPoints: decimal.Zero,
	}
}

// CalendarDay truncates t to midnight of its UTC calendar day
func CalendarDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ApplySession returns the stats after appending the given session
func (s PlayerStats) ApplySession(session ScoredSession) PlayerStats {
	updated := s
	updated.TotalPoints = s.TotalPoints.Add(session.Points)
	updated.SessionsLogged = s.SessionsLogged + 1

	day := CalendarDay(session.LoggedAt)
	switch {
	case s.LastSessionDay.IsZero():
		updated.CurrentStreakDays = 1
		updated.LastSessionDay = day
	case day.Equal(s.LastSessionDay):
		// Already practiced today
		if updated.CurrentStreakDays == 0 {
			updated.CurrentStreakDays = 1
		}
	case day.Equal(s.LastSessionDay.AddDate(0, 0, 1)):
		updated.CurrentStreakDays = s.CurrentStreakDays + 1
		updated.LastSessionDay = day
	case day.After(s.LastSessionDay):
		// Missed at least one day
		updated.CurrentStreakDays = 1
		updated.LastSessionDay = day
	default:
		// Backdated session, the streak is only advanced by the latest day
	}

	updated.LongestStreakDays = max(updated.LongestStreakDays, updated.CurrentStreakDays)
	updated.LongestMakeStreak = max(s.LongestMakeStreak, session.Session.MakeStreak())

	return updated
}

// AsOf returns the stats as seen on the day of now: the current streak is broken once a
// full calendar day has passed without a session
func (s PlayerStats) AsOf(now time.Time) PlayerStats {
	if s.LastSessionDay.IsZero() {
		return s
	}
	updated := s
	if s.LastSessionDay.Before(CalendarDay(now).AddDate(0, 0, -1)) {
		updated.CurrentStreakDays = 0
	}
	return updated
}

// WithLeaderboardRank records rank if it is better than the best rank seen so far
func (s PlayerStats) WithLeaderboardRank(rank int) PlayerStats {
	if rank <= 0 {
		return s
	}
	updated := s
	if s.BestLeaderboardRank == 0 || rank < s.BestLeaderboardRank {
		updated.BestLeaderboardRank = rank
	}
	return updated
}

type LeaderboardEntry struct {
	Rank           int
	PlayerID       string
	TotalPoints    decimal.Decimal
	SessionsLogged int
}
