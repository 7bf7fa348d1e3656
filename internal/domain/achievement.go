package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type AchievementDefinition struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Requirement float64
}

// UnlockRecord is written once per player and achievement
type UnlockRecord struct {
	PlayerID      string
	AchievementID string
	UnlockedAt    time.Time
}

// AchievementRule is the shape of the predicate that unlocks an achievement.
// The threshold itself is the definition's Requirement.
//
//sumtype:decl
type AchievementRule interface {
	isAchievementRule()
}

type StatField string

const (
	StatSessionsLogged      StatField = "sessionsLogged"
	StatTotalPoints         StatField = "totalPoints"
	StatFriendCount         StatField = "friendCount"
	StatBestLeaderboardRank StatField = "bestLeaderboardRank"
	StatChallengesCompleted StatField = "challengesCompleted"
)

type Comparison int

const (
	AtLeast Comparison = iota
	// AtMost treats a zero value as "not reached yet", e.g. an unranked player
	AtMost
)

// StatThreshold compares a cumulative stat to the requirement
type StatThreshold struct {
	Field      StatField
	Comparison Comparison
}

type SessionValue string

const (
	SessionPoints           SessionValue = "points"
	SessionAccuracyPercent  SessionValue = "accuracyPercent"
	SessionMadeDistanceFeet SessionValue = "madeDistanceFeet"
)

// SessionThreshold requires a value of a single session to reach the requirement
type SessionThreshold struct {
	Value SessionValue
}

type StreakKind string

const (
	StreakPracticeDays     StreakKind = "practiceDays"
	StreakConsecutiveMakes StreakKind = "consecutiveMakes"
)

// StreakLength requires the longest streak of its kind to reach the requirement
type StreakLength struct {
	Streak StreakKind
}

func (StatThreshold) isAchievementRule()    {}
func (SessionThreshold) isAchievementRule() {}
func (StreakLength) isAchievementRule()     {}

// AchievementIDSet is a set of achievement ids
type AchievementIDSet map[string]struct{}

func NewAchievementIDSet(ids ...string) AchievementIDSet {
	set := make(AchievementIDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s AchievementIDSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// SessionBests are the best values over all of a player's stored sessions
type SessionBests struct {
	Points           decimal.Decimal
	AccuracyPercent  decimal.Decimal
	MadeDistanceFeet decimal.Decimal
}

// AchievementSnapshot is the input to the evaluator
type AchievementSnapshot struct {
	Stats PlayerStats
	// The session that was just logged, if any
	Session *ScoredSession
	// Stored session bests, if loaded. Session rules never match without a session or bests.
	Bests *SessionBests
}

// EvaluateAchievements returns the definitions in the catalog that are satisfied by
// the snapshot and not already unlocked, in catalog order
func EvaluateAchievements(catalog AchievementCatalog, snapshot AchievementSnapshot, alreadyUnlocked AchievementIDSet) []AchievementDefinition {
	unlocked := []AchievementDefinition{}
	for _, entry := range catalog.entries {
		if alreadyUnlocked.Contains(entry.definition.ID) {
			continue
		}
		if ruleSatisfied(entry.rule, decimal.NewFromFloat(entry.definition.Requirement), snapshot) {
			unlocked = append(unlocked, entry.definition)
		}
	}
	return unlocked
}

func ruleSatisfied(rule AchievementRule, requirement decimal.Decimal, snapshot AchievementSnapshot) bool {
	switch rule := rule.(type) {
	case StatThreshold:
		value, ok := statValue(snapshot.Stats, rule.Field)
		if !ok {
			return false
		}
		switch rule.Comparison {
		case AtLeast:
			return value.GreaterThanOrEqual(requirement)
		case AtMost:
			return value.IsPositive() && value.LessThanOrEqual(requirement)
		}
		return false
	case SessionThreshold:
		if snapshot.Session != nil {
			value, ok := sessionValue(*snapshot.Session, rule.Value)
			if ok && value.GreaterThanOrEqual(requirement) {
				return true
			}
		}
		if snapshot.Bests != nil {
			value, ok := bestValue(*snapshot.Bests, rule.Value)
			if ok && value.GreaterThanOrEqual(requirement) {
				return true
			}
		}
		return false
	case StreakLength:
		var length int
		switch rule.Streak {
		case StreakPracticeDays:
			// The current streak decays between sessions, the longest does not
			length = snapshot.Stats.LongestStreakDays
		case StreakConsecutiveMakes:
			length = snapshot.Stats.LongestMakeStreak
		default:
			return false
		}
		return decimal.NewFromInt(int64(length)).GreaterThanOrEqual(requirement)
	default:
		panic(fmt.Sprintf("unhandled achievement rule %T", rule))
	}
}

func statValue(stats PlayerStats, field StatField) (decimal.Decimal, bool) {
	switch field {
	case StatSessionsLogged:
		return decimal.NewFromInt(int64(stats.SessionsLogged)), true
	case StatTotalPoints:
		return stats.TotalPoints, true
	case StatFriendCount:
		return decimal.NewFromInt(int64(stats.FriendCount)), true
	case StatBestLeaderboardRank:
		return decimal.NewFromInt(int64(stats.BestLeaderboardRank)), true
	case StatChallengesCompleted:
		return decimal.NewFromInt(int64(stats.ChallengesCompleted)), true
	}
	return decimal.Zero, false
}

func sessionValue(session ScoredSession, value SessionValue) (decimal.Decimal, bool) {
	switch value {
	case SessionPoints:
		return session.Points, true
	case SessionAccuracyPercent:
		return session.Session.AccuracyPercent(), true
	case SessionMadeDistanceFeet:
		return session.Session.MadeDistanceFeet(), true
	}
	return decimal.Zero, false
}

func bestValue(bests SessionBests, value SessionValue) (decimal.Decimal, bool) {
	switch value {
	case SessionPoints:
		return bests.Points, true
	case SessionAccuracyPercent:
		return bests.AccuracyPercent, true
	case SessionMadeDistanceFeet:
		return bests.MadeDistanceFeet, true
	}
	return decimal.Zero, false
}

// Include returns the bests after also considering the given session
func (b SessionBests) Include(session PracticeSession, points decimal.Decimal) SessionBests {
	return SessionBests{
		Points:           decimal.Max(b.Points, points),
		AccuracyPercent:  decimal.Max(b.AccuracyPercent, session.AccuracyPercent()),
		MadeDistanceFeet: decimal.Max(b.MadeDistanceFeet, session.MadeDistanceFeet()),
	}
}
