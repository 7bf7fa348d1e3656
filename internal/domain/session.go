package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PracticeSession is one practice entry: a number of putts from a single distance
type PracticeSession struct {
	DistanceFeet float64
	Attempts     int
	Makes        int

	// Longest run of consecutive makes in the session. nil when not reported.
	LongestMakeStreak *int
}

// MakeStreak returns the reported make streak, or the lower bound the counts prove
func (s PracticeSession) MakeStreak() int {
	if s.LongestMakeStreak != nil {
		return *s.LongestMakeStreak
	}
	if s.Makes == 0 {
		return 0
	}
	if s.Makes == s.Attempts {
		return s.Makes
	}
	return 1
}

// AccuracyPercent returns makes/attempts as a percentage in [0, 100]
//
// NOTE: Only meaningful for validated sessions (attempts > 0)
func (s PracticeSession) AccuracyPercent() decimal.Decimal {
	if s.Attempts == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(s.Makes)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(s.Attempts)))
}

// MadeDistanceFeet is the session distance if at least one putt was made, else 0
func (s PracticeSession) MadeDistanceFeet() decimal.Decimal {
	if s.Makes == 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(s.DistanceFeet)
}

type ScoredSession struct {
	ID       string
	PlayerID string
	Session  PracticeSession
	Points   decimal.Decimal
	LoggedAt time.Time
}
