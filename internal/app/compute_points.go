package app

import (
	"github.com/puttlog/puttlog/internal/domain"
	"github.com/shopspring/decimal"
)

// ComputePoints scores a session without storing it
type ComputePoints func(session domain.PracticeSession) (decimal.Decimal, error)

func BuildComputePoints(scoringConfig domain.ScoringConfig) ComputePoints {
	return func(session domain.PracticeSession) (decimal.Decimal, error) {
		return domain.ComputePoints(scoringConfig, session)
	}
}
