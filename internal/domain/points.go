package domain

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ScoringConfig holds the accepted bounds for practice sessions
type ScoringConfig struct {
	minDistanceFeet float64
	maxDistanceFeet float64
	maxAttempts     int
}

type scoringConfigFields struct {
	MinDistanceFeet float64 `validate:"gt=0"`
	MaxDistanceFeet float64 `validate:"gtefield=MinDistanceFeet"`
	MaxAttempts     int     `validate:"gte=1"`
}

func NewScoringConfig(minDistanceFeet, maxDistanceFeet float64, maxAttempts int) (ScoringConfig, error) {
	err := validate.Struct(scoringConfigFields{
		MinDistanceFeet: minDistanceFeet,
		MaxDistanceFeet: maxDistanceFeet,
		MaxAttempts:     maxAttempts,
	})
	if err != nil {
		return ScoringConfig{}, fmt.Errorf("invalid scoring config: %w", err)
	}

	return ScoringConfig{
		minDistanceFeet: minDistanceFeet,
		maxDistanceFeet: maxDistanceFeet,
		maxAttempts:     maxAttempts,
	}, nil
}

func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		minDistanceFeet: 5,
		maxDistanceFeet: 100,
		maxAttempts:     100,
	}
}

func (c ScoringConfig) MinDistanceFeet() float64 {
	return c.minDistanceFeet
}

func (c ScoringConfig) MaxDistanceFeet() float64 {
	return c.maxDistanceFeet
}

func (c ScoringConfig) MaxAttempts() int {
	return c.maxAttempts
}

// ValidateSession returns an error wrapping ErrInvalidInput if the session is out of bounds
func (c ScoringConfig) ValidateSession(session PracticeSession) error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
	}

	if math.IsNaN(session.DistanceFeet) || math.IsInf(session.DistanceFeet, 0) {
		return invalid("distanceFeet must be a finite number")
	}
	distanceTag := fmt.Sprintf("gte=%v,lte=%v", c.minDistanceFeet, c.maxDistanceFeet)
	if validate.Var(session.DistanceFeet, distanceTag) != nil {
		return invalid("distanceFeet must be between %v and %v, got %v", c.minDistanceFeet, c.maxDistanceFeet, session.DistanceFeet)
	}

	// Checked before makes so that attempts = 0 never reaches a division
	if validate.Var(session.Attempts, fmt.Sprintf("gte=1,lte=%d", c.maxAttempts)) != nil {
		return invalid("attempts must be between 1 and %d, got %d", c.maxAttempts, session.Attempts)
	}

	if validate.Var(session.Makes, fmt.Sprintf("gte=0,lte=%d", session.Attempts)) != nil {
		return invalid("makes must be between 0 and attempts (%d), got %d", session.Attempts, session.Makes)
	}

	if session.LongestMakeStreak != nil {
		if validate.Var(*session.LongestMakeStreak, fmt.Sprintf("gte=0,lte=%d", session.Makes)) != nil {
			return invalid("longestMakeStreak must be between 0 and makes (%d), got %d", session.Makes, *session.LongestMakeStreak)
		}
	}

	return nil
}

// ComputePoints scores a practice session
//
// points = makes * (distance / 10) * (makes / attempts) * 10 = makes² * distance / attempts
//
// NOTE: The accuracy term is a fraction, not a percentage. Whether this is the intended
// game balance is an open product question, see DESIGN.md.
func ComputePoints(cfg ScoringConfig, session PracticeSession) (decimal.Decimal, error) {
	if err := cfg.ValidateSession(session); err != nil {
		return decimal.Zero, err
	}

	makes := decimal.NewFromInt(int64(session.Makes))
	attempts := decimal.NewFromInt(int64(session.Attempts))
	distance := decimal.NewFromFloat(session.DistanceFeet)

	return makes.Mul(makes).Mul(distance).Div(attempts), nil
}

// DisplayPoints rounds points to the nearest integer, halves away from zero
func DisplayPoints(points decimal.Decimal) int64 {
	return points.Round(0).IntPart()
}
