package app

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type appMetricsCollection struct {
	sessionsLogged       metric.Int64Counter
	pointsAwarded        metric.Float64Counter
	achievementsUnlocked metric.Int64Counter
}

var metrics appMetricsCollection

func init() {
	const name = "puttlog/app"
	meter := otel.Meter(name)

	sessionsLogged, err := meter.Int64Counter(
		"app/sessions_logged",
		metric.WithDescription("Total number of practice sessions logged"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create sessions logged metric: %w", err))
	}

	pointsAwarded, err := meter.Float64Counter(
		"app/points_awarded",
		metric.WithDescription("Total number of points awarded for logged sessions"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create points awarded metric: %w", err))
	}

	achievementsUnlocked, err := meter.Int64Counter(
		"app/achievements_unlocked",
		metric.WithDescription("Total number of achievements unlocked"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create achievements unlocked metric: %w", err))
	}

	metrics = appMetricsCollection{
		sessionsLogged:       sessionsLogged,
		pointsAwarded:        pointsAwarded,
		achievementsUnlocked: achievementsUnlocked,
	}
}
