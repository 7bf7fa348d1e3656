package app

import (
	"context"
	"fmt"

	"github.com/puttlog/puttlog/internal/domain"
	"github.com/puttlog/puttlog/internal/logging"
	"github.com/puttlog/puttlog/internal/reporting"
)

// BuildAchievementCatalog binds the definitions to the built-in rules.
//
// Definitions without a rule are logged, reported and left out of the catalog.
func BuildAchievementCatalog(ctx context.Context, definitions []domain.AchievementDefinition) (domain.AchievementCatalog, error) {
	catalog, skipped, err := domain.BindAchievementCatalog(definitions, domain.DefaultAchievementRules())
	if err != nil {
		return domain.AchievementCatalog{}, fmt.Errorf("failed to bind achievement catalog: %w", err)
	}

	for _, skippedErr := range skipped {
		logging.FromContext(ctx).ErrorContext(ctx, "Skipping achievement definition", "error", skippedErr)
		reporting.Report(ctx, skippedErr)
	}

	if catalog.Len() == 0 {
		return domain.AchievementCatalog{}, fmt.Errorf("%w: no definition could be bound", domain.ErrInvalidCatalog)
	}

	return catalog, nil
}
