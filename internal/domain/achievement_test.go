package domain_test

import (
	"testing"
	"time"

	"github.com/puttlog/puttlog/internal/domain"
	"github.com/puttlog/puttlog/internal/domaintest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func defaultCatalog(t *testing.T) domain.AchievementCatalog {
	t.Helper()

	catalog, skipped, err := domain.BindAchievementCatalog(domain.DefaultAchievementDefinitions(), domain.DefaultAchievementRules())
	require.NoError(t, err)
	require.Empty(t, skipped)
	return catalog
}

func ids(definitions []domain.AchievementDefinition) []string {
	result := make([]string, 0, len(definitions))
	for _, definition := range definitions {
		result = append(result, definition.ID)
	}
	return result
}

func TestEvaluateAchievements(t *testing.T) {
	t.Parallel()

	catalog := defaultCatalog(t)
	playerID := domaintest.NewPlayerID(t)
	now := time.Date(2025, time.March, 14, 9, 0, 0, 0, time.UTC)

	t.Run("point king at 1000 total points", func(t *testing.T) {
		t.Parallel()

		stats := domaintest.NewStatsBuilder(playerID).WithTotalPoints(1000).Build()

		unlocked := domain.EvaluateAchievements(catalog, domain.AchievementSnapshot{Stats: stats}, domain.NewAchievementIDSet())
		require.Contains(t, ids(unlocked), "point_king")
	})

	t.Run("point king not below 1000", func(t *testing.T) {
		t.Parallel()

		stats := domaintest.NewStatsBuilder(playerID).WithTotalPoints(999).Build()

		unlocked := domain.EvaluateAchievements(catalog, domain.AchievementSnapshot{Stats: stats}, domain.NewAchievementIDSet())
		require.NotContains(t, ids(unlocked), "point_king")
	})

	t.Run("empty stats unlock nothing", func(t *testing.T) {
		t.Parallel()

		unlocked := domain.EvaluateAchievements(catalog, domain.AchievementSnapshot{Stats: domain.NewPlayerStats(playerID)}, domain.NewAchievementIDSet())
		require.Empty(t, unlocked)
		require.NotNil(t, unlocked)
	})

	t.Run("re-evaluation is idempotent", func(t *testing.T) {
		t.Parallel()

		session := domaintest.NewSessionBuilder().WithDistance(50).WithAttempts(10).WithMakes(10).Scored("s", playerID, now)
		stats := domaintest.NewStatsBuilder(playerID).
			WithTotalPoints(1500).
			WithSessionsLogged(4).
			WithStreak(7, now).
			WithLongestMakeStreak(10).
			WithFriendCount(5).
			WithBestLeaderboardRank(2).
			WithChallengesCompleted(10).
			Build()
		snapshot := domain.AchievementSnapshot{Stats: stats, Session: &session}

		first := domain.EvaluateAchievements(catalog, snapshot, domain.NewAchievementIDSet())
		require.Equal(t, []string{
			"first_putt",
			"century_club",
			"perfect_round",
			"long_bomb",
			"point_king",
			"dedicated",
			"hot_hand",
			"social_butterfly",
			"top_ten",
			"challenger",
		}, ids(first))

		second := domain.EvaluateAchievements(catalog, snapshot, domain.NewAchievementIDSet(ids(first)...))
		require.Empty(t, second)
	})

	t.Run("already unlocked are skipped", func(t *testing.T) {
		t.Parallel()

		stats := domaintest.NewStatsBuilder(playerID).WithTotalPoints(1000).WithSessionsLogged(1).Build()

		unlocked := domain.EvaluateAchievements(catalog, domain.AchievementSnapshot{Stats: stats}, domain.NewAchievementIDSet("first_putt"))
		require.Equal(t, []string{"point_king"}, ids(unlocked))
	})

	t.Run("session rules need a session", func(t *testing.T) {
		t.Parallel()

		stats := domaintest.NewStatsBuilder(playerID).WithTotalPoints(500).WithSessionsLogged(1).Build()

		unlocked := domain.EvaluateAchievements(catalog, domain.AchievementSnapshot{Stats: stats}, domain.NewAchievementIDSet("first_putt"))
		require.Empty(t, unlocked)
	})

	t.Run("session rules", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			name     string
			session  domain.ScoredSession
			expected []string
		}{
			{
				// 100 * 10 / 10
				name:     "exactly 100 points",
				session:  domaintest.NewSessionBuilder().WithDistance(10).WithAttempts(10).WithMakes(10).Scored("s", playerID, now),
				expected: []string{"century_club", "perfect_round"},
			},
			{
				// 81 * 10 / 10
				name:     "81 points",
				session:  domaintest.NewSessionBuilder().WithDistance(10).WithAttempts(10).WithMakes(9).Scored("s", playerID, now),
				expected: []string{},
			},
			{
				// 1 * 60 / 10
				name:     "one long make",
				session:  domaintest.NewSessionBuilder().WithDistance(60).WithAttempts(10).WithMakes(1).Scored("s", playerID, now),
				expected: []string{"long_bomb"},
			},
			{
				name:     "long misses",
				session:  domaintest.NewSessionBuilder().WithDistance(60).WithAttempts(10).WithMakes(0).Scored("s", playerID, now),
				expected: []string{},
			},
		}

		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				t.Parallel()

				stats := domaintest.NewStatsBuilder(playerID).WithSessionsLogged(1).Build()
				snapshot := domain.AchievementSnapshot{Stats: stats, Session: &c.session}

				unlocked := domain.EvaluateAchievements(catalog, snapshot, domain.NewAchievementIDSet("first_putt"))
				require.Equal(t, c.expected, ids(unlocked))
			})
		}
	})

	t.Run("session rules match stored bests", func(t *testing.T) {
		t.Parallel()

		stats := domaintest.NewStatsBuilder(playerID).WithSessionsLogged(3).Build()
		bests := domain.SessionBests{}.
			Include(domaintest.NewSessionBuilder().WithDistance(10).WithAttempts(10).WithMakes(10).Build(), decimal.NewFromInt(100)).
			Include(domaintest.NewSessionBuilder().WithDistance(30).WithAttempts(10).WithMakes(2).Build(), decimal.NewFromInt(12))

		unlocked := domain.EvaluateAchievements(catalog, domain.AchievementSnapshot{Stats: stats, Bests: &bests}, domain.NewAchievementIDSet("first_putt"))
		require.Equal(t, []string{"century_club", "perfect_round"}, ids(unlocked))

		bests = bests.Include(domaintest.NewSessionBuilder().WithDistance(55).WithAttempts(10).WithMakes(1).Build(), decimal.RequireFromString("5.5"))
		require.True(t, decimal.NewFromInt(100).Equal(bests.Points))

		unlocked = domain.EvaluateAchievements(catalog, domain.AchievementSnapshot{Stats: stats, Bests: &bests}, domain.NewAchievementIDSet("first_putt"))
		require.Equal(t, []string{"century_club", "perfect_round", "long_bomb"}, ids(unlocked))
	})

	t.Run("practice day streaks use the longest streak", func(t *testing.T) {
		t.Parallel()

		// A seven day streak that has since been broken
		stats := domaintest.NewStatsBuilder(playerID).WithStreak(7, now.AddDate(0, 0, -5)).Build().AsOf(now)
		require.Equal(t, 0, stats.CurrentStreakDays)

		unlocked := domain.EvaluateAchievements(catalog, domain.AchievementSnapshot{Stats: stats}, domain.NewAchievementIDSet())
		require.Equal(t, []string{"dedicated"}, ids(unlocked))
	})

	t.Run("unranked players are not top ten", func(t *testing.T) {
		t.Parallel()

		unranked := domaintest.NewStatsBuilder(playerID).WithBestLeaderboardRank(0).Build()
		unlocked := domain.EvaluateAchievements(catalog, domain.AchievementSnapshot{Stats: unranked}, domain.NewAchievementIDSet())
		require.NotContains(t, ids(unlocked), "top_ten")

		eleventh := domaintest.NewStatsBuilder(playerID).WithBestLeaderboardRank(11).Build()
		unlocked = domain.EvaluateAchievements(catalog, domain.AchievementSnapshot{Stats: eleventh}, domain.NewAchievementIDSet())
		require.NotContains(t, ids(unlocked), "top_ten")

		tenth := domaintest.NewStatsBuilder(playerID).WithBestLeaderboardRank(10).Build()
		unlocked = domain.EvaluateAchievements(catalog, domain.AchievementSnapshot{Stats: tenth}, domain.NewAchievementIDSet())
		require.Contains(t, ids(unlocked), "top_ten")
	})

	t.Run("streaks", func(t *testing.T) {
		t.Parallel()

		stats := domaintest.NewStatsBuilder(playerID).WithStreak(30, now).WithLongestMakeStreak(9).Build()

		unlocked := domain.EvaluateAchievements(catalog, domain.AchievementSnapshot{Stats: stats}, domain.NewAchievementIDSet())
		require.Equal(t, []string{"dedicated", "iron_will"}, ids(unlocked))
	})

	t.Run("requirement comes from the definition", func(t *testing.T) {
		t.Parallel()

		custom, skipped, err := domain.BindAchievementCatalog(
			[]domain.AchievementDefinition{
				{ID: "point_king", Name: "Point King", Requirement: 50},
			},
			domain.DefaultAchievementRules(),
		)
		require.NoError(t, err)
		require.Empty(t, skipped)

		stats := domaintest.NewStatsBuilder(playerID).WithTotalPoints(50).Build()
		unlocked := domain.EvaluateAchievements(custom, domain.AchievementSnapshot{Stats: stats}, domain.NewAchievementIDSet())
		require.Equal(t, []string{"point_king"}, ids(unlocked))
	})
}

func TestBindAchievementCatalog(t *testing.T) {
	t.Parallel()

	t.Run("default catalog binds every definition", func(t *testing.T) {
		t.Parallel()

		catalog := defaultCatalog(t)
		require.Equal(t, len(domain.DefaultAchievementDefinitions()), catalog.Len())
		require.Equal(t, domain.DefaultAchievementDefinitions(), catalog.Definitions())

		definition, ok := catalog.Lookup("point_king")
		require.True(t, ok)
		require.Equal(t, "Point King", definition.Name)

		_, ok = catalog.Lookup("missing")
		require.False(t, ok)
	})

	t.Run("unknown ids are skipped", func(t *testing.T) {
		t.Parallel()

		definitions := []domain.AchievementDefinition{
			{ID: "point_king", Name: "Point King", Requirement: 1000},
			{ID: "eagle_eye", Name: "Eagle Eye", Requirement: 3},
			{ID: "first_putt", Name: "First Putt", Requirement: 1},
		}

		catalog, skipped, err := domain.BindAchievementCatalog(definitions, domain.DefaultAchievementRules())
		require.NoError(t, err)
		require.Len(t, skipped, 1)
		require.ErrorIs(t, skipped[0], domain.ErrUnknownAchievementID)
		require.Contains(t, skipped[0].Error(), "eagle_eye")

		require.Equal(t, []string{"point_king", "first_putt"}, ids(catalog.Definitions()))

		// Skipped definitions are never unlocked
		stats := domaintest.NewStatsBuilder("player").WithTotalPoints(5000).WithSessionsLogged(100).Build()
		unlocked := domain.EvaluateAchievements(catalog, domain.AchievementSnapshot{Stats: stats}, domain.NewAchievementIDSet())
		require.Equal(t, []string{"point_king", "first_putt"}, ids(unlocked))
	})

	t.Run("invalid catalogs", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			name        string
			definitions []domain.AchievementDefinition
		}{
			{
				name:        "empty id",
				definitions: []domain.AchievementDefinition{{ID: "", Name: "Nameless"}},
			},
			{
				name: "duplicate id",
				definitions: []domain.AchievementDefinition{
					{ID: "point_king", Requirement: 1000},
					{ID: "point_king", Requirement: 2000},
				},
			},
			{
				name:        "negative requirement",
				definitions: []domain.AchievementDefinition{{ID: "point_king", Requirement: -1}},
			},
		}

		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				t.Parallel()

				_, _, err := domain.BindAchievementCatalog(c.definitions, domain.DefaultAchievementRules())
				require.ErrorIs(t, err, domain.ErrInvalidCatalog)
			})
		}
	})

	t.Run("unsupported rules", func(t *testing.T) {
		t.Parallel()

		definitions := []domain.AchievementDefinition{{ID: "custom", Name: "Custom", Requirement: 1}}

		cases := []struct {
			name string
			rule domain.AchievementRule
		}{
			{name: "pointer stat threshold", rule: &domain.StatThreshold{Field: domain.StatTotalPoints, Comparison: domain.AtLeast}},
			{name: "pointer session threshold", rule: &domain.SessionThreshold{Value: domain.SessionPoints}},
			{name: "pointer streak", rule: &domain.StreakLength{Streak: domain.StreakPracticeDays}},
			{name: "unknown stat field", rule: domain.StatThreshold{Field: "wins", Comparison: domain.AtLeast}},
			{name: "unknown comparison", rule: domain.StatThreshold{Field: domain.StatTotalPoints, Comparison: domain.Comparison(7)}},
			{name: "unknown session value", rule: domain.SessionThreshold{Value: "birdies"}},
			{name: "unknown streak", rule: domain.StreakLength{Streak: "weeks"}},
		}

		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				t.Parallel()

				_, _, err := domain.BindAchievementCatalog(definitions, map[string]domain.AchievementRule{"custom": c.rule})
				require.ErrorIs(t, err, domain.ErrInvalidCatalog)
			})
		}
	})
}
