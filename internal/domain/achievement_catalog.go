package domain

import (
	"fmt"
	"math"
)

type boundAchievement struct {
	definition AchievementDefinition
	rule       AchievementRule
}

// AchievementCatalog is the immutable set of achievements that can be unlocked
type AchievementCatalog struct {
	entries []boundAchievement
	byID    map[string]int
}

// BindAchievementCatalog pairs each definition with the rule for its id.
//
// Definitions without a rule are skipped: one error wrapping ErrUnknownAchievementID is
// returned per skipped definition. Malformed definitions (empty or duplicate ids, invalid
// requirements) and unsupported rules fail the whole catalog with ErrInvalidCatalog.
func BindAchievementCatalog(definitions []AchievementDefinition, rules map[string]AchievementRule) (AchievementCatalog, []error, error) {
	catalog := AchievementCatalog{
		entries: make([]boundAchievement, 0, len(definitions)),
		byID:    make(map[string]int, len(definitions)),
	}
	skipped := []error{}
	seen := make(map[string]bool, len(definitions))

	for _, definition := range definitions {
		if definition.ID == "" {
			return AchievementCatalog{}, nil, fmt.Errorf("%w: definition with empty id (name: %q)", ErrInvalidCatalog, definition.Name)
		}
		if seen[definition.ID] {
			return AchievementCatalog{}, nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidCatalog, definition.ID)
		}
		seen[definition.ID] = true

		if definition.Requirement < 0 || math.IsNaN(definition.Requirement) || math.IsInf(definition.Requirement, 0) {
			return AchievementCatalog{}, nil, fmt.Errorf("%w: requirement for %s must be a non-negative number, got %v", ErrInvalidCatalog, definition.ID, definition.Requirement)
		}

		rule, ok := rules[definition.ID]
		if !ok || rule == nil {
			skipped = append(skipped, fmt.Errorf("%w: %s", ErrUnknownAchievementID, definition.ID))
			continue
		}
		if err := validateRule(rule); err != nil {
			return AchievementCatalog{}, nil, fmt.Errorf("%w: rule for %s: %w", ErrInvalidCatalog, definition.ID, err)
		}

		catalog.byID[definition.ID] = len(catalog.entries)
		catalog.entries = append(catalog.entries, boundAchievement{
			definition: definition,
			rule:       rule,
		})
	}

	return catalog, skipped, nil
}

// Only the value rule types are evaluated, so pointers and unknown fields are rejected here
func validateRule(rule AchievementRule) error {
	switch rule := rule.(type) {
	case StatThreshold:
		if _, ok := statValue(PlayerStats{}, rule.Field); !ok {
			return fmt.Errorf("unknown stat field %q", rule.Field)
		}
		if rule.Comparison != AtLeast && rule.Comparison != AtMost {
			return fmt.Errorf("unknown comparison %d", rule.Comparison)
		}
		return nil
	case SessionThreshold:
		if _, ok := sessionValue(ScoredSession{}, rule.Value); !ok {
			return fmt.Errorf("unknown session value %q", rule.Value)
		}
		return nil
	case StreakLength:
		if rule.Streak != StreakPracticeDays && rule.Streak != StreakConsecutiveMakes {
			return fmt.Errorf("unknown streak %q", rule.Streak)
		}
		return nil
	default:
		return fmt.Errorf("unsupported rule type %T", rule)
	}
}

// Definitions returns the bound definitions in catalog order
func (c AchievementCatalog) Definitions() []AchievementDefinition {
	definitions := make([]AchievementDefinition, 0, len(c.entries))
	for _, entry := range c.entries {
		definitions = append(definitions, entry.definition)
	}
	return definitions
}

func (c AchievementCatalog) Lookup(id string) (AchievementDefinition, bool) {
	index, ok := c.byID[id]
	if !ok {
		return AchievementDefinition{}, false
	}
	return c.entries[index].definition, true
}

func (c AchievementCatalog) Len() int {
	return len(c.entries)
}

func DefaultAchievementDefinitions() []AchievementDefinition {
	return []AchievementDefinition{
		{ID: "first_putt", Name: "First Putt", Description: "Log your first practice session", Icon: "flag", Requirement: 1},
		{ID: "century_club", Name: "Century Club", Description: "Score 100 points in a single session", Icon: "trophy", Requirement: 100},
		{ID: "perfect_round", Name: "Perfect Round", Description: "Make every putt in a session", Icon: "target", Requirement: 100},
		{ID: "long_bomb", Name: "Long Bomb", Description: "Make a putt from 50 feet or more", Icon: "rocket", Requirement: 50},
		{ID: "point_king", Name: "Point King", Description: "Earn 1000 points in total", Icon: "crown", Requirement: 1000},
		{ID: "dedicated", Name: "Dedicated", Description: "Practice 7 days in a row", Icon: "calendar", Requirement: 7},
		{ID: "iron_will", Name: "Iron Will", Description: "Practice 30 days in a row", Icon: "shield", Requirement: 30},
		{ID: "hot_hand", Name: "Hot Hand", Description: "Make 10 putts in a row", Icon: "flame", Requirement: 10},
		{ID: "social_butterfly", Name: "Social Butterfly", Description: "Add 5 friends", Icon: "people", Requirement: 5},
		{ID: "top_ten", Name: "Top Ten", Description: "Reach the top 10 of the leaderboard", Icon: "podium", Requirement: 10},
		{ID: "challenger", Name: "Challenger", Description: "Complete 10 challenges", Icon: "medal", Requirement: 10},
	}
}

func DefaultAchievementRules() map[string]AchievementRule {
	return map[string]AchievementRule{
		"first_putt":       StatThreshold{Field: StatSessionsLogged, Comparison: AtLeast},
		"century_club":     SessionThreshold{Value: SessionPoints},
		"perfect_round":    SessionThreshold{Value: SessionAccuracyPercent},
		"long_bomb":        SessionThreshold{Value: SessionMadeDistanceFeet},
		"point_king":       StatThreshold{Field: StatTotalPoints, Comparison: AtLeast},
		"dedicated":        StreakLength{Streak: StreakPracticeDays},
		"iron_will":        StreakLength{Streak: StreakPracticeDays},
		"hot_hand":         StreakLength{Streak: StreakConsecutiveMakes},
		"social_butterfly": StatThreshold{Field: StatFriendCount, Comparison: AtLeast},
		"top_ten":          StatThreshold{Field: StatBestLeaderboardRank, Comparison: AtMost},
		"challenger":       StatThreshold{Field: StatChallengesCompleted, Comparison: AtLeast},
	}
}
