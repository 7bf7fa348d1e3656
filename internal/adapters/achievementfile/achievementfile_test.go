package achievementfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/puttlog/puttlog/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		definitions, err := Parse(strings.NewReader(`[
			{"id": "point_king", "name": "Point King", "description": "Earn 5000 points", "icon": "crown", "requirement": 5000},
			{"id": "first_putt", "name": "First Putt", "requirement": 1}
		]`))
		require.NoError(t, err)
		require.Equal(t, []domain.AchievementDefinition{
			{ID: "point_king", Name: "Point King", Description: "Earn 5000 points", Icon: "crown", Requirement: 5000},
			{ID: "first_putt", Name: "First Putt", Requirement: 1},
		}, definitions)
	})

	t.Run("empty array", func(t *testing.T) {
		t.Parallel()

		definitions, err := Parse(strings.NewReader(`[]`))
		require.NoError(t, err)
		require.Empty(t, definitions)
	})

	invalid := []struct {
		name  string
		input string
	}{
		{"not json", `{`},
		{"object instead of array", `{"id": "x"}`},
		{"null", `null`},
		{"missing id", `[{"name": "No id", "requirement": 1}]`},
		{"missing name", `[{"id": "no_name", "requirement": 1}]`},
		{"negative requirement", `[{"id": "x", "name": "X", "requirement": -1}]`},
		{"unknown field", `[{"id": "x", "name": "X", "requirement": 1, "rule": "sessions"}]`},
		{"string requirement", `[{"id": "x", "name": "X", "requirement": "1"}]`},
	}
	for _, c := range invalid {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse(strings.NewReader(c.input))
			require.ErrorIs(t, err, domain.ErrInvalidCatalog)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("from file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "achievements.json")
		err := os.WriteFile(path, []byte(`[{"id": "hot_hand", "name": "Hot Hand", "requirement": 15}]`), 0o600)
		require.NoError(t, err)

		definitions, err := Load(path)
		require.NoError(t, err)
		require.Len(t, definitions, 1)
		require.Equal(t, "hot_hand", definitions[0].ID)
		require.Equal(t, 15.0, definitions[0].Requirement)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}
