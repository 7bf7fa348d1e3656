package achievementfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/puttlog/puttlog/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type fileDefinition struct {
	ID          string  `json:"id" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Requirement float64 `json:"requirement" validate:"gte=0"`
}

// Load reads an array of achievement definitions from the JSON file at path
func Load(path string) ([]domain.AchievementDefinition, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open achievements file: %w", err)
	}
	defer file.Close()

	definitions, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse achievements file %s: %w", path, err)
	}
	return definitions, nil
}

// Parse decodes an array of achievement definitions
func Parse(r io.Reader) ([]domain.AchievementDefinition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	var raw []fileDefinition
	err = decoder.Decode(&raw)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode definitions: %w", domain.ErrInvalidCatalog, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: expected an array of definitions", domain.ErrInvalidCatalog)
	}

	definitions := make([]domain.AchievementDefinition, 0, len(raw))
	for i, definition := range raw {
		err := validate.Struct(definition)
		if err != nil {
			return nil, fmt.Errorf("%w: definition #%d (%q): %w", domain.ErrInvalidCatalog, i, definition.ID, err)
		}
		definitions = append(definitions, domain.AchievementDefinition{
			ID:          definition.ID,
			Name:        definition.Name,
			Description: definition.Description,
			Icon:        definition.Icon,
			Requirement: definition.Requirement,
		})
	}

	return definitions, nil
}
