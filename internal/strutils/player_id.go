package strutils

import (
	"fmt"
	"strings"
)

const MAX_ID_LENGTH = 128

func isIDChar(char rune) bool {
	return (char >= 'a' && char <= 'z') ||
		(char >= 'A' && char <= 'Z') ||
		(char >= '0' && char <= '9') ||
		char == '-' || char == '_'
}

// Trims surrounding whitespace and checks that the id is 1-128 characters of [A-Za-z0-9_-]
//
// Ids are case sensitive and are otherwise returned unchanged.
func NormalizeID(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", fmt.Errorf("id is empty")
	}
	if len(trimmed) > MAX_ID_LENGTH {
		return "", fmt.Errorf("id is longer than %d characters. input: '%s'", MAX_ID_LENGTH, id)
	}
	for _, char := range trimmed {
		if !isIDChar(char) {
			return "", fmt.Errorf("invalid character in id. input: '%s'", id)
		}
	}
	return trimmed, nil
}

func IDIsNormalized(id string) bool {
	normalized, err := NormalizeID(id)
	return err == nil && normalized == id
}
