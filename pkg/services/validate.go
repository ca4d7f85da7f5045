package services

import (
	"strings"
	"unicode/utf8"

	"github.com/worknest/worknest-engine/pkg/apperrors"
)

// requireLength trims s and checks its length in characters.
func requireLength(field, s string, min, max int) (string, error) {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	switch {
	case n < min:
		return "", apperrors.Validation("%s must be at least %d characters", field, min)
	case n > max:
		return "", apperrors.Validation("%s must be at most %d characters", field, max)
	}
	return s, nil
}

// optionalText trims an optional free-text field. Blank becomes nil.
func optionalText(field string, s *string, max int) (*string, error) {
	if s == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > max {
		return nil, apperrors.Validation("%s must be at most %d characters", field, max)
	}
	return &trimmed, nil
}
