package session

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"fiveinrow/internal/match"
)

const (
	MinNameLength = 2
	MaxNameLength = 20
)

var (
	ErrInvalidName     = errors.New("invalid player name")
	ErrSessionNotFound = errors.New("session not found")
)

// NormalizeName trims name and collapses inner whitespace runs to one space.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// ValidateName normalizes name and checks its length in characters.
func ValidateName(name string) (string, error) {
	n := NormalizeName(name)
	l := utf8.RuneCountInString(n)
	if l < MinNameLength || l > MaxNameLength {
		return "", fmt.Errorf("%w: %q must be %d to %d characters", ErrInvalidName, n, MinNameLength, MaxNameLength)
	}
	return n, nil
}

// ValidatePlayers validates both names. Identical names are allowed.
func ValidatePlayers(p match.Players) (match.Players, error) {
	x, errX := ValidateName(p.XName)
	o, errO := ValidateName(p.OName)
	if err := errors.Join(errX, errO); err != nil {
		return match.Players{}, err
	}
	return match.Players{XName: x, OName: o}, nil
}
