package hub

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNameTaken is returned when an online connection already holds the
	// requested display name. Recoverable: the caller may retry with a
	// different name.
	ErrNameTaken = errors.New("display name already in use")

	// ErrNotJoined is returned for commands that require a completed join.
	ErrNotJoined = errors.New("connection has not joined")

	// ErrPayloadInvalid is returned for commands with a malformed shape.
	// These fail closed: no state change, no broadcast.
	ErrPayloadInvalid = errors.New("invalid payload")
)

const (
	minNameLen = 2
	maxNameLen = 20
)

// forbiddenNameChars are rejected to keep names safe to echo into markup.
const forbiddenNameChars = `<>/"\&`

// ValidateDisplayName checks the shape constraints on a display name:
// 2-20 runes, none of < > / " \ &. Surrounding whitespace is deliberately
// not trimmed; the caller owns normalization.
func ValidateDisplayName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < minNameLen || n > maxNameLen {
		return fmt.Errorf("display name must be %d-%d characters: %w", minNameLen, maxNameLen, ErrPayloadInvalid)
	}
	if strings.ContainsAny(name, forbiddenNameChars) {
		return fmt.Errorf("display name contains forbidden characters: %w", ErrPayloadInvalid)
	}
	return nil
}
