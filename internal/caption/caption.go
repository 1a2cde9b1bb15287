// Package caption normalizes post caption text.
package caption

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"postgrab/internal/domain"
)

var (
	viewAllRegex    = regexp.MustCompile(`(?is)View all.*$`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

const ellipsis = "..."

// Policy controls caption truncation. A MaxLength of zero or less disables it.
type Policy struct {
	MaxLength int
}

// Apply truncates text to MaxLength characters followed by an ellipsis when
// it is longer than the limit. Shorter text is returned unchanged.
func (p Policy) Apply(text string) string {
	if p.MaxLength <= 0 || utf8.RuneCountInString(text) <= p.MaxLength {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:p.MaxLength])) + ellipsis
}

// Normalize cleans caption text scraped from the embed view. The first line
// always echoes the author and is dropped; the remaining lines are joined with
// spaces, a trailing "View all ..." comments hint is removed and whitespace is
// collapsed before the policy is applied. An empty result becomes the
// default caption.
func Normalize(raw string, p Policy) string {
	lines := strings.Split(raw, "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}

	text := strings.TrimSpace(strings.Join(lines, " "))
	text = viewAllRegex.ReplaceAllString(text, "")
	text = strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
	if text == "" {
		return domain.DefaultCaption
	}

	return p.Apply(text)
}
