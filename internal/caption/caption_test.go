package caption_test

import (
	"strings"
	"testing"

	"postgrab/internal/caption"
	"postgrab/internal/domain"
)

func TestNormalize_DropsAuthorLineAndViewAllHint(t *testing.T) {
	// Arrange
	raw := "alice\nhello world\nView all 12 comments"

	// Act
	got := caption.Normalize(raw, caption.Policy{})

	// Assert
	if got != "hello world" {
		t.Errorf("got %q, want %q", got, "hello world")
	}
}

func TestNormalize_CollapsesWhitespaceAcrossLines(t *testing.T) {
	raw := "alice\n  sunny   day\n\n\tat the\tbeach  \n"

	got := caption.Normalize(raw, caption.Policy{})

	if got != "sunny day at the beach" {
		t.Errorf("got %q", got)
	}
}

func TestNormalize_ViewAllIsCaseInsensitive(t *testing.T) {
	got := caption.Normalize("bob\nnice shot VIEW ALL 3 comments\nmore", caption.Policy{})

	if got != "nice shot" {
		t.Errorf("got %q, want %q", got, "nice shot")
	}
}

func TestNormalize_OnlyAuthorLine_ReturnsDefault(t *testing.T) {
	for _, raw := range []string{"", "alice", "alice\n", "alice\nView all 4 comments"} {
		if got := caption.Normalize(raw, caption.Policy{}); got != domain.DefaultCaption {
			t.Errorf("raw %q: got %q, want %q", raw, got, domain.DefaultCaption)
		}
	}
}

func TestNormalize_AppliesPolicy(t *testing.T) {
	raw := "alice\nthis caption is definitely longer than twenty five characters"

	got := caption.Normalize(raw, caption.Policy{MaxLength: 25})

	if got != "this caption is definitel..." {
		t.Errorf("got %q", got)
	}
}

func TestPolicy_Apply(t *testing.T) {
	tests := []struct {
		name   string
		policy caption.Policy
		text   string
		want   string
	}{
		{"disabled", caption.Policy{}, strings.Repeat("a", 100), strings.Repeat("a", 100)},
		{"under limit", caption.Policy{MaxLength: 10}, "short", "short"},
		{"at limit", caption.Policy{MaxLength: 5}, "exact", "exact"},
		{"over limit", caption.Policy{MaxLength: 5}, "exactly", "exact..."},
		{"trailing space trimmed before ellipsis", caption.Policy{MaxLength: 6}, "hello world", "hello..."},
		{"counts characters not bytes", caption.Policy{MaxLength: 3}, "ñañaña", "ñañ..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Apply(tt.text); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
