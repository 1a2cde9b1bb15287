package domain_test

import (
	"errors"
	"testing"

	"postgrab/internal/domain"
)

func TestParseReference_FullURLs_ExtractSegmentAfterMarker(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"post with trailing slash", "https://www.instagram.com/p/C8xYz12AbCd/", "C8xYz12AbCd"},
		{"post without trailing slash", "https://www.instagram.com/p/C8xYz12AbCd", "C8xYz12AbCd"},
		{"post with query", "https://www.instagram.com/p/C8xYz12AbCd?igsh=abc123", "C8xYz12AbCd"},
		{"post with fragment", "https://instagram.com/p/C8xYz12AbCd#comments", "C8xYz12AbCd"},
		{"post under user path", "https://www.instagram.com/alice/p/C8xYz12AbCd/", "C8xYz12AbCd"},
		{"reel", "https://www.instagram.com/reel/DAbc_-123/", "DAbc_-123"},
		{"reels", "https://www.instagram.com/reels/DAbc_-123/", "DAbc_-123"},
		{"tv", "https://www.instagram.com/tv/B1234567/", "B1234567"},
		{"surrounding whitespace", "  https://www.instagram.com/p/XYZ/  ", "XYZ"},
		{"path without scheme", "instagram.com/p/XYZ/embed", "XYZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			ref, err := domain.ParseReference(tt.input)

			// Assert
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ref.Code != tt.want {
				t.Errorf("Code: got %q, want %q", ref.Code, tt.want)
			}
			if ref.Link == "" {
				t.Error("Link should keep the original URL")
			}
		})
	}
}

func TestParseReference_BareCode_ReturnedUnchanged(t *testing.T) {
	for _, code := range []string{"C8xYz12AbCd", "abc", "A_b-C"} {
		// Act
		ref, err := domain.ParseReference(code)

		// Assert
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", code, err)
		}
		if ref.Code != code {
			t.Errorf("Code: got %q, want %q", ref.Code, code)
		}
		if ref.Link != "" {
			t.Errorf("Link: got %q, want empty for bare code", ref.Link)
		}
	}
}

func TestParseReference_InvalidInput_ReturnsErrInvalidLink(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"https://www.instagram.com/p/",
		"https://www.instagram.com/p/?x=1",
		"https://www.instagram.com/alice/",
	}

	for _, input := range inputs {
		// Act
		_, err := domain.ParseReference(input)

		// Assert
		if !errors.Is(err, domain.ErrInvalidLink) {
			t.Errorf("input %q: got %v, want ErrInvalidLink", input, err)
		}
	}
}

func TestPostReference_EmbedURL(t *testing.T) {
	tests := []struct {
		name string
		ref  domain.PostReference
		want string
	}{
		{
			name: "link with trailing slash",
			ref:  domain.PostReference{Code: "XYZ", Link: "https://www.instagram.com/p/XYZ/"},
			want: "https://www.instagram.com/p/XYZ/embed/captioned",
		},
		{
			name: "link without trailing slash",
			ref:  domain.PostReference{Code: "XYZ", Link: "https://www.instagram.com/p/XYZ"},
			want: "https://www.instagram.com/p/XYZ/embed/captioned",
		},
		{
			name: "link with query string",
			ref:  domain.PostReference{Code: "XYZ", Link: "https://www.instagram.com/reel/XYZ/?igsh=1"},
			want: "https://www.instagram.com/reel/XYZ/embed/captioned",
		},
		{
			name: "bare code",
			ref:  domain.PostReference{Code: "XYZ"},
			want: "https://www.instagram.com/p/XYZ/embed/captioned",
		},
		{
			name: "link without scheme",
			ref:  domain.PostReference{Code: "XYZ", Link: "instagram.com/p/XYZ/embed"},
			want: "https://www.instagram.com/p/XYZ/embed/captioned",
		},
		{
			name: "link already on embed view",
			ref:  domain.PostReference{Code: "XYZ", Link: "https://www.instagram.com/p/XYZ/embed"},
			want: "https://www.instagram.com/p/XYZ/embed/captioned",
		},
		{
			name: "link already on captioned embed view",
			ref:  domain.PostReference{Code: "XYZ", Link: "https://www.instagram.com/reel/XYZ/embed/captioned/"},
			want: "https://www.instagram.com/reel/XYZ/embed/captioned",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ref.EmbedURL(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
