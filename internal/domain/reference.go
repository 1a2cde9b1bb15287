package domain

import (
	"regexp"
	"strings"
)

// postPathRegex finds the first post-path marker (/p/, /reel/, /reels/, /tv/)
// and captures the segment after it up to the next path, query or fragment
// delimiter.
var postPathRegex = regexp.MustCompile(`/(?:p|reels?|tv)/([^/?#]*)`)

const postBaseURL = "https://www.instagram.com/p/"

// PostReference identifies a single post.
type PostReference struct {
	Code string // canonical shortcode, never empty
	Link string // original link, empty when the caller passed a bare code
}

// ParseReference extracts the post shortcode from a full post URL or accepts
// the input as a bare code. The code shape is not validated; an unknown code
// surfaces later as ErrPostNotFound.
func ParseReference(input string) (PostReference, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return PostReference{}, ErrInvalidLink
	}

	if m := postPathRegex.FindStringSubmatch(input); m != nil {
		if m[1] == "" {
			return PostReference{}, ErrInvalidLink
		}
		return PostReference{Code: m[1], Link: input}, nil
	}

	if strings.Contains(input, "://") {
		// A URL without a post marker is not a post.
		return PostReference{}, ErrInvalidLink
	}

	return PostReference{Code: input}, nil
}

// PostURL returns the link the caller gave, or the canonical post URL for
// bare codes. Query and fragment are dropped.
func (r PostReference) PostURL() string {
	if r.Link == "" {
		return postBaseURL + r.Code + "/"
	}
	link := r.Link
	if i := strings.IndexAny(link, "?#"); i >= 0 {
		link = link[:i]
	}
	return link
}

// EmbedURL returns the captioned embed view of the post. Anything after the
// code in the caller's link is dropped, and links without a scheme resolve
// to the canonical post URL.
func (r PostReference) EmbedURL() string {
	link := r.PostURL()
	if !strings.Contains(link, "://") {
		link = postBaseURL + r.Code + "/"
	}
	if m := postPathRegex.FindStringSubmatchIndex(link); m != nil {
		link = link[:m[3]]
	}
	if !strings.HasSuffix(link, "/") {
		link += "/"
	}
	return link + "embed/captioned"
}
