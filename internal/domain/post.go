// Package domain contains the core entities and rules of post resolution.
package domain

import (
	"encoding/json"
	"strings"
)

// MediaKind distinguishes images from videos.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// MediaEntry is a discovered media reference that has not been fetched yet.
type MediaEntry struct {
	Kind   MediaKind
	Source string
	Poster string // videos only, may be empty
}

// FetchURL returns the URL whose bytes represent the entry visually:
// the poster for videos that have one, the source otherwise.
func (e MediaEntry) FetchURL() string {
	if e.Kind == MediaVideo && e.Poster != "" {
		return e.Poster
	}
	return e.Source
}

// MediaItem is one displayable media element of a post.
// Preview is always populated. For videos, Download may point at the local
// download passthrough instead of the upstream URL.
type MediaItem struct {
	Kind     MediaKind `json:"type"`
	Preview  string    `json:"dataUrl"`
	Download string    `json:"downloadUrl"`
}

// ContentBundle is the normalized result of resolving a post.
type ContentBundle struct {
	Author  string      `json:"username"`
	Caption string      `json:"caption"`
	Media   []MediaItem `json:"media"`
}

// NewContentBundle assembles a bundle from already-defaulted parts.
func NewContentBundle(author, caption string, media []MediaItem) *ContentBundle {
	return &ContentBundle{
		Author:  author,
		Caption: caption,
		Media:   media,
	}
}

// MarshalJSON keeps an empty media list as [] rather than null.
func (b ContentBundle) MarshalJSON() ([]byte, error) {
	type plain ContentBundle
	if b.Media == nil {
		b.Media = []MediaItem{}
	}
	return json.Marshal(plain(b))
}

// StringOr returns s unless it is blank, in which case fallback.
func StringOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
