package domain

import "errors"

var (
	// ErrInvalidLink is returned when the caller's link or shortcode is missing
	// or cannot yield a post code.
	ErrInvalidLink = errors.New("invalid post link")

	// ErrPostNotFound is returned when the upstream has no data for the post.
	// Another strategy may still be able to resolve it.
	ErrPostNotFound = errors.New("post not found")

	// ErrNoMediaFound is returned when the post page loaded but no media
	// could be extracted from it.
	ErrNoMediaFound = errors.New("no media found")

	// ErrUpstream is returned on network, timeout, status or parse failures
	// against a third party.
	ErrUpstream = errors.New("upstream request failed")
)
