package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"

	"postgrab/internal/domain"
	"postgrab/pkg/log"
)

// mediaElement is one media element currently present in the carousel.
type mediaElement struct {
	NodeID cdp.NodeID
	Kind   domain.MediaKind
	Src    string
	Poster string
}

// slideSurface is the part of a rendered embed page the traversal drives.
type slideSurface interface {
	// ScanMedia lists the media elements visible on the current slide.
	ScanMedia(ctx context.Context) ([]mediaElement, error)
	// PressPlay clicks the play control. It reports false when there is none.
	PressPlay(ctx context.Context) (bool, error)
	// VideoSource reads the current src attribute of a video element.
	VideoSource(ctx context.Context, el mediaElement) (string, error)
	// Advance clicks the next control. It reports false when there is none.
	Advance(ctx context.Context) (bool, error)
	// SlideReady reports whether slide media markers are present.
	SlideReady(ctx context.Context) (bool, error)
}

// traversalLimits bounds every wait of a carousel traversal.
type traversalLimits struct {
	PollInterval       time.Duration
	SlideTimeout       time.Duration
	VideoSourceTimeout time.Duration
	MaxAdvances        int
}

// carousel accumulates media entries in slide order for one traversal.
type carousel struct {
	surface slideSurface
	limits  traversalLimits
	seen    map[string]struct{}
	entries []domain.MediaEntry
}

// traverseCarousel scans the current slide, then keeps clicking the next
// control and scanning until there is no next control or the advance cap is
// reached. Slide and video waits that time out are logged and skipped. When
// the deadline of ctx passes mid-traversal, the media collected so far is
// returned.
func traverseCarousel(ctx context.Context, surface slideSurface, limits traversalLimits) ([]domain.MediaEntry, error) {
	c := &carousel{
		surface: surface,
		limits:  limits,
		seen:    make(map[string]struct{}),
	}

	advances, err := c.walk(ctx)
	if err != nil {
		if !errors.Is(err, context.DeadlineExceeded) || len(c.entries) == 0 {
			return nil, err
		}
		log.GlobalWarnCtx(ctx, "deadline reached, returning collected media",
			"advances", advances, "media", len(c.entries))
		return c.entries, nil
	}

	if limits.MaxAdvances > 0 && advances >= limits.MaxAdvances {
		log.GlobalWarnCtx(ctx, "carousel advance limit reached", "advances", advances)
	}

	if len(c.entries) == 0 {
		return nil, fmt.Errorf("%w: carousel yielded no media", domain.ErrNoMediaFound)
	}

	log.GlobalDebugCtx(ctx, "carousel traversed", "advances", advances, "media", len(c.entries))
	return c.entries, nil
}

// walk records the current slide and every slide reachable through the next
// control. It returns the number of advances made and, on cancellation, the
// error of ctx.
func (c *carousel) walk(ctx context.Context) (int, error) {
	if err := c.scan(ctx); err != nil {
		return 0, err
	}

	advances := 0
	for advances < c.limits.MaxAdvances {
		moved, err := c.surface.Advance(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return advances, ctx.Err()
			}
			log.GlobalWarnCtx(ctx, "carousel advance failed, stopping", "error", err)
			break
		}
		if !moved {
			break
		}
		advances++

		if err := c.waitForSlide(ctx); err != nil {
			return advances, err
		}
		if err := c.scan(ctx); err != nil {
			return advances, err
		}
	}
	return advances, nil
}

// waitForSlide waits for slide media after an advance. Only cancellation of
// ctx is returned as an error.
func (c *carousel) waitForSlide(ctx context.Context) error {
	_, err := pollUntil(ctx, c.limits.PollInterval, c.limits.SlideTimeout,
		func(ctx context.Context) (struct{}, bool, error) {
			ready, err := c.surface.SlideReady(ctx)
			return struct{}{}, ready, err
		})
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, ErrPollTimeout):
		log.GlobalWarnCtx(ctx, "timed out waiting for slide media", "timeout", c.limits.SlideTimeout)
	default:
		log.GlobalWarnCtx(ctx, "slide media check failed", "error", err)
	}
	return nil
}

// scan records every not yet seen media element of the current slide.
func (c *carousel) scan(ctx context.Context) error {
	elements, err := c.surface.ScanMedia(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.GlobalWarnCtx(ctx, "media scan failed", "error", err)
		return nil
	}

	for _, el := range elements {
		var entry domain.MediaEntry
		var ok bool
		switch el.Kind {
		case domain.MediaImage:
			entry, ok = domain.MediaEntry{Kind: domain.MediaImage, Source: el.Src}, el.Src != ""
		case domain.MediaVideo:
			entry, ok, err = c.resolveVideo(ctx, el)
			if err != nil {
				return err
			}
		}
		if ok {
			c.record(entry)
		}
	}
	return nil
}

// resolveVideo reveals the source of a video element. When a play control
// exists the source is awaited after clicking it; a source that never shows
// up skips the element.
func (c *carousel) resolveVideo(ctx context.Context, el mediaElement) (domain.MediaEntry, bool, error) {
	src := el.Src

	played, err := c.surface.PressPlay(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return domain.MediaEntry{}, false, ctx.Err()
		}
		log.GlobalWarnCtx(ctx, "play control failed", "error", err)
	}

	if played {
		src, err = pollUntil(ctx, c.limits.PollInterval, c.limits.VideoSourceTimeout,
			func(ctx context.Context) (string, bool, error) {
				s, err := c.surface.VideoSource(ctx, el)
				return s, s != "", err
			})
		if err != nil {
			if ctx.Err() != nil {
				return domain.MediaEntry{}, false, ctx.Err()
			}
			log.GlobalWarnCtx(ctx, "video source never appeared, skipping slide", "error", err)
			return domain.MediaEntry{}, false, nil
		}
	}

	source := domain.StringOr(src, el.Poster)
	if source == "" {
		return domain.MediaEntry{}, false, nil
	}
	return domain.MediaEntry{Kind: domain.MediaVideo, Source: source, Poster: el.Poster}, true, nil
}

// record appends entry unless its key was already seen.
func (c *carousel) record(entry domain.MediaEntry) {
	key := entry.Source
	if key == "" {
		return
	}
	if _, dup := c.seen[key]; dup {
		return
	}
	c.seen[key] = struct{}{}
	c.entries = append(c.entries, entry)
}
