// Package scraper resolves posts by rendering their embed view in a headless
// browser.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"postgrab/internal/caption"
	"postgrab/internal/domain"
	"postgrab/pkg/log"
)

// Sessions runs work inside an isolated browser session.
type Sessions interface {
	WithSession(ctx context.Context, fn func(ctx context.Context) error) error
}

// Materializer converts discovered media entries into self-contained items.
type Materializer interface {
	Materialize(ctx context.Context, entries []domain.MediaEntry) ([]domain.MediaItem, error)
}

// EmbedOptions configures an EmbedScraper. Zero durations fall back to
// defaults.
type EmbedOptions struct {
	NavigationTimeout   time.Duration
	LookupTimeout       time.Duration
	SlideTimeout        time.Duration
	VideoSourceTimeout  time.Duration
	PollInterval        time.Duration
	MaxCarouselAdvances int
	Caption             caption.Policy
}

// EmbedScraper renders the embed view of a post and walks its carousel.
type EmbedScraper struct {
	sessions      Sessions
	selectors     *SelectorConfig
	materializer  Materializer
	policy        caption.Policy
	navTimeout    time.Duration
	lookupTimeout time.Duration
	limits        traversalLimits

	renderPage func(ctx context.Context, url string) (*renderedEmbed, error)
}

// renderedEmbed is what one browser session extracts from an embed page.
type renderedEmbed struct {
	embedText
	Entries []domain.MediaEntry
}

// NewEmbedScraper creates an embed scraper.
func NewEmbedScraper(sessions Sessions, selectors *SelectorConfig, materializer Materializer, opts EmbedOptions) *EmbedScraper {
	s := &EmbedScraper{
		sessions:      sessions,
		selectors:     selectors,
		materializer:  materializer,
		policy:        opts.Caption,
		navTimeout:    durationOr(opts.NavigationTimeout, 60*time.Second),
		lookupTimeout: durationOr(opts.LookupTimeout, 5*time.Second),
		limits: traversalLimits{
			PollInterval:       durationOr(opts.PollInterval, 100*time.Millisecond),
			SlideTimeout:       durationOr(opts.SlideTimeout, 5*time.Second),
			VideoSourceTimeout: durationOr(opts.VideoSourceTimeout, 5*time.Second),
			MaxAdvances:        opts.MaxCarouselAdvances,
		},
	}
	s.renderPage = s.render
	return s
}

// Resolve renders the embed view of ref and returns its content bundle.
// It returns domain.ErrUpstream when the page cannot be loaded in time and
// domain.ErrNoMediaFound when the carousel holds no media.
func (s *EmbedScraper) Resolve(ctx context.Context, ref domain.PostReference) (*domain.ContentBundle, error) {
	ctx = log.WithFields(ctx, "strategy", "browser", "code", ref.Code)

	start := time.Now()
	rendered, err := s.renderPage(ctx, ref.EmbedURL())
	if err != nil {
		return nil, upstreamOnDeadline(err)
	}
	log.GlobalDebugCtx(ctx, "embed page rendered",
		"media", len(rendered.Entries),
		"latency_ms", time.Since(start).Milliseconds(),
	)

	bundle, err := s.assemble(ctx, rendered)
	if err != nil {
		return nil, upstreamOnDeadline(err)
	}
	return bundle, nil
}

// assemble applies the author and caption fallbacks to a rendered page and
// materializes its media in slide order.
func (s *EmbedScraper) assemble(ctx context.Context, rendered *renderedEmbed) (*domain.ContentBundle, error) {
	author := rendered.Author
	if author == "" {
		log.GlobalWarnCtx(ctx, "username not found in embed page")
		author = domain.DefaultEmbedAuthor
	}

	captionText := domain.DefaultCaption
	if rendered.Caption == "" {
		log.GlobalWarnCtx(ctx, "caption not found in embed page")
	} else {
		captionText = caption.Normalize(rendered.Caption, s.policy)
	}

	media, err := s.materializer.Materialize(ctx, rendered.Entries)
	if err != nil {
		return nil, err
	}

	log.GlobalInfoCtx(ctx, "post resolved", "media", len(media))
	return domain.NewContentBundle(author, captionText, media), nil
}

// render loads url in a fresh browser session and extracts its text fields
// and carousel media.
func (s *EmbedScraper) render(ctx context.Context, url string) (*renderedEmbed, error) {
	sel := s.selectors.Current()
	out := &renderedEmbed{}

	err := s.sessions.WithSession(ctx, func(sessionCtx context.Context) error {
		if err := navigateAndSettle(sessionCtx, url, s.navTimeout); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.GlobalErrorCtx(ctx, "embed page did not settle", "url", url, "error", err)
			return fmt.Errorf("%w: load embed page: %v", domain.ErrUpstream, err)
		}

		markup, err := readOuterHTML(sessionCtx, s.lookupTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.GlobalWarnCtx(ctx, "reading embed markup failed", "error", err)
		} else {
			out.embedText = parseEmbedText(markup, sel)
		}

		surface := &chromeSurface{sel: sel, lookupTimeout: s.lookupTimeout}
		out.Entries, err = traverseCarousel(sessionCtx, surface, s.limits)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// upstreamOnDeadline reports a passed deadline as an upstream failure.
// Cancellation is returned as is.
func upstreamOnDeadline(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	return err
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
