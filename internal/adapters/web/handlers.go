package web

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"postgrab/internal/domain"
	"postgrab/pkg/log"
)

// linkField is the form field carrying the post link.
const linkField = "instagram_link"

// PostResolver resolves a raw post link into a content bundle.
type PostResolver interface {
	Execute(ctx context.Context, link string) (*domain.ContentBundle, error)
}

// Handlers contains the JSON handlers for post resolution.
type Handlers struct {
	content        PostResolver
	render         PostResolver
	requestTimeout time.Duration
}

// NewHandlers creates a new Handlers instance. content serves
// /api/content and render serves /api/postlink.
func NewHandlers(content, render PostResolver, requestTimeout time.Duration) *Handlers {
	if requestTimeout <= 0 {
		requestTimeout = 150 * time.Second
	}
	return &Handlers{
		content:        content,
		render:         render,
		requestTimeout: requestTimeout,
	}
}

// Content resolves the posted link, preferring the direct query strategy.
func (h *Handlers) Content(c *fiber.Ctx) error {
	return h.resolve(c, h.content)
}

// PostLink resolves the posted link by rendering its embed view.
func (h *Handlers) PostLink(c *fiber.Ctx) error {
	return h.resolve(c, h.render)
}

func (h *Handlers) resolve(c *fiber.Ctx, resolver PostResolver) error {
	link := c.FormValue(linkField)

	ctx, cancel := context.WithTimeout(c.UserContext(), h.requestTimeout)
	defer cancel()

	bundle, err := resolver.Execute(ctx, link)
	if err != nil {
		log.GlobalErrorCtx(ctx, "resolve post failed", "link", link, "error", err)
		return respondError(c, err)
	}

	return c.JSON(bundle)
}

// respondError writes the status and friendly message for err.
func respondError(c *fiber.Ctx, err error) error {
	status, message := friendlyError(err)
	return writeError(c, status, message)
}

func writeError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// friendlyError returns a status code and a neutral message. Upstream detail
// is never echoed. A request that ran out of time counts as an upstream
// failure.
func friendlyError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidLink):
		return fiber.StatusBadRequest, "A valid Instagram post link is required in instagram_link."
	case errors.Is(err, domain.ErrPostNotFound):
		return fiber.StatusNotFound, "This post couldn't be found. It might be private or no longer available."
	case errors.Is(err, domain.ErrNoMediaFound):
		return fiber.StatusNotFound, "No media found"
	case errors.Is(err, domain.ErrUpstream), errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusBadGateway, "Unable to load this post right now. Please try again in a moment."
	default:
		return fiber.StatusInternalServerError, "An error has occurred"
	}
}
