package web

import (
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures the application routes.
func SetupRoutes(app *fiber.App, handlers *Handlers, passthrough *Passthrough) {
	api := app.Group("/api")

	// Post resolution, form field instagram_link
	api.Post("/content", handlers.Content)
	api.Post("/postlink", handlers.PostLink)

	// Media passthroughs
	api.Get("/downloadVideo", passthrough.DownloadVideo)
	api.Get("/proxy", passthrough.Proxy)
}
