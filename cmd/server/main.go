package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"postgrab/internal/adapters/instagram"
	"postgrab/internal/adapters/media"
	"postgrab/internal/adapters/scraper"
	"postgrab/internal/adapters/web"
	"postgrab/internal/caption"
	"postgrab/internal/config"
	"postgrab/internal/usecases"
	"postgrab/pkg/log"
	"postgrab/pkg/log/transporters"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Initialize logger
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.Info
	}
	logger := log.New(level, transporters.NewStdout(cfg.LogFormat == "console"))
	log.SetDefault(logger)
	defer logger.Close()

	// Load selector configuration
	selectors, err := scraper.LoadSelectors(cfg.Browser.SelectorsPath)
	if err != nil {
		log.GlobalFatal("failed to load selectors", "path", cfg.Browser.SelectorsPath, "error", err)
		logger.Close()
		os.Exit(1)
	}
	defer selectors.Close()

	policy := caption.Policy{MaxLength: cfg.Caption.MaxLength}

	// Initialize adapters
	materializer := media.NewMaterializer(media.Options{
		FetchTimeout:      cfg.Media.FetchTimeout,
		MaxBytes:          cfg.Media.MaxBytes,
		Concurrency:       cfg.Media.Concurrency,
		DownloadVideoPath: cfg.Media.DownloadVideoPath,
		UserAgent:         cfg.UserAgent,
	})

	queryOpts := instagram.Options{
		Endpoint:  cfg.Query.Endpoint,
		DocID:     cfg.Query.DocID,
		Timeout:   cfg.Query.Timeout,
		UserAgent: cfg.UserAgent,
		Caption:   policy,
	}
	if cfg.Query.InlineMedia {
		queryOpts.Materializer = materializer
	}
	direct := instagram.NewClient(queryOpts)

	launcher := scraper.NewLauncher(scraper.LauncherOptions{
		ChromePath:  cfg.Browser.ChromePath,
		RemoteURL:   cfg.Browser.RemoteURL,
		MaxSessions: cfg.Browser.MaxSessions,
		UserAgent:   cfg.UserAgent,
	})
	embed := scraper.NewEmbedScraper(launcher, selectors, materializer, scraper.EmbedOptions{
		NavigationTimeout:   cfg.Browser.NavigationTimeout,
		LookupTimeout:       cfg.Browser.LookupTimeout,
		SlideTimeout:        cfg.Browser.SlideTimeout,
		VideoSourceTimeout:  cfg.Browser.VideoSourceTimeout,
		PollInterval:        cfg.Browser.PollInterval,
		MaxCarouselAdvances: cfg.Browser.MaxCarouselAdvances,
		Caption:             policy,
	})

	// Initialize use cases
	var fallback usecases.PostResolver
	if cfg.Fallback {
		fallback = embed
	}
	contentUC := usecases.NewResolvePostUseCase("content", direct, fallback)
	renderUC := usecases.NewResolvePostUseCase("render", embed, nil)

	// Initialize web handlers
	handlers := web.NewHandlers(contentUC, renderUC, cfg.RequestTimeout)
	passthrough, err := web.NewPassthrough(web.PassthroughOptions{
		VideoURLPattern: cfg.Passthrough.VideoURLPattern,
		AllowedHosts:    cfg.Passthrough.ProxyAllowedHosts,
		StreamTimeout:   cfg.Passthrough.StreamTimeout,
		UserAgent:       cfg.UserAgent,
	})
	if err != nil {
		log.GlobalFatal("invalid passthrough configuration", "error", err)
		logger.Close()
		os.Exit(1)
	}

	// Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:               "postgrab",
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(web.CORSConfig()))
	app.Use(requestid.New(web.RequestIDConfig()))
	app.Use(web.RequestIDToContextMiddleware())
	app.Use(web.RequestLoggerMiddleware())

	// Setup routes
	web.SetupRoutes(app, handlers, passthrough)

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		log.GlobalInfo("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(ctx); err != nil {
			log.GlobalError("shutdown failed", "error", err)
		}
	}()

	log.GlobalInfo("starting server", "port", cfg.Port, "fallback", cfg.Fallback)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.GlobalError("server stopped", "error", err)
	}
}
