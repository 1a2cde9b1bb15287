package scraper

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"

	"postgrab/internal/domain"
	"postgrab/pkg/log"
)

// LauncherOptions configures a Launcher.
type LauncherOptions struct {
	// ChromePath overrides the Chrome/Chromium binary.
	ChromePath string
	// RemoteURL, when set, connects to an existing DevTools websocket
	// instead of starting a local browser.
	RemoteURL   string
	MaxSessions int
	UserAgent   string
}

type startFunc func(ctx context.Context) (context.Context, context.CancelFunc, error)

// Launcher starts one isolated browser per session and bounds how many
// sessions run at the same time.
type Launcher struct {
	sessions chan struct{}
	start    startFunc
}

// NewLauncher creates a browser launcher.
func NewLauncher(opts LauncherOptions) *Launcher {
	if opts.MaxSessions < 1 {
		opts.MaxSessions = 1
	}

	l := &Launcher{sessions: make(chan struct{}, opts.MaxSessions)}

	if opts.RemoteURL != "" {
		log.GlobalInfo("browser launcher using remote devtools", "url", opts.RemoteURL)
		l.start = remoteStarter(opts.RemoteURL)
	} else {
		l.start = execStarter(execOptions(opts))
	}
	return l
}

func execOptions(opts LauncherOptions) []chromedp.ExecAllocatorOption {
	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		// Core
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),

		// Memory / CPU reduction
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("no-first-run", true),
	)

	if opts.UserAgent != "" {
		execOpts = append(execOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ChromePath != "" {
		log.GlobalInfo("browser launcher using custom chrome path", "path", opts.ChromePath)
		execOpts = append(execOpts, chromedp.ExecPath(opts.ChromePath))
	}
	return execOpts
}

func execStarter(execOpts []chromedp.ExecAllocatorOption) startFunc {
	return func(ctx context.Context) (context.Context, context.CancelFunc, error) {
		allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, execOpts...)
		return startBrowser(allocCtx, cancelAlloc)
	}
}

func remoteStarter(url string) startFunc {
	return func(ctx context.Context) (context.Context, context.CancelFunc, error) {
		allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(ctx, url)
		return startBrowser(allocCtx, cancelAlloc)
	}
}

func startBrowser(allocCtx context.Context, cancelAlloc context.CancelFunc) (context.Context, context.CancelFunc, error) {
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	cancel := func() {
		cancelBrowser()
		cancelAlloc()
	}

	// Force browser startup
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		return nil, nil, err
	}
	return browserCtx, cancel, nil
}

// WithSession runs fn inside a fresh browser session. Waiting for a free
// slot honours ctx. The browser is torn down when fn returns or panics.
func (l *Launcher) WithSession(ctx context.Context, fn func(ctx context.Context) error) error {
	select {
	case l.sessions <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-l.sessions }()

	sessionCtx, cancel, err := l.start(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.GlobalErrorCtx(ctx, "browser session failed to start", "error", err)
		return fmt.Errorf("%w: start browser: %v", domain.ErrUpstream, err)
	}
	defer cancel()

	log.GlobalDebugCtx(ctx, "browser session started")
	return fn(sessionCtx)
}
