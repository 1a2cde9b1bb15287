package scraper

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"postgrab/internal/domain"
)

const lifecycleNetworkAlmostIdle = "networkAlmostIdle"

// navigateAndSettle loads url and waits until the main frame reports that
// network activity has settled.
func navigateAndSettle(ctx context.Context, url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var mainFrame cdp.FrameID
	if err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		mainFrame = tree.Frame.ID
		return nil
	})); err != nil {
		return err
	}

	var (
		mu     sync.Mutex
		loader cdp.LoaderID
		once   sync.Once
	)
	idle := make(chan struct{})

	listenCtx, stopListening := context.WithCancel(ctx)
	defer stopListening()
	chromedp.ListenTarget(listenCtx, func(ev any) {
		e, ok := ev.(*page.EventLifecycleEvent)
		if !ok || e.FrameID != mainFrame {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		switch e.Name {
		case "init":
			loader = e.LoaderID
		case lifecycleNetworkAlmostIdle:
			if loader != "" && e.LoaderID == loader {
				once.Do(func() { close(idle) })
			}
		}
	})

	if err := chromedp.Run(ctx,
		page.SetLifecycleEventsEnabled(true),
		chromedp.Navigate(url),
	); err != nil {
		return err
	}

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// readOuterHTML returns the markup of the whole document.
func readOuterHTML(ctx context.Context, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var markup string
	err := chromedp.Run(ctx, chromedp.OuterHTML("html", &markup, chromedp.ByQuery))
	return markup, err
}

// chromeSurface drives the carousel of the page loaded in ctx's tab.
type chromeSurface struct {
	sel           Selectors
	lookupTimeout time.Duration
}

func (s *chromeSurface) run(ctx context.Context, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

// query returns the nodes matching selector without waiting for them.
func (s *chromeSurface) query(ctx context.Context, selector string) ([]*cdp.Node, error) {
	var nodes []*cdp.Node
	err := s.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	return nodes, err
}

func (s *chromeSurface) ScanMedia(ctx context.Context) ([]mediaElement, error) {
	nodes, err := s.query(ctx, s.sel.Media)
	if err != nil {
		return nil, err
	}

	elements := make([]mediaElement, 0, len(nodes))
	for _, n := range nodes {
		switch strings.ToLower(n.NodeName) {
		case "img":
			elements = append(elements, mediaElement{
				NodeID: n.NodeID,
				Kind:   domain.MediaImage,
				Src:    n.AttributeValue("src"),
			})
		case "video":
			elements = append(elements, mediaElement{
				NodeID: n.NodeID,
				Kind:   domain.MediaVideo,
				Src:    n.AttributeValue("src"),
				Poster: n.AttributeValue("poster"),
			})
		}
	}
	return elements, nil
}

func (s *chromeSurface) PressPlay(ctx context.Context) (bool, error) {
	return s.clickFirst(ctx, s.sel.PlayButton)
}

func (s *chromeSurface) Advance(ctx context.Context) (bool, error) {
	return s.clickFirst(ctx, s.sel.NextButton)
}

func (s *chromeSurface) clickFirst(ctx context.Context, selector string) (bool, error) {
	nodes, err := s.query(ctx, selector)
	if err != nil || len(nodes) == 0 {
		return false, err
	}
	if err := s.run(ctx, chromedp.MouseClickNode(nodes[0])); err != nil {
		return false, err
	}
	return true, nil
}

func (s *chromeSurface) VideoSource(ctx context.Context, el mediaElement) (string, error) {
	var src string
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		attrs, err := dom.GetAttributes(el.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		src = attributeValue(attrs, "src")
		return nil
	}))
	return src, err
}

func (s *chromeSurface) SlideReady(ctx context.Context) (bool, error) {
	nodes, err := s.query(ctx, s.sel.SlideMedia)
	return len(nodes) > 0, err
}

// attributeValue looks name up in a flattened name/value attribute list.
func attributeValue(attrs []string, name string) string {
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i] == name {
			return attrs[i+1]
		}
	}
	return ""
}
