// Package instagram resolves posts through the upstream GraphQL query API.
package instagram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"postgrab/internal/caption"
	"postgrab/internal/domain"
	"postgrab/pkg/log"
)

// Materializer converts discovered media entries into self-contained items.
type Materializer interface {
	Materialize(ctx context.Context, entries []domain.MediaEntry) ([]domain.MediaItem, error)
}

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	Endpoint  string
	DocID     string
	Timeout   time.Duration
	UserAgent string
	Caption   caption.Policy

	// Materializer, when set, inlines media instead of returning remote URLs.
	Materializer Materializer
}

// Client issues the shortcode media query.
type Client struct {
	http         *resty.Client
	endpoint     string
	docID        string
	policy       caption.Policy
	materializer Materializer
}

// NewClient creates a GraphQL client.
func NewClient(opts Options) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.DocID == "" {
		opts.DocID = DefaultDocID
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}

	httpClient := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")
	if opts.UserAgent != "" {
		httpClient.SetHeader("User-Agent", opts.UserAgent)
	}

	return &Client{
		http:         httpClient,
		endpoint:     opts.Endpoint,
		docID:        opts.DocID,
		policy:       opts.Caption,
		materializer: opts.Materializer,
	}
}

// Resolve fetches the post and maps it to a content bundle.
// It returns domain.ErrPostNotFound when the response carries no post node
// and domain.ErrUpstream on transport, status or JSON failures.
func (c *Client) Resolve(ctx context.Context, ref domain.PostReference) (*domain.ContentBundle, error) {
	ctx = log.WithFields(ctx, "strategy", "direct", "code", ref.Code)

	node, err := c.fetchPostNode(ctx, ref.Code)
	if err != nil {
		return nil, err
	}

	author := domain.StringOr(node.Get("owner.username").String(), domain.DefaultAPIAuthor)
	text := node.Get("edge_media_to_caption.edges.0.node.text").String()
	captionText := domain.StringOr(c.policy.Apply(strings.TrimSpace(text)), domain.DefaultCaption)

	entries := extractEntries(node)
	if len(entries) == 0 {
		return nil, domain.ErrNoMediaFound
	}

	var media []domain.MediaItem
	if c.materializer != nil {
		media, err = c.materializer.Materialize(ctx, entries)
		if err != nil {
			return nil, err
		}
	} else {
		media = make([]domain.MediaItem, 0, len(entries))
		for _, e := range entries {
			item := itemFromEntry(e)
			if item.Preview == "" {
				log.GlobalWarnCtx(ctx, "skipping media node without url", "kind", e.Kind)
				continue
			}
			media = append(media, item)
		}
	}

	if len(media) == 0 {
		return nil, domain.ErrNoMediaFound
	}

	log.GlobalInfoCtx(ctx, "post resolved", "media", len(media))
	return domain.NewContentBundle(author, captionText, media), nil
}

// fetchPostNode posts the query and returns the post node of the response.
func (c *Client) fetchPostNode(ctx context.Context, shortcode string) (gjson.Result, error) {
	variables, err := buildVariables(shortcode)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: encode variables: %v", domain.ErrUpstream, err)
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"variables": variables,
			"doc_id":    c.docID,
		}).
		Post(c.endpoint)
	if err != nil {
		log.GlobalErrorCtx(ctx, "graphql request failed", "error", err)
		return gjson.Result{}, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}

	log.GlobalDebugCtx(ctx, "graphql request completed",
		"status", resp.StatusCode(),
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if !resp.IsSuccess() {
		return gjson.Result{}, fmt.Errorf("%w: graphql status %d", domain.ErrUpstream, resp.StatusCode())
	}

	body := resp.Body()
	if !gjson.ValidBytes(body) {
		log.GlobalErrorCtx(ctx, "graphql response is not json", "body_preview", preview(body))
		return gjson.Result{}, fmt.Errorf("%w: malformed graphql response", domain.ErrUpstream)
	}

	node := gjson.GetBytes(body, postNodePath)
	if !node.Exists() || node.Type == gjson.Null {
		log.GlobalWarnCtx(ctx, "graphql response has no post node")
		return gjson.Result{}, domain.ErrPostNotFound
	}

	return node, nil
}

func preview(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
