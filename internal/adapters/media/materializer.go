// Package media turns discovered media URLs into self-contained items.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"

	"postgrab/internal/domain"
	"postgrab/pkg/log"
)

const defaultContentType = "image/jpeg"

// errTooLarge is returned for bodies above the configured byte cap.
var errTooLarge = errors.New("media exceeds size limit")

// Options configures a Materializer. Zero values fall back to defaults.
type Options struct {
	FetchTimeout      time.Duration
	MaxBytes          int64
	Concurrency       int
	DownloadVideoPath string
	UserAgent         string
}

// Materializer fetches preview bytes for media entries and encodes them as
// data URIs.
type Materializer struct {
	http         *resty.Client
	maxBytes     int64
	concurrency  int
	downloadPath string
}

// NewMaterializer creates a Materializer.
func NewMaterializer(opts Options) *Materializer {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 20 * time.Second
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 15 << 20
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.DownloadVideoPath == "" {
		opts.DownloadVideoPath = "/api/downloadVideo"
	}

	httpClient := resty.New().SetTimeout(opts.FetchTimeout)
	if opts.UserAgent != "" {
		httpClient.SetHeader("User-Agent", opts.UserAgent)
	}

	return &Materializer{
		http:         httpClient,
		maxBytes:     opts.MaxBytes,
		concurrency:  opts.Concurrency,
		downloadPath: opts.DownloadVideoPath,
	}
}

// Materialize fetches every entry concurrently and returns the items that
// succeeded, in entry order. Failed entries are logged and skipped. When no
// entry succeeds the result is domain.ErrUpstream.
func (m *Materializer) Materialize(ctx context.Context, entries []domain.MediaEntry) ([]domain.MediaItem, error) {
	results := make([]*domain.MediaItem, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			item, err := m.materialize(gctx, entry)
			if err != nil {
				log.GlobalWarnCtx(ctx, "media fetch failed, skipping entry",
					"index", i,
					"kind", entry.Kind,
					"url", entry.FetchURL(),
					"error", err,
				)
				return nil
			}
			results[i] = item
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := make([]domain.MediaItem, 0, len(results))
	for _, item := range results {
		if item != nil {
			items = append(items, *item)
		}
	}

	if len(items) == 0 {
		log.GlobalErrorCtx(ctx, "no media could be converted", "entries", len(entries))
		return nil, fmt.Errorf("%w: no media could be converted", domain.ErrUpstream)
	}
	return items, nil
}

func (m *Materializer) materialize(ctx context.Context, entry domain.MediaEntry) (*domain.MediaItem, error) {
	target := entry.FetchURL()
	if target == "" {
		return nil, errors.New("entry has no url")
	}

	data, contentType, err := m.fetch(ctx, target)
	if err != nil {
		return nil, err
	}

	dataURI := EncodeDataURI(contentType, data)
	item := &domain.MediaItem{Kind: entry.Kind, Preview: dataURI, Download: dataURI}
	if entry.Kind == domain.MediaVideo {
		item.Download = DownloadVideoURL(m.downloadPath, entry.Source)
	}
	return item, nil
}

// fetch reads at most maxBytes of the body at target.
func (m *Materializer) fetch(ctx context.Context, target string) ([]byte, string, error) {
	resp, err := m.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(target)
	if err != nil {
		return nil, "", err
	}
	body := resp.RawBody()
	defer body.Close()

	if !resp.IsSuccess() {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode())
	}

	data, err := io.ReadAll(io.LimitReader(body, m.maxBytes+1))
	if err != nil {
		return nil, "", err
	}
	if int64(len(data)) > m.maxBytes {
		return nil, "", errTooLarge
	}

	return data, resp.Header().Get("Content-Type"), nil
}

// EncodeDataURI wraps data in a base64 data URI. An empty content type
// defaults to image/jpeg.
func EncodeDataURI(contentType string, data []byte) string {
	if contentType == "" {
		contentType = defaultContentType
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DownloadVideoURL returns the local passthrough reference for a video
// source URL.
func DownloadVideoURL(path, source string) string {
	return path + "?videoUrl=" + url.QueryEscape(source)
}
