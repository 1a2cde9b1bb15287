package web

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gofiber/fiber/v2"

	"postgrab/pkg/log"
)

const (
	defaultVideoContentType = "video/mp4"
	defaultProxyContentType = "application/octet-stream"
)

// PassthroughOptions configures the download and proxy endpoints.
type PassthroughOptions struct {
	// VideoURLPattern must match every videoUrl accepted for download.
	VideoURLPattern string
	// AllowedHosts are host suffixes the proxy may fetch from. Empty allows
	// any host.
	AllowedHosts  []string
	StreamTimeout time.Duration
	UserAgent     string
}

// Passthrough streams upstream media back to the client.
type Passthrough struct {
	http         *resty.Client
	videoPattern *regexp.Regexp
	allowedHosts []string
	now          func() time.Time
}

// NewPassthrough creates the passthrough handlers.
func NewPassthrough(opts PassthroughOptions) (*Passthrough, error) {
	pattern, err := regexp.Compile(opts.VideoURLPattern)
	if err != nil {
		return nil, fmt.Errorf("compile video url pattern: %w", err)
	}
	if opts.StreamTimeout <= 0 {
		opts.StreamTimeout = 5 * time.Minute
	}

	httpClient := resty.New().SetTimeout(opts.StreamTimeout)
	if opts.UserAgent != "" {
		httpClient.SetHeader("User-Agent", opts.UserAgent)
	}

	hosts := make([]string, 0, len(opts.AllowedHosts))
	for _, h := range opts.AllowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts = append(hosts, strings.TrimPrefix(h, "."))
		}
	}

	return &Passthrough{
		http:         httpClient,
		videoPattern: pattern,
		allowedHosts: hosts,
		now:          time.Now,
	}, nil
}

// DownloadVideo streams a validated upstream video as an attachment.
func (p *Passthrough) DownloadVideo(c *fiber.Ctx) error {
	videoURL := c.Query("videoUrl")
	if videoURL == "" {
		return writeError(c, fiber.StatusBadRequest, "videoUrl query parameter is required")
	}
	if !p.videoPattern.MatchString(videoURL) {
		log.GlobalWarnCtx(c.UserContext(), "rejected video url", "url", videoURL)
		return writeError(c, fiber.StatusBadRequest, "Invalid videoUrl")
	}

	resp, err := p.open(c, videoURL)
	if err != nil {
		return writeError(c, fiber.StatusBadGateway, "Failed to fetch video content")
	}

	c.Set(fiber.HeaderContentType, headerOr(resp, defaultVideoContentType))
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="instagram_video_%d.mp4"`, p.now().UnixMilli()))
	return c.SendStream(resp.RawBody())
}

// Proxy streams an upstream resource from an allowed host with a permissive
// CORS header.
func (p *Passthrough) Proxy(c *fiber.Ctx) error {
	target := c.Query("url")
	if target == "" {
		return writeError(c, fiber.StatusBadRequest, "Missing 'url' param")
	}
	if !p.hostAllowed(target) {
		log.GlobalWarnCtx(c.UserContext(), "rejected proxy target", "url", target)
		return writeError(c, fiber.StatusBadRequest, "URL host is not allowed")
	}

	resp, err := p.open(c, target)
	if err != nil {
		return writeError(c, fiber.StatusBadGateway, "Failed to fetch image")
	}

	c.Set(fiber.HeaderContentType, headerOr(resp, defaultProxyContentType))
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	return c.SendStream(resp.RawBody())
}

// open starts an unbuffered GET. On success the caller owns the body.
func (p *Passthrough) open(c *fiber.Ctx, target string) (*resty.Response, error) {
	ctx := c.UserContext()
	resp, err := p.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(target)
	if err != nil {
		log.GlobalErrorCtx(ctx, "passthrough request failed", "url", target, "error", err)
		return nil, err
	}
	if !resp.IsSuccess() {
		_ = resp.RawBody().Close()
		log.GlobalErrorCtx(ctx, "passthrough upstream status", "url", target, "status", resp.StatusCode())
		return nil, fmt.Errorf("upstream status %d", resp.StatusCode())
	}
	return resp, nil
}

// hostAllowed reports whether target is an http(s) URL whose host equals or
// is a subdomain of an allowed host.
func (p *Passthrough) hostAllowed(target string) bool {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return false
	}
	if len(p.allowedHosts) == 0 {
		return true
	}
	host := strings.ToLower(u.Hostname())
	for _, allowed := range p.allowedHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

func headerOr(resp *resty.Response, fallback string) string {
	if v := resp.Header().Get(fiber.HeaderContentType); v != "" {
		return v
	}
	return fallback
}
