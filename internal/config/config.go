// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every tunable of the server.
type Config struct {
	Port            string        `env:"PORT" envDefault:"3000"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"150s"`
	UserAgent       string        `env:"USER_AGENT" envDefault:"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"`
	Fallback        bool          `env:"STRATEGY_FALLBACK" envDefault:"true"`

	Query       QueryConfig
	Browser     BrowserConfig
	Media       MediaConfig
	Caption     CaptionConfig
	Passthrough PassthroughConfig
}

// QueryConfig configures the direct GraphQL strategy.
type QueryConfig struct {
	Endpoint    string        `env:"QUERY_ENDPOINT" envDefault:"https://www.instagram.com/graphql/query/"`
	DocID       string        `env:"QUERY_DOC_ID" envDefault:"8845758582119845"`
	Timeout     time.Duration `env:"QUERY_TIMEOUT" envDefault:"15s"`
	InlineMedia bool          `env:"DIRECT_INLINE_MEDIA" envDefault:"false"`
}

// BrowserConfig configures the headless browser strategy.
type BrowserConfig struct {
	ChromePath          string        `env:"CHROME_PATH"`
	RemoteURL           string        `env:"BROWSER_WS_URL"`
	MaxSessions         int           `env:"BROWSER_MAX_SESSIONS" envDefault:"2"`
	SelectorsPath       string        `env:"SELECTORS_PATH" envDefault:"config/selectors.yaml"`
	NavigationTimeout   time.Duration `env:"NAVIGATION_TIMEOUT" envDefault:"60s"`
	LookupTimeout       time.Duration `env:"LOOKUP_TIMEOUT" envDefault:"5s"`
	SlideTimeout        time.Duration `env:"SLIDE_TIMEOUT" envDefault:"5s"`
	VideoSourceTimeout  time.Duration `env:"VIDEO_SRC_TIMEOUT" envDefault:"5s"`
	PollInterval        time.Duration `env:"POLL_INTERVAL" envDefault:"100ms"`
	MaxCarouselAdvances int           `env:"MAX_CAROUSEL_ADVANCES" envDefault:"10"`
}

// MediaConfig configures media materialization.
type MediaConfig struct {
	FetchTimeout      time.Duration `env:"MEDIA_FETCH_TIMEOUT" envDefault:"20s"`
	MaxBytes          int64         `env:"MEDIA_MAX_BYTES" envDefault:"15728640"`
	Concurrency       int           `env:"MEDIA_CONCURRENCY" envDefault:"4"`
	DownloadVideoPath string        `env:"DOWNLOAD_VIDEO_PATH" envDefault:"/api/downloadVideo"`
}

// CaptionConfig configures caption truncation. Zero disables it.
type CaptionConfig struct {
	MaxLength int `env:"CAPTION_MAX_LENGTH" envDefault:"0"`
}

// PassthroughConfig configures the download and proxy endpoints.
type PassthroughConfig struct {
	VideoURLPattern   string        `env:"VIDEO_URL_PATTERN" envDefault:"(?i)^https://instagram\\.(fna|.+?)/o1/v/t16/f2/m69/.*\\.mp4\\?.*$"`
	ProxyAllowedHosts []string      `env:"PROXY_ALLOWED_HOSTS" envDefault:"cdninstagram.com,fbcdn.net" envSeparator:","`
	StreamTimeout     time.Duration `env:"STREAM_TIMEOUT" envDefault:"5m"`
}

// Load reads an optional .env file from the working directory and parses the
// environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Browser.MaxSessions < 1:
		return errors.New("BROWSER_MAX_SESSIONS must be at least 1")
	case c.Browser.MaxCarouselAdvances < 0:
		return errors.New("MAX_CAROUSEL_ADVANCES must not be negative")
	case c.Media.Concurrency < 1:
		return errors.New("MEDIA_CONCURRENCY must be at least 1")
	case c.Caption.MaxLength < 0:
		return errors.New("CAPTION_MAX_LENGTH must not be negative")
	case c.RequestTimeout < c.StageBudget():
		return fmt.Errorf("REQUEST_TIMEOUT %s is shorter than the stage budget %s", c.RequestTimeout, c.StageBudget())
	}
	return nil
}

// StageBudget is the time one request needs when the direct query times out
// and the browser then waits out navigation, every slide and a media fetch.
// Element lookups and video source polls are left out; a traversal cut short
// by the request deadline keeps the slides it already collected.
func (c *Config) StageBudget() time.Duration {
	return c.Query.Timeout +
		c.Browser.NavigationTimeout +
		time.Duration(c.Browser.MaxCarouselAdvances)*c.Browser.SlideTimeout +
		c.Media.FetchTimeout
}
