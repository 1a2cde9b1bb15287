package scraper

import (
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"postgrab/pkg/log"
)

// Selectors are the page markers the embed strategy depends on.
type Selectors struct {
	UsernameClass string
	CaptionClass  string
	Media         string
	SlideMedia    string
	PlayButton    string
	NextButton    string
}

// DefaultSelectors matches the embed page markup as currently served.
func DefaultSelectors() Selectors {
	return Selectors{
		UsernameClass: "UsernameText",
		CaptionClass:  "Caption",
		Media:         "div._aagu img, div._aand video",
		SlideMedia:    "li._adxi img, li._adxi video",
		PlayButton:    `span[aria-label="Play"]`,
		NextButton:    `button[aria-label="Next"]`,
	}
}

// SelectorConfig holds the selectors loaded from YAML and keeps them in sync
// with the file.
type SelectorConfig struct {
	mu          sync.RWMutex
	current     Selectors
	lastModTime time.Time
	filePath    string
	stop        chan struct{}
	stopOnce    sync.Once
}

// rawConfig represents the YAML structure.
type rawConfig struct {
	Embed struct {
		UsernameClass string `yaml:"username_class"`
		CaptionClass  string `yaml:"caption_class"`
	} `yaml:"embed"`
	Carousel struct {
		Media      string `yaml:"media"`
		SlideMedia string `yaml:"slide_media"`
		PlayButton string `yaml:"play_button"`
		NextButton string `yaml:"next_button"`
	} `yaml:"carousel"`
}

const reloadInterval = 10 * time.Second

// LoadSelectors loads selector configuration from a YAML file and starts a
// background watcher that reloads it when it changes. A missing file leaves
// the defaults in place.
func LoadSelectors(filePath string) (*SelectorConfig, error) {
	config := &SelectorConfig{
		current:  DefaultSelectors(),
		filePath: filePath,
		stop:     make(chan struct{}),
	}
	if err := config.reload(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		log.GlobalWarn("selectors file not found, using defaults", "path", filePath)
	}

	go config.watch()

	return config, nil
}

// Current returns a snapshot of the selectors.
func (c *SelectorConfig) Current() Selectors {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Close stops the reload watcher.
func (c *SelectorConfig) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// reload reads the configuration from the file. Keys left empty keep their
// default value.
func (c *SelectorConfig) reload() error {
	info, err := os.Stat(c.filePath)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(c.filePath)
	if err != nil {
		return err
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}

	defaults := DefaultSelectors()
	next := Selectors{
		UsernameClass: or(raw.Embed.UsernameClass, defaults.UsernameClass),
		CaptionClass:  or(raw.Embed.CaptionClass, defaults.CaptionClass),
		Media:         or(raw.Carousel.Media, defaults.Media),
		SlideMedia:    or(raw.Carousel.SlideMedia, defaults.SlideMedia),
		PlayButton:    or(raw.Carousel.PlayButton, defaults.PlayButton),
		NextButton:    or(raw.Carousel.NextButton, defaults.NextButton),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = next
	c.lastModTime = info.ModTime()

	return nil
}

// watch monitors the configuration file for changes and reloads it.
func (c *SelectorConfig) watch() {
	ticker := time.NewTicker(reloadInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			if c.changed() {
				if err := c.reload(); err != nil {
					log.GlobalWarn("selectors reload failed", "path", c.filePath, "error", err)
					continue
				}
				log.GlobalInfo("selectors reloaded", "path", c.filePath)
			}
		}
	}
}

func (c *SelectorConfig) changed() bool {
	info, err := os.Stat(c.filePath)
	if err != nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return info.ModTime().After(c.lastModTime)
}

func or(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
