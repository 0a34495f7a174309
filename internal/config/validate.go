package config

import (
	"fmt"
	"strings"
)

var validPrivacy = map[string]struct{}{
	"public":   {},
	"unlisted": {},
	"private":  {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateContent(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateYouTube(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateContent() error {
	if c.Content.ShopInterval < 1 {
		return fmt.Errorf("content.shop_interval must be at least 1, got %d", c.Content.ShopInterval)
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		return fmt.Errorf("video dimensions must be positive, got %dx%d", c.Video.Width, c.Video.Height)
	}
	if c.Video.FPS <= 0 {
		return fmt.Errorf("video.fps must be positive, got %d", c.Video.FPS)
	}
	if c.Video.DurationSeconds <= 0 {
		return fmt.Errorf("video.duration_seconds must be positive, got %d", c.Video.DurationSeconds)
	}
	return nil
}

func (c *Config) validateYouTube() error {
	if _, ok := validPrivacy[c.YouTube.Privacy]; !ok {
		return fmt.Errorf("youtube.privacy must be public, unlisted, or private, got %q", c.YouTube.Privacy)
	}
	if strings.TrimSpace(c.YouTube.CategoryID) == "" {
		return fmt.Errorf("youtube.category_id must not be empty")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
