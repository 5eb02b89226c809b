// Package config loads process settings from CART_* environment variables.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const envPrefix = "cart"

type Config struct {
	HTTPAddr           string        `split_words:"true" default:":8080"`
	DatabaseURL        string        `split_words:"true" required:"true"`
	RedisURL           string        `split_words:"true"`
	FlashSaleURL       string        `split_words:"true"`
	PollInterval       time.Duration `split_words:"true" default:"30s"`
	CheckConcurrency   int           `split_words:"true" default:"8"`
	MembershipCacheTTL time.Duration `split_words:"true" default:"5s"`
	LogLevel           string        `split_words:"true" default:"info"`
	FeesFile           string        `split_words:"true"`
	ShutdownTimeout    time.Duration `split_words:"true" default:"10s"`
}

func Load() (Config, error) {
	var c Config
	if err := envconfig.Process(envPrefix, &c); err != nil {
		return Config{}, fmt.Errorf("envconfig.Process: %w", err)
	}

	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("c.Validate: %w", err)
	}

	return c, nil
}

func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("http addr is empty")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("database url is empty")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval[%s] must be positive", c.PollInterval)
	}
	if c.CheckConcurrency <= 0 {
		return fmt.Errorf("check concurrency[%d] must be positive", c.CheckConcurrency)
	}
	if c.MembershipCacheTTL < 0 {
		return fmt.Errorf("membership cache ttl[%s] is negative", c.MembershipCacheTTL)
	}
	if c.FlashSaleURL != "" {
		if _, err := url.ParseRequestURI(c.FlashSaleURL); err != nil {
			return fmt.Errorf("flash sale url[%s] is not valid: %w", c.FlashSaleURL, err)
		}
	}
	if _, err := c.Level(); err != nil {
		return err
	}

	return nil
}

func (c Config) Level() (logrus.Level, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return 0, fmt.Errorf("logrus.ParseLevel: %w", err)
	}

	return level, nil
}

// Usage prints the supported variables; used by the CLI help.
func Usage() error {
	var c Config
	return envconfig.Usage(envPrefix, &c)
}
