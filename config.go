package main

import (
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const defaultConfigPath = "swiftbook.toml"

type configuration struct {
	Server  serverConfig  `toml:"server"`
	Scraper scraperConfig `toml:"scraper"`
	Batch   batchConfig   `toml:"batch"`
	Cache   cacheConfig   `toml:"cache"`
}

type serverConfig struct {
	Addr string `toml:"addr" validate:"required"`
	// MaxConcurrentScrapes bounds the browsers the API runs at once.
	MaxConcurrentScrapes int64    `toml:"max_concurrent_scrapes" validate:"min=1"`
	ScrapesPerMinute     int      `toml:"scrapes_per_minute" validate:"min=1"`
	ShutdownTimeout      duration `toml:"shutdown_timeout" validate:"gt=0"`
}

type scraperConfig struct {
	Fetcher           string   `toml:"fetcher" validate:"oneof=chrome static"`
	ChromePath        string   `toml:"chrome_path"`
	UserAgent         string   `toml:"user_agent"`
	NavigationTimeout duration `toml:"navigation_timeout" validate:"gt=0"`
	SelectorTimeout   duration `toml:"selector_timeout" validate:"gt=0"`
	ViewportWidth     int      `toml:"viewport_width" validate:"min=1"`
	ViewportHeight    int      `toml:"viewport_height" validate:"min=1"`
	DefaultLanguage   string   `toml:"default_language" validate:"required"`
}

type batchConfig struct {
	// Delay separates requests of scrape-all, UpdateDelay those of update.
	Delay         duration `toml:"delay" validate:"min=0"`
	UpdateDelay   duration `toml:"update_delay" validate:"min=0"`
	RespectRobots bool     `toml:"respect_robots"`
}

type cacheConfig struct {
	Dir string `toml:"dir" validate:"required"`
}

// duration reads Go duration strings such as "30s" from TOML.
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d duration) std() time.Duration {
	return time.Duration(d)
}

func defaultConfig() configuration {
	return configuration{
		Server: serverConfig{
			Addr:                 ":8080",
			MaxConcurrentScrapes: 2,
			ScrapesPerMinute:     10,
			ShutdownTimeout:      duration(10 * time.Second),
		},
		Scraper: scraperConfig{
			Fetcher:           "chrome",
			NavigationTimeout: duration(30 * time.Second),
			SelectorTimeout:   duration(10 * time.Second),
			ViewportWidth:     1920,
			ViewportHeight:    1080,
			DefaultLanguage:   "swift",
		},
		Batch: batchConfig{
			Delay:         duration(time.Second),
			UpdateDelay:   duration(2 * time.Second),
			RespectRobots: true,
		},
		Cache: cacheConfig{
			Dir: "scraped-content",
		},
	}
}

// envOverrides maps environment variables onto configuration fields.
var envOverrides = map[string]func(*configuration, string){
	"SWIFTBOOK_ADDR":        func(c *configuration, v string) { c.Server.Addr = v },
	"SWIFTBOOK_CACHE_DIR":   func(c *configuration, v string) { c.Cache.Dir = v },
	"SWIFTBOOK_FETCHER":     func(c *configuration, v string) { c.Scraper.Fetcher = v },
	"SWIFTBOOK_CHROME_PATH": func(c *configuration, v string) { c.Scraper.ChromePath = v },
	"SWIFTBOOK_USER_AGENT":  func(c *configuration, v string) { c.Scraper.UserAgent = v },
}

// configFromBytes decodes a TOML document over the defaults, applies
// environment overrides and validates the result.
func configFromBytes(data []byte, lookupEnv func(string) (string, bool)) (configuration, error) {
	cfg := defaultConfig()
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return configuration{}, errors.Wrap(err, "could not parse config")
	}

	if lookupEnv != nil {
		for key, apply := range envOverrides {
			if v, ok := lookupEnv(key); ok && v != "" {
				apply(&cfg, v)
			}
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return configuration{}, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// loadConfig reads the config file at path, plus a .env file in the working
// directory. A missing file is only an error when required is set.
func loadConfig(path string, required bool) (configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil && (required || !errors.Is(err, fs.ErrNotExist)) {
		return configuration{}, errors.Wrap(err, "could not open config")
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return configuration{}, errors.Wrap(err, "could not load .env")
	}

	return configFromBytes(data, os.LookupEnv)
}
