// Package scrape renders Swift documentation pages in a browser and splits
// them into heading-delimited sections.
package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hhhapz/swiftbook/content"
	"github.com/hhhapz/swiftbook/metrics"
	"github.com/hhhapz/swiftbook/topic"
	"github.com/pkg/errors"
)

type Config struct {
	NavigationTimeout time.Duration
	SelectorTimeout   time.Duration
	// DefaultLanguage labels code blocks without a language-* class.
	DefaultLanguage string

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Scraper fetches and parses documentation pages. It is safe for
// concurrent use when its Launcher is; every call gets its own session.
type Scraper struct {
	launcher Launcher
	cfg      Config
	log      *slog.Logger
}

func New(launcher Launcher, cfg Config) *Scraper {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = DefaultNavigationTimeout
	}
	if cfg.SelectorTimeout <= 0 {
		cfg.SelectorTimeout = DefaultSelectorTimeout
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = DefaultLanguage
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{
		launcher: launcher,
		cfg:      cfg,
		log:      logger,
	}
}

// Scrape loads url and returns its sections. Failures are logged and
// reported as nil; Scrape does not return errors or panic. A page without
// any sections is not a failure.
func (s *Scraper) Scrape(ctx context.Context, url string) *content.Content {
	start := time.Now()
	c, err := s.scrape(ctx, url)
	elapsed := time.Since(start)

	if err != nil {
		s.log.Error("error scraping Swift docs", "url", url, "err", err, "duration", elapsed)
		s.cfg.Metrics.ObserveScrape(metrics.ResultFailure, elapsed, 0, 0)
		return nil
	}

	sections, examples := c.Counts()
	result := metrics.ResultSuccess
	if sections == 0 {
		result = metrics.ResultEmpty
	}
	s.cfg.Metrics.ObserveScrape(result, elapsed, sections, examples)
	s.log.Info("scraped page", "url", url, "sections", sections, "examples", examples, "duration", elapsed)
	return c
}

// ScrapeTopic scrapes the page registered for key in table. Unknown keys
// yield nil.
func (s *Scraper) ScrapeTopic(ctx context.Context, table *topic.Table, key string) *content.Content {
	tp, ok := table.Lookup(key)
	if !ok {
		s.log.Warn("unknown topic", "topic", key)
		return nil
	}
	return s.Scrape(ctx, tp.URL)
}

func (s *Scraper) scrape(ctx context.Context, url string) (c *content.Content, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while scraping: %v", r)
		}
	}()

	page, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return Parse(page, s.cfg.DefaultLanguage)
}

// fetch renders url and returns the page HTML. The session is closed on
// every path; close errors are only logged.
func (s *Scraper) fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	page, err := s.launcher.Launch(ctx)
	if err != nil {
		return "", errors.Wrap(err, "could not launch browser")
	}
	defer func() {
		if err := page.Close(); err != nil {
			s.log.Debug("could not close browser", "url", url, "err", err)
		}
	}()

	if err := page.Navigate(url, s.cfg.NavigationTimeout); err != nil {
		return "", errors.Wrapf(err, "could not load %s", url)
	}

	if err := page.WaitForSelector(readySelector, s.cfg.SelectorTimeout); err != nil {
		s.log.Debug("content selector did not appear", "url", url, "err", err)
	}

	html, err := page.Content()
	if err != nil {
		return "", errors.Wrap(err, "could not read page content")
	}
	return html, nil
}
