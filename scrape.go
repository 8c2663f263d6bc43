package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/hhhapz/swiftbook/content"
	"github.com/hhhapz/swiftbook/scrape"
	"github.com/hhhapz/swiftbook/topic"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type scrapeQuery struct {
	URL string `form:"url" binding:"required"`
}

func (a *appState) handleScrape(c *gin.Context) {
	var q scrapeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		failResponse(c, http.StatusBadRequest, urlRequired)
		return
	}

	if !a.limiter.Allow() {
		failResponse(c, http.StatusTooManyRequests, tooManyScrapes)
		return
	}

	ctx := c.Request.Context()
	if err := a.browsers.Acquire(ctx, 1); err != nil {
		failResponse(c, http.StatusServiceUnavailable, scrapeFailed)
		return
	}
	defer a.browsers.Release(1)

	a.log.Info("scrape requested", "url", q.URL, "client", c.ClientIP())
	result := a.scraper.Scrape(ctx, q.URL)
	if result == nil {
		failResponse(c, http.StatusInternalServerError, scrapeFailed)
		return
	}
	c.JSON(http.StatusOK, result)
}

// isURL reports whether arg is an absolute http(s) URL rather than a topic.
func isURL(arg string) bool {
	u, err := url.Parse(arg)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func newScrapeCommand(app *appState) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "scrape <topic-or-url>",
		Short: "Scrape one page and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.scrapeOne(cmd.Context(), args[0], save)
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "store the result in the cache directory (topics only)")
	return cmd
}

func (a *appState) scrapeOne(ctx context.Context, arg string, save bool) error {
	target, key := arg, ""
	if !isURL(arg) {
		tp, err := a.topics.Resolve(arg)
		if err != nil {
			return err
		}
		target, key = tp.URL, tp.Key
	}

	result := a.scraper.Scrape(ctx, target)
	if result == nil {
		return errors.Errorf("could not scrape %s", target)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, string(data))

	if !save {
		return nil
	}
	if key == "" {
		return errors.New("--save needs a topic, not a URL")
	}
	if _, err := a.store.Save(key, result); err != nil {
		return errors.Wrap(err, "could not save")
	}
	return nil
}

func newScrapeAllCommand(app *appState) *cobra.Command {
	var (
		only  []string
		pages bool
	)

	cmd := &cobra.Command{
		Use:   "scrape-all",
		Short: "Scrape every topic of the Swift book into the cache directory",
		Long: "Scrape every topic of the Swift book into the cache directory.\n\n" +
			"With --pages, scrape the individual chapter pages instead and store each\n" +
			"under its page name. Pages without sections are still saved.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b := &scrape.Batch{
				Scrape:          app.scraper.Scrape,
				Store:           app.store,
				Delay:           app.cfg.Batch.Delay.std(),
				RequireSections: true,
				Robots:          app.robots(),
				Out:             app.out,
			}

			if pages {
				if len(only) > 0 {
					return errors.New("--pages and --topics cannot be combined")
				}
				color.New(color.Bold).Fprintln(app.out, "Starting Swift documentation scraping...")
				b.RequireSections = false
				return app.runBatch(cmd.Context(), b, app.topics.Pages())
			}

			topics, err := app.selectTopics(only)
			if err != nil {
				return err
			}
			color.New(color.Bold).Fprintln(app.out, "Scraping all Swift documentation topics...")
			return app.runBatch(cmd.Context(), b, topics)
		},
	}
	cmd.Flags().StringSliceVar(&only, "topics", nil, "only scrape these topics")
	cmd.Flags().BoolVar(&pages, "pages", false, "scrape the individual chapter pages")
	return cmd
}

func newUpdateCommand(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Refresh the cached copy of every topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(app.out, "Starting Swift documentation scraper...")
			b := &scrape.Batch{
				Scrape: app.scraper.Scrape,
				Store:  app.store,
				Delay:  app.cfg.Batch.UpdateDelay.std(),
				Robots: app.robots(),
				Out:    app.out,
			}
			if err := app.runBatch(cmd.Context(), b, app.topics.Topics()); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(app.out, "\n✓ Scraping complete! Check the %s directory.\n", app.store.Dir())
			return nil
		},
	}
}

// runBatch runs b over topics. Failed topics are reported in the output but
// do not fail the command; only an interrupted run does.
func (a *appState) runBatch(ctx context.Context, b *scrape.Batch, topics []topic.Topic) error {
	sum, err := b.Run(ctx, topics)
	if len(sum.Failed) > 0 {
		a.log.Warn("some topics failed", "topics", strings.Join(sum.Failed, ","))
	}
	if err != nil {
		return errors.Wrap(err, "scrape interrupted")
	}
	return nil
}

func (a *appState) selectTopics(keys []string) ([]topic.Topic, error) {
	if len(keys) == 0 {
		return a.topics.Topics(), nil
	}

	topics := make([]topic.Topic, 0, len(keys))
	for _, k := range keys {
		tp, err := a.topics.Resolve(k)
		if err != nil {
			return nil, err
		}
		topics = append(topics, tp)
	}
	return topics, nil
}

// loadDocuments reads every stored page, skipping unreadable ones.
func (a *appState) loadDocuments() ([]content.Document, error) {
	keys, err := a.store.Keys()
	if err != nil {
		return nil, err
	}

	docs := make([]content.Document, 0, len(keys))
	for _, k := range keys {
		if c := a.store.Get(k); c != nil {
			docs = append(docs, content.Document{Topic: k, Content: c})
		}
	}
	return docs, nil
}
