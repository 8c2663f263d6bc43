package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hhhapz/swiftbook/content"
	"github.com/hhhapz/swiftbook/metrics"
	"github.com/hhhapz/swiftbook/scrape"
	"github.com/hhhapz/swiftbook/topic"
	"github.com/spf13/cobra"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// appState is shared by the commands and the HTTP handlers.
type appState struct {
	cfg     configuration
	log     *slog.Logger
	out     io.Writer
	topics  *topic.Table
	store   *content.Store
	scraper *scrape.Scraper
	metrics *metrics.Metrics

	// live scrapes started through the API
	browsers *semaphore.Weighted
	limiter  *rate.Limiter
}

func newApp(cfg configuration, launcher scrape.Launcher, logger *slog.Logger, out io.Writer) *appState {
	m := metrics.New()
	perScrape := time.Minute / time.Duration(cfg.Server.ScrapesPerMinute)

	return &appState{
		cfg:    cfg,
		log:    logger,
		out:    out,
		topics: topic.Default(),
		store:  content.NewStore(cfg.Cache.Dir, logger),
		scraper: scrape.New(launcher, scrape.Config{
			NavigationTimeout: cfg.Scraper.NavigationTimeout.std(),
			SelectorTimeout:   cfg.Scraper.SelectorTimeout.std(),
			DefaultLanguage:   cfg.Scraper.DefaultLanguage,
			Logger:            logger,
			Metrics:           m,
		}),
		metrics:  m,
		browsers: semaphore.NewWeighted(cfg.Server.MaxConcurrentScrapes),
		limiter:  rate.NewLimiter(rate.Every(perScrape), cfg.Server.ScrapesPerMinute),
	}
}

func launcherFor(cfg scraperConfig) scrape.Launcher {
	if cfg.Fetcher == "static" {
		return scrape.Static{UserAgent: cfg.UserAgent}
	}
	return scrape.Chrome{
		ExecPath:  cfg.ChromePath,
		UserAgent: cfg.UserAgent,
		Width:     cfg.ViewportWidth,
		Height:    cfg.ViewportHeight,
	}
}

func (a *appState) robots() *scrape.Robots {
	if !a.cfg.Batch.RespectRobots {
		return nil
	}
	return scrape.NewRobots(&http.Client{Timeout: 10 * time.Second}, a.cfg.Scraper.UserAgent, a.log)
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)
	app := &appState{}

	root := &cobra.Command{
		Use:          "swiftbook",
		Short:        "Scrape, cache and serve the Swift programming language book",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)

			cfg, err := loadConfig(configPath, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			*app = *newApp(cfg, launcherFor(cfg.Scraper), logger, cmd.OutOrStdout())
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the TOML config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")

	root.AddCommand(
		newServeCommand(app),
		newScrapeCommand(app),
		newScrapeAllCommand(app),
		newUpdateCommand(app),
		newTopicsCommand(app),
		newShowCommand(app),
		newSearchCommand(app),
		newDocCCommand(app),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
