package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCommand(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the scrape API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.serve(cmd.Context())
		},
	}
}

// serve runs the HTTP server until ctx is done, then drains open requests
// for at most the shutdown timeout.
func (a *appState) serve(ctx context.Context) error {
	if !a.log.Enabled(ctx, slog.LevelDebug) {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Info("listening", "addr", srv.Addr, "fetcher", a.cfg.Scraper.Fetcher, "cache", a.store.Dir())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "could not serve")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		a.log.Info("shutting down")

		shutdown, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout.std())
		defer cancel()
		return srv.Shutdown(shutdown)
	})
	return g.Wait()
}
