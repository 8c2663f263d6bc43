package main

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/hhhapz/swiftbook/content"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	minQuery   = 3
	maxQuery   = 40
	maxResults = 25
)

func validQuery(q string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(q))
	return n >= minQuery && n <= maxQuery
}

func (a *appState) search(query string) ([]content.Hit, error) {
	docs, err := a.loadDocuments()
	if err != nil {
		return nil, err
	}
	return content.Search(docs, query), nil
}

func (a *appState) handleSearch(c *gin.Context) {
	query := c.Query("q")
	if !validQuery(query) {
		failResponse(c, http.StatusBadRequest, queryLength)
		return
	}

	hits, err := a.search(query)
	if err != nil {
		a.log.Error("could not search cache", "query", query, "err", err)
		failResponse(c, http.StatusInternalServerError, internalError)
		return
	}

	total := len(hits)
	if len(hits) > maxResults {
		hits = hits[:maxResults]
	}
	if hits == nil {
		hits = []content.Hit{}
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"total":   total,
		"results": hits,
	})
}

func newSearchCommand(app *appState) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the cached sections by heading and text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if !validQuery(query) {
				return errors.New(strings.ToLower(queryLength))
			}

			hits, err := app.search(query)
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				fmt.Fprintf(app.out, "No sections match %q.\n", query)
				return nil
			}

			heading := color.New(color.Bold)
			for i, h := range hits {
				if limit > 0 && i == limit {
					fmt.Fprintf(app.out, "... %d more\n", len(hits)-limit)
					break
				}
				heading.Fprintf(app.out, "%s", h.Section.Heading)
				fmt.Fprintf(app.out, "  %s / %s (%s)\n", h.Topic, h.Title, h.Kind)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum results to print, 0 for all")
	return cmd
}
