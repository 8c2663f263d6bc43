package main

import (
	"fmt"
	"net/http"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/hhhapz/swiftbook/content"
	"github.com/k0kubun/pp"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (a *appState) handleTopics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"base":   a.topics.Base(),
		"topics": a.topicSummaries(),
	})
}

// cached resolves a topic key or alias and returns its stored page, or
// writes the error response and returns nil.
func (a *appState) cached(c *gin.Context) (string, *content.Content) {
	key := c.Param("key")
	if tp, err := a.topics.Resolve(key); err == nil {
		key = tp.Key
	}

	page := a.store.Get(key)
	if page == nil {
		failResponse(c, http.StatusNotFound, notScraped)
		return key, nil
	}
	return key, page
}

func (a *appState) handleTopic(c *gin.Context) {
	_, page := a.cached(c)
	if page == nil {
		return
	}
	c.JSON(http.StatusOK, page)
}

type sectionsQuery struct {
	Heading string `form:"heading"`
	Level   int    `form:"level" binding:"omitempty,min=2,max=6"`
}

func (a *appState) handleSections(c *gin.Context) {
	var q sectionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		failResponse(c, http.StatusBadRequest, "Level must be between 2 and 6")
		return
	}

	key, page := a.cached(c)
	if page == nil {
		return
	}

	sections := page.Sections
	if q.Level != 0 {
		sections = page.SectionsByLevel(q.Level)
	}
	if q.Heading != "" {
		filtered := &content.Content{Sections: sections}
		s, ok := filtered.FindSection(q.Heading)
		sections = []content.Section{}
		if ok {
			sections = append(sections, s)
		}
	}
	if sections == nil {
		sections = []content.Section{}
	}

	c.JSON(http.StatusOK, gin.H{
		"topic":    key,
		"title":    page.Title,
		"sections": sections,
	})
}

func newTopicsCommand(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List the known topics and whether they are cached",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			w := tabwriter.NewWriter(app.out, 0, 4, 2, ' ', 0)
			cached := color.New(color.FgGreen).Sprint("cached")
			for _, s := range app.topicSummaries() {
				state := "-"
				if s.Cached {
					state = cached
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.Key, s.Title, state)
			}
			return w.Flush()
		},
	}
}

func newShowCommand(app *appState) *cobra.Command {
	var full, raw bool

	cmd := &cobra.Command{
		Use:   "show <topic>",
		Short: "Print a cached topic as Markdown",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			tp, err := app.topics.Resolve(strings.Join(args, " "))
			if err != nil {
				return err
			}

			page, err := app.store.Load(tp.Key)
			if errors.Is(err, content.ErrNotFound) {
				return errors.Errorf("%s has not been scraped yet, run `swiftbook scrape %s --save`", tp.Key, tp.Key)
			}
			if err != nil {
				return err
			}

			if raw {
				_, err := pp.Fprintln(app.out, page)
				return err
			}

			limit := showLimit
			if full {
				limit = 0
			}
			md, _ := page.Render(limit)
			fmt.Fprintln(app.out, md)
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "print every section")
	cmd.Flags().BoolVar(&raw, "raw", false, "dump the stored structure")
	return cmd
}
