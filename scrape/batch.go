package scrape

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/hhhapz/swiftbook/content"
	"github.com/hhhapz/swiftbook/topic"
	"github.com/pkg/errors"
)

var (
	errDisallowed = errors.New("disallowed by robots.txt")
	errScrape     = errors.New("failed to scrape")
	errNoSections = errors.New("no content found")
)

// ScrapeFunc fetches one page, returning nil on failure. (*Scraper).Scrape
// satisfies it.
type ScrapeFunc func(ctx context.Context, url string) *content.Content

// Batch scrapes a list of topics one after another and stores each result.
// A failing topic is counted and skipped; it never stops the run.
type Batch struct {
	Scrape ScrapeFunc
	Store  *content.Store

	// Delay is the pause between two requests.
	Delay time.Duration
	// RequireSections treats a page without sections as a failure and
	// leaves the stored copy untouched.
	RequireSections bool
	// Robots, when set, skips topics whose URL robots.txt disallows.
	Robots *Robots

	Out io.Writer
}

// Summary tallies a batch run.
type Summary struct {
	Succeeded int
	Failed    []string
	Bytes     int
}

var (
	good = color.New(color.FgGreen)
	bad  = color.New(color.FgRed)
	bold = color.New(color.Bold)
)

// Run processes topics in order. It only returns early when ctx is done,
// with the tally so far.
func (b *Batch) Run(ctx context.Context, topics []topic.Topic) (Summary, error) {
	out := b.Out
	if out == nil {
		out = io.Discard
	}

	var sum Summary
	for i, tp := range topics {
		if i > 0 && b.Delay > 0 {
			select {
			case <-ctx.Done():
				return sum, ctx.Err()
			case <-time.After(b.Delay):
			}
		}
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		fmt.Fprintf(out, "\n[%d/%d] Scraping: %s\n", i+1, len(topics), tp.Key)
		fmt.Fprintf(out, "URL: %s\n", tp.URL)

		n, err := b.one(ctx, out, tp)
		if err != nil {
			bad.Fprintf(out, "✗ %s\n", err)
			sum.Failed = append(sum.Failed, tp.Key)
			continue
		}
		sum.Succeeded++
		sum.Bytes += n
	}

	bold.Fprintln(out, "\n=== Scraping Complete ===")
	good.Fprintf(out, "✓ Success: %d\n", sum.Succeeded)
	bad.Fprintf(out, "✗ Failed: %d\n", len(sum.Failed))
	fmt.Fprintf(out, "Wrote %s to %s\n", humanize.Bytes(uint64(sum.Bytes)), b.Store.Dir())
	return sum, nil
}

func (b *Batch) one(ctx context.Context, out io.Writer, tp topic.Topic) (int, error) {
	if b.Robots != nil && !b.Robots.Allowed(ctx, tp.URL) {
		return 0, errDisallowed
	}

	c := b.Scrape(ctx, tp.URL)
	if c == nil {
		return 0, errScrape
	}

	sections, examples := c.Counts()
	if b.RequireSections && sections == 0 {
		return 0, errNoSections
	}

	good.Fprintf(out, "✓ Title: %s\n", c.Title)
	good.Fprintf(out, "✓ Sections: %d\n", sections)
	good.Fprintf(out, "✓ Code examples: %d\n", examples)

	n, err := b.Store.Save(tp.Key, c)
	if err != nil {
		return 0, errors.Wrap(err, "could not save")
	}
	path, _ := b.Store.Path(tp.Key)
	good.Fprintf(out, "✓ Saved to: %s (%s)\n", path, humanize.Bytes(uint64(n)))
	return n, nil
}
