package scrape

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
	"github.com/pkg/errors"
)

var errNoPage = errors.New("no page loaded")

// Static fetches pages over plain HTTP without running JavaScript. It is
// enough for server-rendered documentation and needs no browser installed.
type Static struct {
	// UserAgent is sent with every request. Empty picks a random browser
	// user agent per page.
	UserAgent string
}

func (s Static) Launch(context.Context) (Page, error) {
	return &staticPage{userAgent: s.UserAgent}, nil
}

type staticPage struct {
	userAgent string
	body      string
}

func (p *staticPage) Navigate(url string, timeout time.Duration) error {
	c := colly.NewCollector()
	c.SetRequestTimeout(timeout)
	if p.userAgent != "" {
		c.UserAgent = p.userAgent
	} else {
		extensions.RandomUserAgent(c)
	}

	c.OnResponse(func(r *colly.Response) {
		p.body = string(r.Body)
	})
	return c.Visit(url)
}

// WaitForSelector checks the fetched document once; there is nothing to
// wait for without scripts.
func (p *staticPage) WaitForSelector(selector string, _ time.Duration) error {
	if p.body == "" {
		return errNoPage
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.body))
	if err != nil {
		return err
	}
	if doc.Find(selector).Length() == 0 {
		return errors.Errorf("no element matches %q", selector)
	}
	return nil
}

func (p *staticPage) Content() (string, error) {
	if p.body == "" {
		return "", errNoPage
	}
	return p.body, nil
}

func (p *staticPage) Close() error {
	p.body = ""
	return nil
}
