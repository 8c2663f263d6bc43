package scrape

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// Robots answers whether robots.txt allows fetching a URL. Each host's
// robots.txt is fetched once. Any failure to fetch or parse it allows
// everything.
type Robots struct {
	client    *http.Client
	userAgent string
	log       *slog.Logger

	mu    sync.Mutex
	hosts map[string]*robotstxt.Group
}

func NewRobots(client *http.Client, userAgent string, logger *slog.Logger) *Robots {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	if userAgent == "" {
		userAgent = "swiftbook"
	}
	return &Robots{
		client:    client,
		userAgent: userAgent,
		log:       logger,
		hosts:     make(map[string]*robotstxt.Group),
	}
}

// Allowed reports whether target may be fetched.
func (r *Robots) Allowed(ctx context.Context, target string) bool {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return true
	}

	group := r.group(ctx, u)
	if group == nil {
		return true
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return group.Test(path)
}

func (r *Robots) group(ctx context.Context, u *url.URL) *robotstxt.Group {
	key := u.Scheme + "://" + u.Host

	r.mu.Lock()
	defer r.mu.Unlock()

	if g, ok := r.hosts[key]; ok {
		return g
	}

	g := r.fetch(ctx, key+"/robots.txt")
	r.hosts[key] = g
	return g
}

func (r *Robots) fetch(ctx context.Context, robotsURL string) *robotstxt.Group {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		r.log.Warn("could not fetch robots.txt, assuming allow all", "url", robotsURL, "err", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.log.Debug("no robots.txt, assuming allow all", "url", robotsURL, "status", resp.StatusCode)
		return nil
	}

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		r.log.Warn("could not parse robots.txt, assuming allow all", "url", robotsURL, "err", err)
		return nil
	}
	return data.FindGroup(r.userAgent)
}
