package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hhhapz/swiftbook/content"
	"github.com/hhhapz/swiftbook/scrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const closuresHTML = `<!DOCTYPE html>
<html>
<head><title>Closures | Apple Developer Documentation</title></head>
<body>
<main>
  <h1>Closures</h1>
  <p>Group code that executes together.</p>
  <h2>Closure Expressions</h2>
  <p>Closure expressions are a way to write inline closures.</p>
  <pre><code class="language-swift">let reversed = names.sorted(by: backward)</code></pre>
  <h3>Trailing Closures</h3>
  <p>Write a trailing closure after the parentheses.</p>
</main>
</body>
</html>`

type stubLauncher struct {
	mu       sync.Mutex
	html     string
	err      error
	launches int
}

func (l *stubLauncher) Launch(context.Context) (scrape.Page, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.launches++
	if l.err != nil {
		return nil, l.err
	}
	return &stubPage{html: l.html}, nil
}

type stubPage struct{ html string }

func (p *stubPage) Navigate(string, time.Duration) error { return nil }
func (p *stubPage) WaitForSelector(string, time.Duration) error { return nil }
func (p *stubPage) Content() (string, error) { return p.html, nil }
func (p *stubPage) Close() error { return nil }

func testConfig(t *testing.T) configuration {
	t.Helper()
	cfg := defaultConfig()
	cfg.Cache.Dir = t.TempDir()
	cfg.Batch.Delay = 0
	cfg.Batch.UpdateDelay = 0
	cfg.Batch.RespectRobots = false
	return cfg
}

func testApp(t *testing.T, cfg configuration, l *stubLauncher) (*appState, *bytes.Buffer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	out := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newApp(cfg, l, logger, out), out
}

func do(t *testing.T, h http.Handler, method, target string, body io.Reader) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestHandleScrape(t *testing.T) {
	app, _ := testApp(t, testConfig(t), &stubLauncher{html: closuresHTML})
	r := app.routes()

	rec, body := do(t, r, http.MethodGet, "/api/scrape-swift-docs?url=https://docs.swift.org/closures", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page content.Content
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, "Closures", page.Title)
	require.Len(t, page.Sections, 2)
	assert.Equal(t, "Closure Expressions", page.Sections[0].Heading)
	assert.Equal(t, 2, page.Sections[0].Level)
	assert.Len(t, page.Sections[0].CodeExamples, 1)
	assert.Equal(t, "Trailing Closures", page.Sections[1].Heading)
	assert.Empty(t, body["error"])
}

func TestHandleScrapeErrors(t *testing.T) {
	t.Run("missing url", func(t *testing.T) {
		app, _ := testApp(t, testConfig(t), &stubLauncher{html: closuresHTML})
		for _, target := range []string{"/api/scrape-swift-docs", "/api/scrape-swift-docs?url="} {
			rec, body := do(t, app.routes(), http.MethodGet, target, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "URL parameter is required", body["error"])
		}
	})

	t.Run("scrape failure", func(t *testing.T) {
		l := &stubLauncher{err: assert.AnError}
		app, _ := testApp(t, testConfig(t), l)
		rec, body := do(t, app.routes(), http.MethodGet, "/api/scrape-swift-docs?url=https://example.com", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to scrape content", body["error"])
		assert.Equal(t, 1, l.launches)
	})

	t.Run("empty page", func(t *testing.T) {
		app, _ := testApp(t, testConfig(t), &stubLauncher{html: "<html><body></body></html>"})
		rec, body := do(t, app.routes(), http.MethodGet, "/api/scrape-swift-docs?url=https://example.com", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []any{}, body["sections"])
	})

	t.Run("rate limited", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Server.ScrapesPerMinute = 1
		l := &stubLauncher{html: closuresHTML}
		app, _ := testApp(t, cfg, l)
		r := app.routes()

		rec, _ := do(t, r, http.MethodGet, "/api/scrape-swift-docs?url=https://example.com", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		rec, body := do(t, r, http.MethodGet, "/api/scrape-swift-docs?url=https://example.com", nil)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "Too many scrape requests", body["error"])
		assert.Equal(t, 1, l.launches)
	})
}

func TestRecovery(t *testing.T) {
	app, _ := testApp(t, testConfig(t), &stubLauncher{})
	r := app.routes()
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	rec, body := do(t, r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", body["error"])
	assert.Equal(t, "boom", body["details"])
}

func seed(t *testing.T, app *appState, key string, page *content.Content) {
	t.Helper()
	_, err := app.store.Save(key, page)
	require.NoError(t, err)
}

var closuresPage = &content.Content{
	Title: "Closures",
	Sections: []content.Section{
		{Heading: "Closure Expressions", Level: 2, Content: "Inline closures.\n\n", CodeExamples: []content.CodeExample{}},
		{Heading: "Trailing Closures", Level: 3, Content: "After the parentheses.\n\n", CodeExamples: []content.CodeExample{}},
		{Heading: "Escaping Closures", Level: 2, Content: "Outlive the function.\n\n", CodeExamples: []content.CodeExample{}},
	},
}

func TestHandleTopics(t *testing.T) {
	app, _ := testApp(t, testConfig(t), &stubLauncher{})
	seed(t, app, "closures", closuresPage)
	r := app.routes()

	rec, body := do(t, r, http.MethodGet, "/api/topics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	topics := body["topics"].([]any)
	assert.Len(t, topics, len(app.topics.Keys()))

	cached := map[string]bool{}
	for _, tp := range topics {
		m := tp.(map[string]any)
		cached[m["key"].(string)] = m["cached"].(bool)
	}
	assert.True(t, cached["closures"])
	assert.False(t, cached["generics"])

	rec, body = do(t, r, http.MethodGet, "/api/topics/closures", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Closures", body["title"])

	rec, body = do(t, r, http.MethodGet, "/api/topics/generics", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No scraped content for topic", body["error"])
}

func TestHandleSections(t *testing.T) {
	app, _ := testApp(t, testConfig(t), &stubLauncher{})
	seed(t, app, "closures", closuresPage)
	r := app.routes()

	cases := []struct {
		name     string
		query    string
		status   int
		headings []string
	}{
		{name: "all", query: "", status: http.StatusOK, headings: []string{"Closure Expressions", "Trailing Closures", "Escaping Closures"}},
		{name: "level", query: "?level=2", status: http.StatusOK, headings: []string{"Closure Expressions", "Escaping Closures"}},
		{name: "heading", query: "?heading=escaping", status: http.StatusOK, headings: []string{"Escaping Closures"}},
		{name: "heading and level", query: "?heading=trailing&level=2", status: http.StatusOK, headings: []string{}},
		{name: "bad level", query: "?level=9", status: http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := do(t, r, http.MethodGet, "/api/topics/closures/sections"+tc.query, nil)
			require.Equal(t, tc.status, rec.Code)
			if tc.status != http.StatusOK {
				return
			}

			headings := []string{}
			for _, s := range body["sections"].([]any) {
				headings = append(headings, s.(map[string]any)["heading"].(string))
			}
			assert.Equal(t, tc.headings, headings)
		})
	}
}

func TestHandleSearch(t *testing.T) {
	app, _ := testApp(t, testConfig(t), &stubLauncher{})
	seed(t, app, "closures", closuresPage)
	r := app.routes()

	for _, q := range []string{"", "ab", strings.Repeat("x", 41)} {
		rec, body := do(t, r, http.MethodGet, "/api/search?q="+q, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		assert.Equal(t, "Query must be between 3 and 40 characters", body["error"])
	}

	rec, body := do(t, r, http.MethodGet, "/api/search?q=escaping", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["total"])
	hit := body["results"].([]any)[0].(map[string]any)
	assert.Equal(t, "closures", hit["topic"])
	assert.Equal(t, "heading", hit["match"])

	rec, body = do(t, r, http.MethodGet, "/api/search?q=generics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, body["results"])
}

func TestHandleDocC(t *testing.T) {
	app, _ := testApp(t, testConfig(t), &stubLauncher{})

	src := "/// Adds two integers.\n///\n/// - Parameters:\n///   - a: The first value.\n///   - b: The second value.\n/// - Returns: The sum.\nfunc add(_ a: Int, _ b: Int) -> Int { a + b }\n"
	rec, body := do(t, app.routes(), http.MethodPost, "/api/docc", strings.NewReader(src))
	require.Equal(t, http.StatusOK, rec.Code)

	decls := body["declarations"].([]any)
	require.Len(t, decls, 1)
	decl := decls[0].(map[string]any)
	assert.Equal(t, "add", decl["name"])
	assert.Equal(t, "Adds two integers.", decl["doc"].(map[string]any)["summary"])
	assert.Contains(t, decl["markdown"], "**Returns:** The sum.")

	rec, body = do(t, app.routes(), http.MethodPost, "/api/docc", strings.NewReader("let x = 1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, body["declarations"])
}

func TestHandleInfo(t *testing.T) {
	app, _ := testApp(t, testConfig(t), &stubLauncher{})
	seed(t, app, "closures", closuresPage)

	rec, body := do(t, app.routes(), http.MethodGet, "/api/info", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, len(app.topics.Keys()), body["topics"])
	assert.EqualValues(t, 1, body["cached"])
	assert.NotEmpty(t, body["go"])
}

func TestMetricsEndpoint(t *testing.T) {
	app, _ := testApp(t, testConfig(t), &stubLauncher{html: closuresHTML})
	r := app.routes()

	do(t, r, http.MethodGet, "/api/scrape-swift-docs?url=https://example.com", nil)
	do(t, r, http.MethodGet, "/nowhere", nil)

	rec, _ := do(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	text := rec.Body.String()
	assert.Contains(t, text, `result="success"`)
	assert.Contains(t, text, `path="/api/scrape-swift-docs"`)
	assert.Contains(t, text, `path="unmatched"`)
}
