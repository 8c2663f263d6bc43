package scrape

import (
	"encoding/json"
	"testing"

	"github.com/hhhapz/swiftbook/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const closuresPage = `<!DOCTYPE html>
<html>
<head><title>Closures | Apple Developer Documentation</title></head>
<body>
<nav><h2>Navigation</h2><p>Not part of the page.</p></nav>
<main>
  <h1>Closures</h1>
  <h2>   </h2>
  <p>Text under the page title is not kept.</p>

  <h2>Closure Expressions</h2>
  <p>Closure expressions are a way to write inline closures.</p>
  <div class="code-listing">
    <pre><code class="language-swift">let names = ["Chris", "Alex"]</code></pre>
  </div>

  <h3>The Sorted Method</h3>
  <p>The sorted(by:) method sorts an array.</p>
  <pre><code>func backward(_ s1: String, _ s2: String) -> Bool</code></pre>

  <h2>Empty</h2>

  <h4>Short</h4>
  <pre><code>x</code></pre>

  <h2>Building</h2>
  <pre><code class="hljs language-bash">swift build</code></pre>
</main>
</body>
</html>`

func TestParse(t *testing.T) {
	c, err := Parse(closuresPage, "")
	require.NoError(t, err)

	expected := &content.Content{
		Title: "Closures",
		Sections: []content.Section{
			{
				Heading: "Closure Expressions",
				Level:   2,
				Content: "Closure expressions are a way to write inline closures.\n\n",
				CodeExamples: []content.CodeExample{
					{Code: `let names = ["Chris", "Alex"]`, Language: "swift"},
				},
			},
			{
				Heading: "The Sorted Method",
				Level:   3,
				Content: "The sorted(by:) method sorts an array.\n\n",
				CodeExamples: []content.CodeExample{
					{Code: "func backward(_ s1: String, _ s2: String) -> Bool", Language: "swift"},
				},
			},
			{
				Heading:      "Building",
				Level:        2,
				Content:      "",
				CodeExamples: []content.CodeExample{{Code: "swift build", Language: "bash"}},
			},
		},
	}

	assert.Equal(t, expected, c)
}

func TestParseTitle(t *testing.T) {
	cases := []struct {
		name string
		page string
		want string
	}{
		{
			name: "first h1",
			page: `<main><h1> First </h1><h1>Second</h1></main>`,
			want: "First",
		},
		{
			name: "title suffix stripped",
			page: `<html><head><title>Generics | Apple Developer Documentation</title></head><body></body></html>`,
			want: "Generics",
		},
		{
			name: "plain title",
			page: `<html><head><title>  The Swift Programming Language  </title></head></html>`,
			want: "The Swift Programming Language",
		},
		{
			name: "nothing",
			page: `<p>no title</p>`,
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Parse(tc.page, "")
			require.NoError(t, err)
			assert.Equal(t, tc.want, c.Title)
		})
	}
}

func TestParseContentRoot(t *testing.T) {
	cases := map[string]string{
		"article": `<div><h2>Outside</h2><p>outside text</p></div>
<article><h2>Inside</h2><p>inside text</p></article>`,
		"content class": `<div><h2>Outside</h2><p>outside text</p></div>
<div class="content"><h2>Inside</h2><p>inside text</p></div>`,
		"content id": `<section><h2>Outside</h2><p>outside text</p></section>
<div id="content"><h2>Inside</h2><p>inside text</p></div>`,
	}

	for name, page := range cases {
		t.Run(name, func(t *testing.T) {
			c, err := Parse(page, "")
			require.NoError(t, err)
			require.Len(t, c.Sections, 1)
			assert.Equal(t, "Inside", c.Sections[0].Heading)
		})
	}

	c, err := Parse(`<h2>Body</h2><p>text</p><h3>More</h3><p>more</p>`, "")
	require.NoError(t, err)
	assert.Len(t, c.Sections, 2, "falls back to the body")
}

func TestParseCodeDedup(t *testing.T) {
	page := `<main>
<h2>One</h2>
<div><pre><code>print("hello")</code></pre></div>
<div><pre><code>print("hello")</code></pre></div>
<pre><code>print("world")</code></pre>
<h2>Two</h2>
<pre><code>print("hello")</code></pre>
</main>`

	c, err := Parse(page, "swift")
	require.NoError(t, err)
	require.Len(t, c.Sections, 2)

	assert.Equal(t, []content.CodeExample{
		{Code: `print("hello")`, Language: "swift"},
		{Code: `print("world")`, Language: "swift"},
	}, c.Sections[0].CodeExamples)
	assert.Equal(t, []content.CodeExample{
		{Code: `print("hello")`, Language: "swift"},
	}, c.Sections[1].CodeExamples, "repeats across sections are kept")
}

func TestParseCodeLength(t *testing.T) {
	page := `<main><h2>Code</h2>
<pre><code>12345</code></pre>
<pre><code>123456</code></pre>
<pre>  plain  pre  </pre>
</main>`

	c, err := Parse(page, "kotlin")
	require.NoError(t, err)
	require.Len(t, c.Sections, 1)
	assert.Equal(t, []content.CodeExample{
		{Code: "123456", Language: "kotlin"},
		{Code: "plain  pre", Language: "kotlin"},
	}, c.Sections[0].CodeExamples)
}

func TestParseEmptyPage(t *testing.T) {
	c, err := Parse(`<main><h1>Only a title</h1><p>and text</p></main>`, "")
	require.NoError(t, err)
	assert.Empty(t, c.Sections)

	d, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Only a title","sections":[]}`, string(d))
}

func TestSegmenter(t *testing.T) {
	var seg segmenter
	for _, tk := range []token{
		{kind: paragraphToken, text: "before any heading"},
		{kind: headingToken, level: 2, text: "A"},
		{kind: paragraphToken, text: "a1"},
		{kind: paragraphToken, text: "a2"},
		{kind: headingToken, level: 1, text: "Title"},
		{kind: paragraphToken, text: "under title"},
		{kind: headingToken, level: 5, text: "B"},
		{kind: codeToken, code: content.CodeExample{Code: "let b = 1", Language: "swift"}},
	} {
		seg.feed(tk)
	}

	sections := seg.finish()
	require.Len(t, sections, 2)
	assert.Equal(t, "a1\n\na2\n\nunder title\n\n", sections[0].Content)
	assert.Equal(t, 5, sections[1].Level)
	assert.Empty(t, sections[1].Content)
	assert.Len(t, sections[1].CodeExamples, 1)
}

func TestParseSecondTitleKeepsSection(t *testing.T) {
	c, err := Parse(`<main>
<h1>Closures</h1>
<h2>A</h2><p>hi</p>
<h1>Again</h1><p>after</p>
<h3></h3><p>still A</p>
<h2>B</h2><p>b</p>
</main>`, "")
	require.NoError(t, err)

	assert.Equal(t, "Closures", c.Title)
	require.Len(t, c.Sections, 2)
	assert.Equal(t, "A", c.Sections[0].Heading)
	assert.Equal(t, "hi\n\nafter\n\nstill A\n\n", c.Sections[0].Content)
	assert.Equal(t, "B", c.Sections[1].Heading)
}
