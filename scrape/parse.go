package scrape

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/hhhapz/swiftbook/content"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	titleSuffix = " | Apple Developer Documentation"

	// Code blocks this short or shorter are inline fragments, not examples.
	minCodeLength = 5

	DefaultLanguage = "swift"
)

// rootSelectors are tried in order to find the documentation body; the
// whole <body> is used when none match.
var rootSelectors = []string{
	"main",
	"article",
	".documentation-content, .content, #content",
}

var languageRe = regexp.MustCompile(`language-(\w+)`)

// Parse extracts the title and heading-delimited sections of a rendered
// documentation page. Code blocks take their language from a language-*
// class, falling back to defaultLanguage.
func Parse(page string, defaultLanguage string) (*content.Content, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, errors.Wrap(err, "could not parse page")
	}
	if defaultLanguage == "" {
		defaultLanguage = DefaultLanguage
	}

	var seg segmenter
	for _, t := range tokenize(contentRoot(doc), defaultLanguage) {
		seg.feed(t)
	}

	return &content.Content{
		Title:    title(doc),
		Sections: seg.finish(),
	}, nil
}

func title(doc *goquery.Document) string {
	if t := strings.TrimSpace(doc.Find("h1").First().Text()); t != "" {
		return t
	}
	t := strings.TrimSpace(doc.Find("title").Text())
	return strings.Replace(t, titleSuffix, "", 1)
}

func contentRoot(doc *goquery.Document) *goquery.Selection {
	for _, sel := range rootSelectors {
		if root := doc.Find(sel).First(); root.Length() > 0 {
			return root
		}
	}
	return doc.Find("body")
}

type tokenKind uint8

const (
	headingToken tokenKind = iota
	paragraphToken
	codeToken
)

type token struct {
	kind  tokenKind
	level int
	text  string
	code  content.CodeExample
}

// tokenize walks every element under root in document order. Any element
// containing a <pre> yields a code token, so a single block is usually seen
// more than once; the segmenter drops the repeats.
func tokenize(root *goquery.Selection, defaultLanguage string) []token {
	var tokens []token

	all := root.Find("*")
	all.Each(func(i int, s *goquery.Selection) {
		node := all.Get(i)
		if node.Type != html.ElementNode {
			return
		}

		if level := headingLevel(node); level > 0 {
			tokens = append(tokens, token{
				kind:  headingToken,
				level: level,
				text:  strings.TrimSpace(s.Text()),
			})
			return
		}

		if node.DataAtom == atom.P {
			if text := strings.TrimSpace(s.Text()); text != "" {
				tokens = append(tokens, token{kind: paragraphToken, text: text})
			}
		}

		if node.DataAtom == atom.Pre || s.Find("pre").Length() > 0 {
			if ex, ok := codeExample(s, defaultLanguage); ok {
				tokens = append(tokens, token{kind: codeToken, code: ex})
			}
		}
	})

	return tokens
}

func headingLevel(node *html.Node) int {
	switch node.DataAtom {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}

func codeExample(s *goquery.Selection, defaultLanguage string) (content.CodeExample, bool) {
	code := s.Find("code").First()
	if code.Length() == 0 {
		code = s
	}

	text := strings.TrimSpace(code.Text())
	if utf8.RuneCountInString(text) <= minCodeLength {
		return content.CodeExample{}, false
	}

	language := defaultLanguage
	if m := languageRe.FindStringSubmatch(code.AttrOr("class", "")); m != nil {
		language = m[1]
	}
	return content.CodeExample{Code: text, Language: language}, true
}
