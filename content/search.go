package content

import (
	"sort"
	"strings"
)

type MatchType uint8

const (
	NoMatch MatchType = iota
	MatchContent
	MatchHeading
	MatchExact
)

func (m MatchType) String() string {
	switch m {
	case MatchContent:
		return "content"
	case MatchHeading:
		return "heading"
	case MatchExact:
		return "exact"
	}
	return "none"
}

// Match reports how well s matches a keyword query. Every word of the query
// must appear in the heading or the text; a heading equal to the whole query
// is an exact match.
func (s Section) Match(query string) MatchType {
	query = strings.ToLower(strings.TrimSpace(query))
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return NoMatch
	}

	heading := strings.ToLower(s.Heading)
	if heading == query {
		return MatchExact
	}
	text := strings.ToLower(s.Content)

	match := MatchContent
	for _, f := range fields {
		if strings.Contains(heading, f) {
			match = MatchHeading
			continue
		}
		if strings.Contains(text, f) {
			continue
		}
		return NoMatch
	}
	return match
}

// Document is a stored page together with its topic key.
type Document struct {
	Topic   string
	Content *Content
}

type Hit struct {
	Topic   string    `json:"topic"`
	Title   string    `json:"title"`
	Match   MatchType `json:"-"`
	Kind    string    `json:"match"`
	Section Section   `json:"section"`
}

// Search matches query against every section of docs. Exact heading
// matches come first, then heading matches, then text matches; ties are
// broken by heading level, with higher level sections first, and heading.
func Search(docs []Document, query string) []Hit {
	var hits []Hit
	for _, d := range docs {
		if d.Content == nil {
			continue
		}
		for _, s := range d.Content.Sections {
			m := s.Match(query)
			if m == NoMatch {
				continue
			}
			hits = append(hits, Hit{
				Topic:   d.Topic,
				Title:   d.Content.Title,
				Match:   m,
				Kind:    m.String(),
				Section: s,
			})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		h1, h2 := hits[i], hits[j]
		if h1.Match != h2.Match {
			return h1.Match > h2.Match
		}
		if h1.Section.Level != h2.Section.Level {
			return h1.Section.Level < h2.Section.Level
		}
		return h1.Section.Heading < h2.Section.Heading
	})
	return hits
}
