// Package topic holds the table mapping Swift book topic keys to the pages
// they are scraped from.
package topic

import (
	_ "embed"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrUnknownTopic is returned when a key or query matches no topic.
var ErrUnknownTopic = errors.New("unknown topic")

// KeyPattern is the syntax every topic key follows. It is safe to use as a
// file name.
var KeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Topic is one documentation page.
type Topic struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	URL     string   `json:"url"`
	Aliases []string `json:"aliases,omitempty"`
}

type Table struct {
	base    string
	topics  []Topic
	pages   []Topic
	byKey   map[string]int
	aliases map[string]string
}

type file struct {
	Base   string  `yaml:"base" validate:"required,url"`
	Topics []entry `yaml:"topics" validate:"required,min=1,dive"`
	Pages  []group `yaml:"pages" validate:"dive"`
}

type entry struct {
	Key     string   `yaml:"key" validate:"required"`
	Title   string   `yaml:"title" validate:"required"`
	Path    string   `yaml:"path"`
	URL     string   `yaml:"url" validate:"omitempty,url"`
	Aliases []string `yaml:"aliases"`
}

// group lists the sub-pages of one chapter, each stored under its own name.
type group struct {
	Title string   `yaml:"title" validate:"required"`
	Path  string   `yaml:"path" validate:"required"`
	Pages []string `yaml:"pages" validate:"required,min=1,dive,required"`
}

// Parse reads a topic table. Entries give either a path relative to the
// table's base URL or an absolute url.
func Parse(data []byte) (*Table, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "could not parse topic table")
	}
	if err := validator.New().Struct(f); err != nil {
		return nil, errors.Wrap(err, "invalid topic table")
	}

	base, err := url.Parse(f.Base)
	if err != nil {
		return nil, errors.Wrap(err, "invalid base url")
	}

	t := &Table{
		base:    f.Base,
		byKey:   make(map[string]int, len(f.Topics)),
		aliases: make(map[string]string),
	}

	for _, e := range f.Topics {
		if !KeyPattern.MatchString(e.Key) {
			return nil, fmt.Errorf("invalid topic key %q", e.Key)
		}
		if _, ok := t.byKey[e.Key]; ok {
			return nil, fmt.Errorf("duplicate topic key %q", e.Key)
		}

		u := e.URL
		if u == "" {
			ref, err := url.Parse(e.Path)
			if err != nil {
				return nil, fmt.Errorf("invalid path for %q: %w", e.Key, err)
			}
			u = base.ResolveReference(ref).String()
		}

		t.byKey[e.Key] = len(t.topics)
		t.topics = append(t.topics, Topic{
			Key:     e.Key,
			Title:   e.Title,
			URL:     u,
			Aliases: e.Aliases,
		})
	}

	for _, tp := range t.topics {
		for _, alias := range tp.Aliases {
			alias = normalize(alias)
			if _, ok := t.byKey[alias]; ok {
				return nil, fmt.Errorf("alias %q of %q shadows a topic key", alias, tp.Key)
			}
			if owner, ok := t.aliases[alias]; ok && owner != tp.Key {
				return nil, fmt.Errorf("alias %q used by both %q and %q", alias, owner, tp.Key)
			}
			t.aliases[alias] = tp.Key
		}
	}

	seen := make(map[string]bool)
	for _, g := range f.Pages {
		dir := strings.TrimSuffix(g.Path, "/") + "/"
		for _, name := range g.Pages {
			if !KeyPattern.MatchString(name) {
				return nil, fmt.Errorf("invalid page name %q", name)
			}
			if seen[name] {
				return nil, fmt.Errorf("duplicate page %q", name)
			}
			seen[name] = true

			ref, err := url.Parse(dir + name)
			if err != nil {
				return nil, fmt.Errorf("invalid path for page %q: %w", name, err)
			}
			t.pages = append(t.pages, Topic{
				Key:   name,
				Title: g.Title,
				URL:   base.ResolveReference(ref).String(),
			})
		}
	}

	return t, nil
}

//go:embed topics.yaml
var table []byte

var swiftBook *Table

func init() {
	var err error
	swiftBook, err = Parse(table)
	if err != nil {
		panic(err)
	}
}

// Default returns the Swift book table compiled into the binary.
func Default() *Table {
	return swiftBook
}

// Base returns the URL that relative topic paths are resolved against.
func (t *Table) Base() string {
	return t.base
}

// Topics returns every topic in table order.
func (t *Table) Topics() []Topic {
	return append([]Topic(nil), t.topics...)
}

// Pages returns the individual chapter pages in table order. Their keys are
// page names and their titles the chapter title.
func (t *Table) Pages() []Topic {
	return append([]Topic(nil), t.pages...)
}

// Keys returns every topic key in table order.
func (t *Table) Keys() []string {
	keys := make([]string, len(t.topics))
	for i, tp := range t.topics {
		keys[i] = tp.Key
	}
	return keys
}

func (t *Table) Lookup(key string) (Topic, bool) {
	i, ok := t.byKey[key]
	if !ok {
		return Topic{}, false
	}
	return t.topics[i], true
}

// Resolve finds the topic a user query refers to. Queries are matched
// case-insensitively, with spaces and underscores read as dashes, against
// keys first and aliases second.
func (t *Table) Resolve(query string) (Topic, error) {
	q := normalize(query)
	if q == "" {
		return Topic{}, ErrUnknownTopic
	}

	if tp, ok := t.Lookup(q); ok {
		return tp, nil
	}
	if key, ok := t.aliases[q]; ok {
		return t.topics[t.byKey[key]], nil
	}
	return Topic{}, errors.Wrapf(ErrUnknownTopic, "%q", query)
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "-", "_", "-").Replace(s)
	return strings.Trim(s, "-")
}
