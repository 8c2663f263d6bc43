// Package content models documentation scraped from the Swift book and
// keeps it in a directory of JSON files.
package content

import (
	"strings"
)

type CodeExample struct {
	Code     string `json:"code" validate:"required"`
	Language string `json:"language,omitempty"`
}

// Section is the text and code found under one heading of a page.
type Section struct {
	Heading      string        `json:"heading" validate:"required"`
	Level        int           `json:"level" validate:"min=2,max=6"`
	Content      string        `json:"content"`
	CodeExamples []CodeExample `json:"codeExamples" validate:"dive"`
}

// Content is a scraped documentation page.
type Content struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections" validate:"dive"`
}

// FindSection returns the first section whose heading contains heading,
// ignoring case.
func (c *Content) FindSection(heading string) (Section, bool) {
	if c == nil {
		return Section{}, false
	}
	heading = strings.ToLower(heading)
	for _, s := range c.Sections {
		if strings.Contains(strings.ToLower(s.Heading), heading) {
			return s, true
		}
	}
	return Section{}, false
}

// CodeExamples returns the code of every section in page order.
func (c *Content) CodeExamples() []CodeExample {
	if c == nil {
		return nil
	}
	var all []CodeExample
	for _, s := range c.Sections {
		all = append(all, s.CodeExamples...)
	}
	return all
}

func (c *Content) SectionsByLevel(level int) []Section {
	if c == nil {
		return nil
	}
	var sections []Section
	for _, s := range c.Sections {
		if s.Level == level {
			sections = append(sections, s)
		}
	}
	return sections
}

// Counts returns the number of sections and code examples on the page.
func (c *Content) Counts() (sections, examples int) {
	if c == nil {
		return 0, 0
	}
	for _, s := range c.Sections {
		examples += len(s.CodeExamples)
	}
	return len(c.Sections), examples
}
