package scrape

import (
	"strings"

	"github.com/hhhapz/swiftbook/content"
)

// segmenter folds a token stream into sections. A section runs from a
// non-empty heading of level 2 or deeper up to the next such heading.
type segmenter struct {
	open     *content.Section
	sections []content.Section
}

// feed applies one token. An h1 or an empty heading neither closes the open
// section nor starts one, so the text after it stays with the section above.
// Text before the first section heading is discarded.
func (s *segmenter) feed(t token) {
	switch t.kind {
	case headingToken:
		if t.text == "" || t.level < 2 {
			return
		}
		s.flush()
		s.open = &content.Section{
			Heading:      t.text,
			Level:        t.level,
			CodeExamples: []content.CodeExample{},
		}

	case paragraphToken:
		if s.open != nil {
			s.open.Content += t.text + "\n\n"
		}

	case codeToken:
		if s.open == nil {
			return
		}
		for _, ex := range s.open.CodeExamples {
			if ex.Code == t.code.Code {
				return
			}
		}
		s.open.CodeExamples = append(s.open.CodeExamples, t.code)
	}
}

// flush keeps the open section if it gathered any text or code.
func (s *segmenter) flush() {
	if s.open != nil && (strings.TrimSpace(s.open.Content) != "" || len(s.open.CodeExamples) > 0) {
		s.sections = append(s.sections, *s.open)
	}
	s.open = nil
}

func (s *segmenter) finish() []content.Section {
	s.flush()

	sections := make([]content.Section, 0, len(s.sections))
	for _, sec := range s.sections {
		if sec.Heading != "" {
			sections = append(sections, sec)
		}
	}
	return sections
}
