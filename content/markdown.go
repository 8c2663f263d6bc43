package content

import (
	"strings"
)

const omitted = "*More documentation omitted*"

// Markdown renders the section heading, text and code blocks.
func (s Section) Markdown() string {
	var b strings.Builder

	level := s.Level
	if level < 1 || level > 6 {
		level = 2
	}
	b.WriteString(strings.Repeat("#", level) + " " + s.Heading + "\n\n")

	if text := strings.TrimSpace(s.Content); text != "" {
		b.WriteString(text + "\n\n")
	}

	for _, ex := range s.CodeExamples {
		b.WriteString("```" + ex.Language + "\n" + ex.Code + "\n```\n\n")
	}
	return b.String()
}

// Render renders the page as Markdown. Once the output passes limit bytes
// the remaining sections are left out and a note is appended; the second
// result reports whether that happened. A limit of zero or less renders
// everything.
func (c *Content) Render(limit int) (string, bool) {
	if c == nil {
		return "", false
	}

	var b strings.Builder
	if c.Title != "" {
		b.WriteString("# " + c.Title + "\n\n")
	}

	var more bool
	for _, s := range c.Sections {
		if limit > 0 && b.Len() > limit {
			more = true
			break
		}
		b.WriteString(s.Markdown())
	}

	if more {
		b.WriteString(omitted)
	}
	return strings.TrimSpace(b.String()), more
}
