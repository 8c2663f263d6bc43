package docc

import (
	"strings"
)

// Format renders c as Markdown. Blocks appear in a fixed order and are
// separated by a blank line; empty fields are left out.
func Format(c Comment) string {
	var b strings.Builder

	if c.Summary != "" {
		b.WriteString(c.Summary + "\n\n")
	}

	if len(c.Parameters) > 0 {
		b.WriteString("**Parameters:**\n")
		for _, p := range c.Parameters {
			b.WriteString("- `" + p.Name + "`: " + p.Description + "\n")
		}
		b.WriteString("\n")
	}

	if c.Returns != "" {
		b.WriteString("**Returns:** " + c.Returns + "\n\n")
	}
	if c.Throws != "" {
		b.WriteString("**Throws:** " + c.Throws + "\n\n")
	}
	if c.Discussion != "" {
		b.WriteString(c.Discussion + "\n\n")
	}

	callouts := []struct {
		label string
		items []string
	}{
		{"Note", c.Note},
		{"Warning", c.Warning},
		{"Important", c.Important},
	}
	for _, callout := range callouts {
		for _, item := range callout.items {
			b.WriteString("> **" + callout.label + ":** " + item + "\n\n")
		}
	}

	for _, ref := range c.SeeAlso {
		b.WriteString("**See Also:** " + ref + "\n\n")
	}

	return strings.TrimSpace(b.String())
}
