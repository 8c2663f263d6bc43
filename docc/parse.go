package docc

import (
	"regexp"
	"strings"
)

type mode uint8

const (
	modeNone mode = iota
	modeParameters
	modeReturns
	modeThrows
	modeNote
	modeWarning
	modeImportant
)

var (
	parametersRe = regexp.MustCompile(`(?i)^- Parameters?:`)
	parameterRe  = regexp.MustCompile(`(?i)^- Parameter\s+(\w+):\s*(.*)$`)
	returnsRe    = regexp.MustCompile(`(?i)^- Returns?:\s*(.*)$`)
	throwsRe     = regexp.MustCompile(`(?i)^- Throws?:\s*(.*)$`)
	seeAlsoRe    = regexp.MustCompile(`(?i)^- See\s?Also:\s*(.*)$`)

	// "- name: description", with optional backticks around the name as
	// written by Format.
	itemRe     = regexp.MustCompile("^- `?(\\w+)`?:")
	itemTextRe = regexp.MustCompile("^- `?(\\w+)`?:\\s*(.+)$")

	noteRe      = regexp.MustCompile(`(?i)^>\s*(?:\*\*)?Note:(?:\*\*)?\s*(.*)$`)
	warningRe   = regexp.MustCompile(`(?i)^>\s*(?:\*\*)?Warning:(?:\*\*)?\s*(.*)$`)
	importantRe = regexp.MustCompile(`(?i)^>\s*(?:\*\*)?Important:(?:\*\*)?\s*(.*)$`)

	// Bold fields as emitted by Format. They hold a complete value on one
	// line and do not open a section.
	boldParametersRe = regexp.MustCompile(`^\*\*Parameters:\*\*\s*$`)
	boldReturnsRe    = regexp.MustCompile(`^\*\*Returns:\*\*\s*(.*)$`)
	boldThrowsRe     = regexp.MustCompile(`^\*\*Throws:\*\*\s*(.*)$`)
	boldSeeAlsoRe    = regexp.MustCompile(`^\*\*See Also:\*\*\s*(.*)$`)
)

// Parse parses the text of a DocC comment with the comment markers already
// stripped. Lines are processed in a single forward pass; any line that is
// not recognised is attributed to the section currently open, or to the
// summary and discussion when no section is open. Parse never fails: text it
// cannot place is dropped.
func Parse(text string) Comment {
	var (
		c       Comment
		current mode
		acc     []string
	)

	accumulate := func(line string) {
		acc = append(acc, line)
		switch current {
		case modeReturns:
			c.Returns = strings.Join(acc, " ")
		case modeThrows:
			c.Throws = strings.Join(acc, " ")
		}
	}

	open := func(m mode, inline string) {
		current, acc = m, nil
		if inline = strings.TrimSpace(inline); inline != "" {
			accumulate(inline)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		if parametersRe.MatchString(line) {
			current = modeParameters
			c.Parameters = []Parameter{}
			continue
		}

		if boldParametersRe.MatchString(line) {
			current, acc = modeNone, nil
			c.Parameters = []Parameter{}
			continue
		}

		if m := parameterRe.FindStringSubmatch(line); m != nil {
			current = modeParameters
			if c.Parameters == nil {
				c.Parameters = []Parameter{}
			}
			if desc := strings.TrimSpace(m[2]); desc != "" {
				c.Parameters = append(c.Parameters, Parameter{Name: m[1], Description: desc})
			}
			continue
		}

		if m := returnsRe.FindStringSubmatch(line); m != nil {
			open(modeReturns, m[1])
			continue
		}

		if m := throwsRe.FindStringSubmatch(line); m != nil {
			open(modeThrows, m[1])
			continue
		}

		if m := seeAlsoRe.FindStringSubmatch(line); m != nil {
			c.SeeAlso = append(c.SeeAlso, strings.TrimSpace(m[1]))
			continue
		}

		if itemRe.MatchString(line) {
			m := itemTextRe.FindStringSubmatch(line)
			if m != nil && c.Parameters != nil {
				c.Parameters = append(c.Parameters, Parameter{Name: m[1], Description: strings.TrimSpace(m[2])})
			}
			continue
		}

		if m := noteRe.FindStringSubmatch(line); m != nil {
			current = modeNote
			c.Note = append(c.Note, strings.TrimSpace(m[1]))
			continue
		}

		if m := warningRe.FindStringSubmatch(line); m != nil {
			current = modeWarning
			c.Warning = append(c.Warning, strings.TrimSpace(m[1]))
			continue
		}

		if m := importantRe.FindStringSubmatch(line); m != nil {
			current = modeImportant
			c.Important = append(c.Important, strings.TrimSpace(m[1]))
			continue
		}

		if m := boldReturnsRe.FindStringSubmatch(line); m != nil {
			current, acc = modeNone, nil
			c.Returns = strings.TrimSpace(m[1])
			continue
		}

		if m := boldThrowsRe.FindStringSubmatch(line); m != nil {
			current, acc = modeNone, nil
			c.Throws = strings.TrimSpace(m[1])
			continue
		}

		if m := boldSeeAlsoRe.FindStringSubmatch(line); m != nil {
			current, acc = modeNone, nil
			c.SeeAlso = append(c.SeeAlso, strings.TrimSpace(m[1]))
			continue
		}

		if current != modeNone {
			// Only returns and throws collect free text; lines under a
			// parameter list or a callout are dropped.
			accumulate(line)
			continue
		}

		switch {
		case c.Summary == "":
			c.Summary = line
		case c.Discussion == "":
			c.Discussion = line
		default:
			c.Discussion += " " + line
		}
	}

	return c
}
