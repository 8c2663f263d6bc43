package main

import (
	"strings"
	"unicode/utf8"

	"github.com/hhhapz/swiftbook/docc"
)

const (
	docLimit  = 2800
	showLimit = 4000
)

// comment renders a doc comment as Markdown. Short form keeps the summary
// only once the whole comment passes 500 bytes; full form cuts at docLimit
// on a block boundary.
func comment(c docc.Comment, full bool) (string, bool) {
	if c.IsZero() {
		return "*No documentation found*", false
	}

	md := docc.Format(c)
	if !full {
		if len(md) < 500 {
			return md, false
		}

		short := c.Summary
		if short == "" || len(short) > 500 {
			short = truncate(md, 400)
		}
		return short + "...\n\n*More documentation omitted*", true
	}

	if len(md) <= docLimit {
		return md, false
	}

	var parts []string
	length := 0
	for _, block := range strings.Split(md, "\n\n") {
		if length+len(block) > docLimit {
			break
		}
		length += len(block) + 2
		parts = append(parts, block)
	}
	parts = append(parts, "*More documentation omitted...*")
	return strings.Join(parts, "\n\n"), true
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
