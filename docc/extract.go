package docc

import (
	"regexp"
	"strings"
)

// declRe matches the start of a Swift declaration, allowing attributes and
// modifiers in front of the introducing keyword.
var declRe = regexp.MustCompile(`^` +
	`(?:@\w+(?:\([^)]*\))?\s+)*` +
	`(?:(?:public|private|fileprivate|internal|open)(?:\(set\))?\s+|` +
	`(?:static|class|final|override|mutating|nonmutating|lazy|weak|unowned|indirect|convenience|required|dynamic|nonisolated)\s+)*` +
	`(?:func|struct|class|enum|protocol|extension|var|let|actor|typealias)\s+(\w+)`)

// attrLineRe matches a line holding only attributes, such as a
// @discardableResult written above the declaration it applies to.
var attrLineRe = regexp.MustCompile(`^(?:@\w+(?:\([^)]*\))?\s*)+$`)

// Extract scans Swift source for runs of /// comment lines immediately
// followed by a declaration and returns the parsed comments keyed by the
// declared name. Plain // comments are ignored and do not interrupt a run.
// Any other line ends the current run, attaching it to the line when that
// line is a declaration. A name seen twice keeps its first position and
// takes the later comment.
func Extract(code string) *Comments {
	comments := newComments()

	var block []string
	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "///"):
			block = append(block, strings.TrimSpace(strings.TrimPrefix(trimmed, "///")))
			continue
		case strings.HasPrefix(trimmed, "//"):
			continue
		case len(block) == 0:
			continue
		case attrLineRe.MatchString(trimmed):
			continue
		}

		if m := declRe.FindStringSubmatch(trimmed); m != nil {
			if c := Parse(strings.Join(block, "\n")); !c.IsZero() {
				comments.set(m[1], c)
			}
		}
		block = nil
	}

	return comments
}
