// Package docc parses DocC-style Swift documentation comments and renders
// them back to Markdown.
package docc

import (
	"encoding/json"
)

// Parameter is a single documented function parameter.
type Parameter struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Comment is the structured form of one documentation comment block.
type Comment struct {
	Summary    string      `json:"summary,omitempty"`
	Parameters []Parameter `json:"parameters,omitempty"`
	Returns    string      `json:"returns,omitempty"`
	Throws     string      `json:"throws,omitempty"`
	Discussion string      `json:"discussion,omitempty"`
	Note       []string    `json:"note,omitempty"`
	Warning    []string    `json:"warning,omitempty"`
	Important  []string    `json:"important,omitempty"`
	SeeAlso    []string    `json:"seeAlso,omitempty"`
}

// IsZero reports whether no field of c was populated.
func (c Comment) IsZero() bool {
	return c.Summary == "" &&
		c.Discussion == "" &&
		c.Returns == "" &&
		c.Throws == "" &&
		len(c.Parameters) == 0 &&
		len(c.Note) == 0 &&
		len(c.Warning) == 0 &&
		len(c.Important) == 0 &&
		len(c.SeeAlso) == 0
}

// Declaration pairs a declared Swift name with the comment preceding it.
type Declaration struct {
	Name    string  `json:"name"`
	Comment Comment `json:"doc"`
}

// Comments maps declaration names to their parsed comments, remembering the
// order in which names were first seen. Setting an existing name replaces
// its comment but keeps its position.
type Comments struct {
	names  []string
	byName map[string]Comment
}

func newComments() *Comments {
	return &Comments{byName: make(map[string]Comment)}
}

func (c *Comments) set(name string, comment Comment) {
	if _, ok := c.byName[name]; !ok {
		c.names = append(c.names, name)
	}
	c.byName[name] = comment
}

// Len returns the number of distinct names.
func (c *Comments) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// Get returns the comment attached to name.
func (c *Comments) Get(name string) (Comment, bool) {
	if c == nil {
		return Comment{}, false
	}
	comment, ok := c.byName[name]
	return comment, ok
}

// Names returns the declaration names in first-seen order.
func (c *Comments) Names() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.names...)
}

// All returns every declaration in first-seen order.
func (c *Comments) All() []Declaration {
	if c == nil {
		return nil
	}
	all := make([]Declaration, 0, len(c.names))
	for _, name := range c.names {
		all = append(all, Declaration{Name: name, Comment: c.byName[name]})
	}
	return all
}

func (c *Comments) MarshalJSON() ([]byte, error) {
	all := c.All()
	if all == nil {
		all = []Declaration{}
	}
	return json.Marshal(all)
}
