package clip

import "unicode/utf8"

// Position is a zero-based line/character location in a document.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Before reports whether p comes before q.
func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Character < q.Character
}

// Selection is an anchored range; Active is where the cursor sits.
type Selection struct {
	Anchor Position `json:"anchor"`
	Active Position `json:"active"`
}

// Empty reports whether the selection covers no text.
func (s Selection) Empty() bool {
	return s.Anchor == s.Active
}

// Start returns the earlier end of the selection.
func (s Selection) Start() Position {
	if s.Active.Before(s.Anchor) {
		return s.Active
	}
	return s.Anchor
}

// Extend returns the position reached after inserting text at start.
func Extend(start Position, text, eol string) Position {
	lines := SplitLines(text, eol)
	if len(lines) == 1 {
		return Position{Line: start.Line, Character: start.Character + utf8.RuneCountInString(text)}
	}
	last := lines[len(lines)-1]
	return Position{Line: start.Line + len(lines) - 1, Character: utf8.RuneCountInString(last)}
}
