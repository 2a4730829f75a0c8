package clip

import "strings"

// Render produces pasteable text: lines joined by eol+indent, with one
// trailing eol for multi-line clips. An empty eol renders as "\n".
func Render(e Entry, indent, eol string) string {
	if eol == "" {
		eol = "\n"
	}
	s := strings.Join(e.Lines, eol+indent)
	if len(e.Lines) > 1 {
		s += eol
	}
	return s
}
