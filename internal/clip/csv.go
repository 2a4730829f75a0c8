package clip

import (
	"strings"
	"unicode/utf8"
)

// ToCSV folds every line of every entry, in order, into one ", "-joined
// string. When wrap is set, each line is wrapped in it and occurrences of
// wrap's first character are backslash-escaped. Returns false when there is
// nothing to paste.
func ToCSV(entries []Entry, wrap string) (string, bool) {
	var esc string
	if wrap != "" {
		r, _ := utf8.DecodeRuneInString(wrap)
		esc = string(r)
	}

	var b strings.Builder
	n := 0
	produced := false
	for _, e := range entries {
		for _, line := range e.Lines {
			if esc != "" {
				line = strings.ReplaceAll(line, esc, `\`+esc)
			}
			if n > 0 {
				b.WriteString(", ")
			}
			n++
			token := wrap + line + wrap
			if token != "" {
				produced = true
			}
			b.WriteString(token)
		}
	}
	if !produced {
		return "", false
	}
	return b.String(), true
}
