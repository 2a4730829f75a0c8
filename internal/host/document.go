package host

import (
	"runtime"
	"strings"

	"github.com/hpungsan/tails/internal/clip"
)

// Document is the editor context needed to capture or render a clip.
type Document struct {
	LanguageID string
	// EOL is "\n", "\r\n", or "" when undetermined.
	EOL        string
	Path       string
	Selection  clip.Selection
	LineIndent string
}

// FileName returns the display name for the document path.
func (d Document) FileName() string {
	return FileName(d.Path, runtime.GOOS == "windows")
}

// FileName returns the last path segment. Only "/" separates segments
// unless windows is set, in which case "\" does too. A path without a
// separator, or one ending in a separator, is returned unchanged.
func FileName(path string, windows bool) string {
	seps := "/"
	if windows {
		seps = `\/`
	}
	i := strings.LastIndexAny(path, seps)
	if i < 0 {
		return path
	}
	if name := path[i+1:]; name != "" {
		return name
	}
	return path
}

// ParseEOL maps "lf", "crlf" and the literal separators to an EOL string.
// Anything else is undetermined.
func ParseEOL(s string) string {
	switch strings.ToLower(s) {
	case "lf", "\n":
		return "\n"
	case "crlf", "\r\n":
		return "\r\n"
	default:
		return ""
	}
}

// DetectEOL returns "\r\n" when text uses CRLF line endings, "\n" when it
// has any newline, and "" otherwise.
func DetectEOL(text string) string {
	switch {
	case strings.Contains(text, "\r\n"):
		return "\r\n"
	case strings.Contains(text, "\n"):
		return "\n"
	default:
		return ""
	}
}

// LineIndent returns the leading whitespace of line.
func LineIndent(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
