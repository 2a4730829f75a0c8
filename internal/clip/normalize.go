package clip

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hpungsan/tails/internal/config"
	"github.com/hpungsan/tails/internal/log"
)

// Reject explains why a capture was not stored. The zero value means accepted.
type Reject string

const (
	RejectEmpty        Reject = "empty"
	RejectIgnored      Reject = "ignored"
	RejectTooManyLines Reject = "too_many_lines"
	RejectTooShort     Reject = "too_short"
)

// Rules is the compiled form of the filtering and indexing configuration.
type Rules struct {
	IgnoredRegexes     []*regexp.Regexp
	LineLimit          int
	MinSingleLineChars int

	IgnoredWords          map[string]bool
	KeywordIgnoredRegexes []*regexp.Regexp
}

// CompileRules builds Rules from cfg. Invalid patterns are logged and skipped.
func CompileRules(cfg *config.Config) Rules {
	r := Rules{
		LineLimit:          cfg.ClipLines(),
		MinSingleLineChars: cfg.MinChars(),
		IgnoredWords:       make(map[string]bool, len(cfg.IgnoredWords)),
	}
	for _, p := range cfg.IgnoredRegexes {
		// Clip filters search line by line, like a multiline match
		re, err := regexp.Compile("(?m)" + p)
		if err != nil {
			log.Warn("skipping invalid ignored_regexes pattern %q: %v", p, err)
			continue
		}
		r.IgnoredRegexes = append(r.IgnoredRegexes, re)
	}
	for _, p := range cfg.KeywordIgnoredRegexes {
		re, err := regexp.Compile(p)
		if err != nil {
			log.Warn("skipping invalid keyword_ignored_regexes pattern %q: %v", p, err)
			continue
		}
		r.KeywordIgnoredRegexes = append(r.KeywordIgnoredRegexes, re)
	}
	for _, w := range cfg.IgnoredWords {
		r.IgnoredWords[w] = true
	}
	return r
}

// Normalize turns raw captured text into the canonical line sequence.
// It returns false when the clip is rejected.
func Normalize(raw, eol string, rules Rules) ([]string, bool) {
	lines, reject := Clean(raw, eol, rules)
	return lines, reject == ""
}

// Clean is Normalize with the rejection reason.
func Clean(raw, eol string, rules Rules) ([]string, Reject) {
	if strings.TrimSpace(raw) == "" {
		return nil, RejectEmpty
	}
	for _, re := range rules.IgnoredRegexes {
		if re.MatchString(raw) {
			return nil, RejectIgnored
		}
	}

	lines := dedent(trimBlankLines(SplitLines(raw, eol)))
	if len(lines) == 0 {
		return nil, RejectEmpty
	}
	if rules.LineLimit > 0 && len(lines) > rules.LineLimit {
		return nil, RejectTooManyLines
	}
	if rules.MinSingleLineChars > 0 && len(lines) == 1 && utf8.RuneCountInString(lines[0]) < rules.MinSingleLineChars {
		return nil, RejectTooShort
	}
	return lines, ""
}

// SplitLines splits s on eol. An empty eol splits on "\n" and drops a
// trailing "\r" from each line.
func SplitLines(s, eol string) []string {
	if eol != "" {
		return strings.Split(s, eol)
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// trimBlankLines drops leading and trailing blank lines; interior ones stay.
func trimBlankLines(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && isBlank(lines[start]) {
		start++
	}
	for end > start && isBlank(lines[end-1]) {
		end--
	}
	return lines[start:end]
}

// leadingWhitespace counts the leading whitespace runes of s.
func leadingWhitespace(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			break
		}
		n++
	}
	return n
}

// dedent removes the smallest leading-whitespace run of the non-blank lines
// from every line.
func dedent(lines []string) []string {
	cut := -1
	for _, l := range lines {
		if isBlank(l) {
			continue
		}
		if n := leadingWhitespace(l); cut < 0 || n < cut {
			cut = n
		}
	}
	if cut <= 0 {
		return lines
	}

	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = dropRunes(l, cut)
	}
	return out
}

func dropRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[i:]
		}
		n--
	}
	return ""
}
