package clip

import (
	"regexp"
	"unicode/utf8"
)

// minKeywordLen is the shortest token offered for completion.
const minKeywordLen = 4

// tokenRegex matches a maximal run outside whitespace, punctuation and quotes.
var tokenRegex = regexp.MustCompile("[^\\s()\\[\\]{}<>,.:;=+*&^%$#@!`~?|\\\\/'\"]+")

// Keywords tokenizes the raw clip text into a deduplicated, filtered list,
// in first-occurrence order.
func Keywords(raw string, rules Rules) []string {
	tokens := tokenRegex.FindAllString(raw, -1)
	if len(tokens) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(tokens))
	var out []string
	for _, tok := range tokens {
		if seen[tok] || ignoreKeyword(tok, rules) {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

func ignoreKeyword(tok string, rules Rules) bool {
	if rules.IgnoredWords[tok] {
		return true
	}
	for _, re := range rules.KeywordIgnoredRegexes {
		if re.MatchString(tok) {
			return true
		}
	}
	return utf8.RuneCountInString(tok) < minKeywordLen
}
