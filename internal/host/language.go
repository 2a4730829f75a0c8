package host

import (
	"path/filepath"
	"strings"

	enry "github.com/go-enry/go-enry/v2"
)

// PlainText is the language of documents nothing else matches.
const PlainText = "plaintext"

// languageIDs maps go-enry names to the editor language identifiers clips are
// tagged with, where lowercasing alone is not enough.
var languageIDs = map[string]string{
	"C#":               "csharp",
	"C++":              "cpp",
	"Shell":            "shellscript",
	"Objective-C":      "objective-c",
	"Vim Script":       "viml",
	"Jupyter Notebook": "jupyter",
	"Text":             PlainText,
}

// DetectLanguage infers a language identifier from the file name, or from a
// shebang or modeline in content when there is no file name. Content is
// ignored when path is set so one document always maps to one language.
func DetectLanguage(path string, content []byte) string {
	var lang string
	if path != "" {
		lang = enry.GetLanguage(filepath.Base(path), nil)
	} else if len(content) > 0 {
		if l, safe := enry.GetLanguageByShebang(content); safe {
			lang = l
		} else if l, safe := enry.GetLanguageByModeline(content); safe {
			lang = l
		}
	}
	if lang == "" {
		return PlainText
	}
	return LanguageID(lang)
}

// LanguageID converts a go-enry language name to an editor language identifier.
func LanguageID(name string) string {
	if id, ok := languageIDs[name]; ok {
		return id
	}
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}
