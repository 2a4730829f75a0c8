package ops

import (
	"strings"
	"unicode"

	"github.com/hpungsan/tails/internal/clip"
	"github.com/hpungsan/tails/internal/host"
)

// CompletionDetail is the detail text of every keyword completion.
const CompletionDetail = "Clipboard history"

// minInlinePrefix is the shortest typed prefix that triggers inline suggestions.
const minInlinePrefix = 3

// Suggestion is one keyword completion item.
type Suggestion struct {
	Label      string `json:"label"`
	Detail     string `json:"detail"`
	InsertText string `json:"insert_text"`
	ID         string `json:"id"`
}

// CompleteOutput contains keyword completions.
type CompleteOutput struct {
	Items []Suggestion `json:"items"`
}

// InlineInput describes the cursor for inline suggestions.
type InlineInput struct {
	Document host.Document
	// Line is the full text of the cursor's line
	Line string
	// Character is the cursor column, in characters
	Character int
}

// InlineSuggestion is ghost text to show after the cursor.
type InlineSuggestion struct {
	Text string `json:"text"`
	ID   string `json:"id"`
}

// InlineOutput contains inline suggestions.
type InlineOutput struct {
	Items []InlineSuggestion `json:"items"`
}

// Complete offers one completion per keyword of every clip in the
// document's language. Each inserts the whole clip.
func (s *Session) Complete(doc host.Document) *CompleteOutput {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := &CompleteOutput{Items: []Suggestion{}}
	if !s.cfg.Autocomplete() {
		return out
	}

	for i := 0; i < s.store.Len(); i++ {
		e, _ := s.store.At(i)
		if e.LanguageID != doc.LanguageID {
			continue
		}
		insert := clip.Render(e, "", doc.EOL)
		for _, word := range e.Keywords {
			out.Items = append(out.Items, Suggestion{
				Label:      word,
				Detail:     CompletionDetail,
				InsertText: insert,
				ID:         e.ID,
			})
		}
	}
	return out
}

// Inline suggests the rest of clips whose first line starts with what has
// been typed on the cursor's line. The cursor must be at the end of the line.
func (s *Session) Inline(input InlineInput) *InlineOutput {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := &InlineOutput{Items: []InlineSuggestion{}}
	if !s.cfg.Inline() {
		return out
	}

	line := []rune(input.Line)
	if input.Character != len(line) {
		return out
	}
	prefix := strings.TrimLeftFunc(string(line[:input.Character]), unicode.IsSpace)
	if len([]rune(prefix)) < minInlinePrefix {
		return out
	}

	doc := input.Document
	indent := doc.LineIndent
	if indent == "" {
		indent = host.LineIndent(input.Line)
	}
	maxLines := s.cfg.InlineLines()

	for i := 0; i < s.store.Len(); i++ {
		e, _ := s.store.At(i)
		if e.LanguageID != doc.LanguageID {
			continue
		}
		if maxLines > 0 && len(e.Lines) > maxLines {
			continue
		}
		if !strings.HasPrefix(strings.TrimSpace(e.Lines[0]), prefix) {
			continue
		}
		rendered := strings.TrimSpace(clip.Render(e, indent, doc.EOL))
		out.Items = append(out.Items, InlineSuggestion{
			Text: strings.TrimPrefix(rendered, prefix),
			ID:   e.ID,
		})
	}
	return out
}
