package clip

import (
	"fmt"
	"strings"
)

// Entry is one retained clip.
type Entry struct {
	// CreatedAt is the capture time in Unix milliseconds, unique within a history
	CreatedAt int64 `json:"created_at"`

	// ID is a ULID assigned on insert
	ID string `json:"id"`

	// LanguageID is the language tag of the source document at capture time
	LanguageID string `json:"language_id"`

	// Lines is the normalized clip body (never empty, never all blank)
	Lines []string `json:"lines"`

	// SourceFile is the display name of the originating file
	SourceFile string `json:"source_file,omitempty"`

	// Keywords are distinct tokens of the raw text, used for completion
	Keywords []string `json:"keywords,omitempty"`
}

// Text returns the lines joined with "\n", the canonical form used for dedup.
func (e Entry) Text() string {
	return strings.Join(e.Lines, "\n")
}

// LineCount returns the number of lines.
func (e Entry) LineCount() int {
	return len(e.Lines)
}

// Clone returns a deep copy so callers cannot alias store-owned slices.
func (e Entry) Clone() Entry {
	out := e
	out.Lines = append([]string(nil), e.Lines...)
	if e.Keywords != nil {
		out.Keywords = append([]string(nil), e.Keywords...)
	}
	return out
}

// Label is the picker label: first line trimmed, "..." appended for multi-line clips.
func Label(e Entry) string {
	if len(e.Lines) == 0 {
		return ""
	}
	label := strings.TrimSpace(e.Lines[0])
	if len(e.Lines) > 1 {
		label += "..."
	}
	return label
}

// Detail is the picker description, e.g. "... 3 lines, from 'main.go'".
func Detail(e Entry) string {
	unit := "line"
	if len(e.Lines) > 1 {
		unit = "lines"
	}
	return fmt.Sprintf("... %d %s, from '%s'", len(e.Lines), unit, e.SourceFile)
}
