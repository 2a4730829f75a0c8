package host

import (
	"sync"

	"github.com/hpungsan/tails/internal/clip"
)

// Editor gives access to the active document and its selection.
type Editor interface {
	// Document returns the active document; false when there is none.
	Document() (Document, bool)
	SetSelection(sel clip.Selection)
}

// Inserter is implemented by editors that need to be told about pasted text
// because no real paste command moves their cursor.
type Inserter interface {
	ReplaceSelection(text string)
}

// StaticEditor is an Editor over a fixed document description, used by the
// CLI and tests.
type StaticEditor struct {
	mu  sync.Mutex
	doc *Document
}

// NewStaticEditor returns an editor showing doc.
func NewStaticEditor(doc Document) *StaticEditor {
	return &StaticEditor{doc: &doc}
}

// NoEditor returns an editor with no active document.
func NoEditor() *StaticEditor {
	return &StaticEditor{}
}

func (e *StaticEditor) Document() (Document, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doc == nil {
		return Document{}, false
	}
	return *e.doc, true
}

func (e *StaticEditor) SetSelection(sel clip.Selection) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doc != nil {
		e.doc.Selection = sel
	}
}

// ReplaceSelection moves the cursor past text inserted at the selection start.
func (e *StaticEditor) ReplaceSelection(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doc == nil {
		return
	}
	end := clip.Extend(e.doc.Selection.Start(), text, e.doc.EOL)
	e.doc.Selection = clip.Selection{Anchor: end, Active: end}
}
