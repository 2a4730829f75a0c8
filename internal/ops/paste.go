package ops

import (
	"context"
	"strconv"
	"strings"

	"github.com/hpungsan/tails/internal/clip"
	"github.com/hpungsan/tails/internal/errors"
	"github.com/hpungsan/tails/internal/host"
)

// PasteInput addresses the clip to paste: ID wins over Index.
type PasteInput struct {
	Index int
	ID    string
}

// PasteOutput contains the result of a paste.
type PasteOutput struct {
	Pasted bool   `json:"pasted"`
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Text   string `json:"text,omitempty"`
}

// RingOutput contains the result of a ring paste.
type RingOutput struct {
	PasteOutput
	Selection *clip.Selection `json:"selection,omitempty"`
}

// SmartOutput contains the result of a smart paste.
type SmartOutput struct {
	// Mode is "pick" for an empty selection, "ring" otherwise
	Mode string `json:"mode"`
	RingOutput
}

// CSVInput contains parameters for PasteCSV.
type CSVInput struct {
	Wrap string
}

// PickFunc lets the user choose a clip and returns its ID. ok is false when
// the user dismissed the picker.
type PickFunc func(ctx context.Context) (id string, ok bool, err error)

// Paste renders one clip for the active document and pastes it.
func (s *Session) Paste(ctx context.Context, ed host.Editor, input PasteInput) (*PasteOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := ed.Document()
	if !ok {
		return nil, errors.NewNoEditor("document")
	}
	if s.store.Len() == 0 {
		return nil, errors.NewNoClips()
	}

	index, err := s.resolve(input.ID, input.Index)
	if err != nil {
		return nil, err
	}
	e, _ := s.store.At(index)
	text := clip.Render(e, "", doc.EOL)
	if err := s.emit(ctx, text); err != nil {
		return nil, err
	}
	return &PasteOutput{Pasted: true, Index: index, ID: e.ID, Text: text}, nil
}

// resolve maps an ID or index to a current index.
func (s *Session) resolve(id string, index int) (int, error) {
	if id = strings.TrimSpace(id); id != "" {
		i := s.store.IndexByID(id)
		if i < 0 {
			return -1, errors.NewNotFound(id)
		}
		return i, nil
	}
	if index < 0 || index >= s.store.Len() {
		return -1, errors.NewNotFound(strconv.Itoa(index))
	}
	return index, nil
}

// RingPaste pastes the next clip of the document's language after the ring
// cursor and selects the pasted text, so a repeated ring paste replaces it.
// Pasted is false when there is no other candidate.
func (s *Session) RingPaste(ctx context.Context, ed host.Editor) (*RingOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ringPaste(ctx, ed)
}

func (s *Session) ringPaste(ctx context.Context, ed host.Editor) (*RingOutput, error) {
	doc, ok := ed.Document()
	if !ok {
		return nil, errors.NewNoEditor("editor")
	}

	next := s.ring.Next(s.store, doc.LanguageID, s.cfg.RingLines())
	if next < 0 {
		return &RingOutput{PasteOutput: PasteOutput{Index: s.ring.Index(s.store)}}, nil
	}

	beginning := doc.Selection.Start()
	e, _ := s.store.At(next)
	text := clip.Render(e, "", doc.EOL)
	if err := s.emit(ctx, text); err != nil {
		return nil, err
	}

	s.ring.Set(s.store, next)
	if ins, ok := ed.(host.Inserter); ok {
		ins.ReplaceSelection(text)
	}
	active := beginning
	if after, ok := ed.Document(); ok {
		active = after.Selection.Active
	}
	sel := clip.Selection{Anchor: beginning, Active: active}
	ed.SetSelection(sel)
	s.saveState(ctx)

	return &RingOutput{
		PasteOutput: PasteOutput{Pasted: true, Index: next, ID: e.ID, Text: text},
		Selection:   &sel,
	}, nil
}

// SmartPaste opens the picker when nothing is selected and ring-pastes
// otherwise. The picker runs without the session lock so it can delete
// clips through the session.
func (s *Session) SmartPaste(ctx context.Context, ed host.Editor, pick PickFunc) (*SmartOutput, error) {
	doc, ok := ed.Document()
	if !ok {
		return nil, errors.NewNoEditor("editor")
	}

	if !doc.Selection.Empty() {
		s.mu.Lock()
		defer s.mu.Unlock()
		out, err := s.ringPaste(ctx, ed)
		if err != nil {
			return nil, err
		}
		return &SmartOutput{Mode: "ring", RingOutput: *out}, nil
	}

	if s.Len() == 0 {
		return nil, errors.NewNoClips()
	}
	if pick == nil {
		return nil, errors.NewInvalidRequest("no picker available")
	}
	id, ok, err := pick(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &SmartOutput{Mode: "pick", RingOutput: RingOutput{PasteOutput: PasteOutput{Index: -1}}}, nil
	}

	out, err := s.Paste(ctx, ed, PasteInput{ID: id})
	if err != nil {
		return nil, err
	}
	return &SmartOutput{Mode: "pick", RingOutput: RingOutput{PasteOutput: *out}}, nil
}

// PasteCSV pastes every line of the history as one comma-separated string.
// Pasted is false when the transcoder produced nothing.
func (s *Session) PasteCSV(ctx context.Context, input CSVInput) (*PasteOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store.Len() == 0 {
		return nil, errors.NewNoClips()
	}
	text, ok := clip.ToCSV(s.store.Snapshot(), input.Wrap)
	if !ok {
		return &PasteOutput{Index: -1}, nil
	}
	if err := s.emit(ctx, text); err != nil {
		return nil, err
	}
	return &PasteOutput{Pasted: true, Index: -1, Text: text}, nil
}

// RingPeek reports the index a ring paste would use for languageID without
// pasting; -1 when there is no candidate.
func (s *Session) RingPeek(languageID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.Next(s.store, languageID, s.cfg.RingLines())
}

// ResetRing unsets the ring cursor.
func (s *Session) ResetRing(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ring.Reset()
	s.saveState(ctx)
}
