package history

import "github.com/hpungsan/tails/internal/clip"

// Matches reports whether e is a ring candidate for languageID. A
// maxLineCount of 0 means any length.
func Matches(e clip.Entry, languageID string, maxLineCount int) bool {
	return e.LanguageID == languageID && (maxLineCount == 0 || len(e.Lines) <= maxLineCount)
}

// Advance finds the next ring candidate after afterIndex, wrapping around
// the store once. It returns afterIndex when no other entry matches. When
// afterIndex is unset (-1) or out of range every entry is a candidate and
// no match returns -1. An empty store returns afterIndex.
func Advance(s *Store, afterIndex int, languageID string, maxLineCount int) int {
	n := s.Len()
	if n == 0 {
		return afterIndex
	}

	if afterIndex < 0 || afterIndex >= n {
		for i := 0; i < n; i++ {
			if Matches(s.slots[s.order[i]].entry, languageID, maxLineCount) {
				return i
			}
		}
		return -1
	}

	for step := 1; step < n; step++ {
		i := (afterIndex + step) % n
		if Matches(s.slots[s.order[i]].entry, languageID, maxLineCount) {
			return i
		}
	}
	return afterIndex
}

// Ring is the ring-paste cursor. It follows the last pasted entry by
// handle, so it resets to unset once that entry leaves the store.
type Ring struct {
	h Handle
}

// NewRing returns an unset cursor.
func NewRing() *Ring {
	return &Ring{h: NoHandle}
}

// Index resolves the cursor against s; -1 means unset.
func (r *Ring) Index(s *Store) int {
	i := s.IndexOf(r.h)
	if i < 0 {
		r.h = NoHandle
	}
	return i
}

// Set points the cursor at the entry currently at index i.
func (r *Ring) Set(s *Store, i int) {
	r.h = s.Handle(i)
}

// Reset unsets the cursor.
func (r *Ring) Reset() {
	r.h = NoHandle
}

// Next returns the index the next ring paste should use, or -1 when there is
// nothing new to paste.
func (r *Ring) Next(s *Store, languageID string, maxLineCount int) int {
	cur := r.Index(s)
	next := Advance(s, cur, languageID, maxLineCount)
	if next == cur || next < 0 || next >= s.Len() {
		return -1
	}
	return next
}
