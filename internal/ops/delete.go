package ops

import (
	"context"
)

// DeleteOutput contains the result of a delete. Deleting something that is
// not there is not an error; Deleted is false.
type DeleteOutput struct {
	Deleted bool `json:"deleted"`
	Count   int  `json:"count"`
}

// ClearOutput contains the result of Clear.
type ClearOutput struct {
	Cleared int `json:"cleared"`
}

// DeleteAt removes the clip at index.
func (s *Session) DeleteAt(ctx context.Context, index int) *DeleteOutput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleted(ctx, s.store.DeleteAt(index))
}

// DeleteByTimestamp removes the first clip created at createdAt.
func (s *Session) DeleteByTimestamp(ctx context.Context, createdAt int64) *DeleteOutput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleted(ctx, s.store.DeleteByTimestamp(createdAt))
}

// DeleteByID removes the clip with the given ID.
func (s *Session) DeleteByID(ctx context.Context, id string) *DeleteOutput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleted(ctx, s.store.DeleteByID(id))
}

func (s *Session) deleted(ctx context.Context, ok bool) *DeleteOutput {
	if ok {
		s.changed(ctx)
	}
	return &DeleteOutput{Deleted: ok, Count: s.store.Len()}
}

// Clear removes every clip.
func (s *Session) Clear(ctx context.Context) *ClearOutput {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.store.Len()
	s.store.Clear()
	s.changed(ctx)
	return &ClearOutput{Cleared: n}
}
