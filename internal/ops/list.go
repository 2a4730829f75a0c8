package ops

import (
	"github.com/hpungsan/tails/internal/clip"
)

// ListItem summarizes one clip for pickers.
type ListItem struct {
	Index      int    `json:"index"`
	ID         string `json:"id"`
	CreatedAt  int64  `json:"created_at"`
	LanguageID string `json:"language_id"`
	Label      string `json:"label"`
	Detail     string `json:"detail"`
	LineCount  int    `json:"line_count"`
	SourceFile string `json:"source_file,omitempty"`
}

// ListOutput contains the history, most recent first.
type ListOutput struct {
	Items    []ListItem `json:"items"`
	Count    int        `json:"count"`
	Capacity int        `json:"capacity"`
	Status   string     `json:"status"`
}

// GetInput addresses one clip: ID wins over Index.
type GetInput struct {
	Index int
	ID    string
}

// GetOutput is one clip in full.
type GetOutput struct {
	ListItem
	Lines    []string `json:"lines"`
	Keywords []string `json:"keywords"`
	Text     string   `json:"text"`
}

// StatusOutput contains the clip count label.
type StatusOutput struct {
	Count int    `json:"count"`
	Label string `json:"label"`
	Scope string `json:"scope"`
}

func toListItem(i int, e clip.Entry) ListItem {
	return ListItem{
		Index:      i,
		ID:         e.ID,
		CreatedAt:  e.CreatedAt,
		LanguageID: e.LanguageID,
		Label:      clip.Label(e),
		Detail:     clip.Detail(e),
		LineCount:  len(e.Lines),
		SourceFile: e.SourceFile,
	}
}

// List returns every clip.
func (s *Session) List() *ListOutput {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]ListItem, 0, s.store.Len())
	for i, e := range s.store.Snapshot() {
		items = append(items, toListItem(i, e))
	}
	return &ListOutput{
		Items:    items,
		Count:    len(items),
		Capacity: s.store.Capacity(),
		Status:   StatusLabel(len(items)),
	}
}

// Get returns one clip with its lines and keywords.
func (s *Session) Get(input GetInput) (*GetOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.resolve(input.ID, input.Index)
	if err != nil {
		return nil, err
	}
	e, _ := s.store.At(i)
	keywords := e.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return &GetOutput{
		ListItem: toListItem(i, e),
		Lines:    e.Lines,
		Keywords: keywords,
		Text:     e.Text(),
	}, nil
}

// Len returns the number of clips.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Len()
}

// Status returns the clip count label.
func (s *Session) Status() *StatusOutput {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.store.Len()
	return &StatusOutput{Count: n, Label: StatusLabel(n), Scope: s.scope}
}
