package history

import (
	"crypto/rand"
	"io"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/tails/internal/clip"
)

// Handle identifies an entry independently of its position. A handle
// whose entry has been removed no longer resolves.
type Handle struct {
	slot int
	gen  uint32
}

// NoHandle never resolves.
var NoHandle = Handle{slot: -1}

type slot struct {
	entry clip.Entry
	gen   uint32
	live  bool
}

// Store is the bounded, per-language deduplicated clip history, most recently
// added first. Entries live in a slot arena; order holds slot indices.
// Store is not safe for concurrent use.
type Store struct {
	capacity int
	clock    *Clock
	entropy  io.Reader

	slots []slot
	free  []int
	order []int
}

// NewStore creates an empty store. Capacities below 1 are clamped to 1.
func NewStore(capacity int, clock *Clock) *Store {
	if clock == nil {
		clock = NewClock()
	}
	return &Store{
		capacity: clampCapacity(capacity),
		clock:    clock,
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
}

func clampCapacity(c int) int {
	if c < 1 {
		return 1
	}
	return c
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.order)
}

// Capacity returns the maximum number of entries.
func (s *Store) Capacity() int {
	return s.capacity
}

// SetCapacity changes the bound, evicting from the tail when shrinking.
func (s *Store) SetCapacity(c int) {
	s.capacity = clampCapacity(c)
	s.evict()
}

// At returns a copy of the entry at index i.
func (s *Store) At(i int) (clip.Entry, bool) {
	if i < 0 || i >= len(s.order) {
		return clip.Entry{}, false
	}
	return s.slots[s.order[i]].entry.Clone(), true
}

// Handle returns a stable handle for the entry at index i, or NoHandle.
func (s *Store) Handle(i int) Handle {
	if i < 0 || i >= len(s.order) {
		return NoHandle
	}
	idx := s.order[i]
	return Handle{slot: idx, gen: s.slots[idx].gen}
}

// IndexOf resolves h to the entry's current index, or -1 when stale.
func (s *Store) IndexOf(h Handle) int {
	if h.slot < 0 || h.slot >= len(s.slots) {
		return -1
	}
	sl := s.slots[h.slot]
	if !sl.live || sl.gen != h.gen {
		return -1
	}
	for i, idx := range s.order {
		if idx == h.slot {
			return i
		}
	}
	return -1
}

// Contains reports whether an entry with the same language and text exists.
func (s *Store) Contains(languageID string, lines []string) bool {
	text := clip.Entry{Lines: lines}.Text()
	for _, idx := range s.order {
		e := &s.slots[idx].entry
		if e.LanguageID == languageID && e.Text() == text {
			return true
		}
	}
	return false
}

// Insert prepends a new entry unless one with the same language and text
// already exists. The oldest entries are evicted past capacity.
func (s *Store) Insert(languageID string, lines []string, sourceFile string, keywords []string) (clip.Entry, bool) {
	if len(lines) == 0 || s.Contains(languageID, lines) {
		return clip.Entry{}, false
	}

	ts := s.clock.Now()
	e := clip.Entry{
		CreatedAt:  ts,
		ID:         s.newID(ts),
		LanguageID: languageID,
		Lines:      append([]string(nil), lines...),
		SourceFile: sourceFile,
		Keywords:   append([]string(nil), keywords...),
	}
	s.prepend(e)
	s.evict()
	return e.Clone(), true
}

func (s *Store) newID(ts int64) string {
	return ulid.MustNew(uint64(ts), s.entropy).String()
}

func (s *Store) prepend(e clip.Entry) {
	idx := s.alloc(e)
	s.order = append(s.order, 0)
	copy(s.order[1:], s.order)
	s.order[0] = idx
}

func (s *Store) alloc(e clip.Entry) int {
	if n := len(s.free); n > 0 {
		idx := s.free[n-1]
		s.free = s.free[:n-1]
		s.slots[idx].entry = e
		s.slots[idx].live = true
		return idx
	}
	s.slots = append(s.slots, slot{entry: e, gen: 1, live: true})
	return len(s.slots) - 1
}

func (s *Store) release(idx int) {
	s.slots[idx].entry = clip.Entry{}
	s.slots[idx].live = false
	s.slots[idx].gen++
	s.free = append(s.free, idx)
}

func (s *Store) evict() {
	for len(s.order) > s.capacity {
		last := len(s.order) - 1
		s.release(s.order[last])
		s.order = s.order[:last]
	}
}

// DeleteAt removes the entry at index. Out of range is a no-op.
func (s *Store) DeleteAt(index int) bool {
	if index < 0 || index >= len(s.order) {
		return false
	}
	s.release(s.order[index])
	s.order = append(s.order[:index], s.order[index+1:]...)
	return true
}

// DeleteByTimestamp removes the first entry created at createdAt.
// Zero is the "no timestamp" sentinel and never matches.
func (s *Store) DeleteByTimestamp(createdAt int64) bool {
	if createdAt == 0 {
		return false
	}
	for i, idx := range s.order {
		if s.slots[idx].entry.CreatedAt == createdAt {
			return s.DeleteAt(i)
		}
	}
	return false
}

// DeleteByID removes the entry with the given ULID.
func (s *Store) DeleteByID(id string) bool {
	if id == "" {
		return false
	}
	for i, idx := range s.order {
		if s.slots[idx].entry.ID == id {
			return s.DeleteAt(i)
		}
	}
	return false
}

// IndexByID returns the index of the entry with the given ULID, or -1.
func (s *Store) IndexByID(id string) int {
	for i, idx := range s.order {
		if s.slots[idx].entry.ID == id {
			return i
		}
	}
	return -1
}

// IndexByTimestamp returns the index of the first entry created at createdAt, or -1.
func (s *Store) IndexByTimestamp(createdAt int64) int {
	if createdAt == 0 {
		return -1
	}
	for i, idx := range s.order {
		if s.slots[idx].entry.CreatedAt == createdAt {
			return i
		}
	}
	return -1
}

// Clear removes every entry.
func (s *Store) Clear() {
	for _, idx := range s.order {
		s.release(idx)
	}
	s.order = s.order[:0]
}

// Snapshot returns copies of all entries in order.
func (s *Store) Snapshot() []clip.Entry {
	out := make([]clip.Entry, len(s.order))
	for i, idx := range s.order {
		out[i] = s.slots[idx].entry.Clone()
	}
	return out
}

// Load replaces the contents with entries, keeping their order. Entries with
// no lines, duplicates of an earlier entry, and entries past capacity are
// dropped. Missing IDs and missing or repeated timestamps are reissued, and
// the clock moves past every loaded timestamp.
func (s *Store) Load(entries []clip.Entry) {
	s.Clear()

	var maxTS int64
	for _, e := range entries {
		if e.CreatedAt > maxTS {
			maxTS = e.CreatedAt
		}
	}
	s.clock.Observe(maxTS)

	seenTS := make(map[int64]bool, len(entries))
	seenID := make(map[string]bool, len(entries))
	for _, e := range entries {
		if len(s.order) >= s.capacity {
			break
		}
		if len(e.Lines) == 0 || isAllBlank(e.Lines) || s.Contains(e.LanguageID, e.Lines) {
			continue
		}
		e = e.Clone()
		if e.CreatedAt <= 0 || seenTS[e.CreatedAt] {
			e.CreatedAt = s.clock.Now()
		}
		seenTS[e.CreatedAt] = true
		if _, err := ulid.ParseStrict(e.ID); err != nil || seenID[e.ID] {
			e.ID = s.newID(e.CreatedAt)
		}
		seenID[e.ID] = true
		idx := s.alloc(e)
		s.order = append(s.order, idx)
	}
}

func isAllBlank(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return false
		}
	}
	return true
}

// Since reports the time elapsed from createdAt according to the store's clock.
func (s *Store) Since(createdAt int64) time.Duration {
	return s.clock.Time().Sub(time.UnixMilli(createdAt))
}
