package ops

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/hpungsan/tails/internal/clip"
	"github.com/hpungsan/tails/internal/config"
	"github.com/hpungsan/tails/internal/errors"
	"github.com/hpungsan/tails/internal/history"
	"github.com/hpungsan/tails/internal/host"
	"github.com/hpungsan/tails/internal/log"
	"github.com/hpungsan/tails/internal/state"
)

// DefaultScope is the persistence scope used when no workspace is given.
const DefaultScope = "default"

// Deps are the collaborators a Session is built from. Nil collaborators are
// replaced with in-memory or no-op implementations.
type Deps struct {
	Config    *config.Config
	Backend   state.Backend
	Scope     string
	Clipboard host.Clipboard
	Commander host.Commander
	Status    host.StatusDisplay
	Clock     *history.Clock
	// BaseDir holds the exports directory (~/.tails).
	BaseDir string
}

// Session is one clip history with its cursors and throttle state. Every
// operation takes the session lock, so callers on different goroutines see
// the operations one at a time.
type Session struct {
	mu sync.Mutex

	cfg   *config.Config
	rules clip.Rules
	store *history.Store
	ring  *history.Ring
	clock *history.Clock

	backend   state.Backend
	scope     string
	clipboard host.Clipboard
	commander host.Commander
	status    host.StatusDisplay
	baseDir   string

	// Cut throttle and debounce state, in Unix milliseconds
	lastCutAt      int64
	lastAddedAt    int64
	lastCaptureAt  int64
	lastCaptureSum string
}

// sessionState is what survives between processes besides the history.
type sessionState struct {
	RingCreatedAt  int64  `json:"ring_created_at,omitempty"`
	LastCutAt      int64  `json:"last_cut_at,omitempty"`
	LastAddedAt    int64  `json:"last_added_at,omitempty"`
	LastCaptureAt  int64  `json:"last_capture_at,omitempty"`
	LastCaptureSum string `json:"last_capture_sum,omitempty"`
}

// NewSession creates a session. Call Load before use to restore persisted state.
func NewSession(deps Deps) *Session {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	clock := deps.Clock
	if clock == nil {
		clock = history.NewClock()
	}
	scope := deps.Scope
	if scope == "" {
		scope = DefaultScope
	}
	cb := deps.Clipboard
	if cb == nil {
		cb = host.NewMemoryClipboard("")
	}
	cmd := deps.Commander
	if cmd == nil {
		cmd = host.ExecCommander{}
	}
	status := deps.Status
	if status == nil {
		status = &host.LogStatus{}
	}

	return &Session{
		cfg:       cfg,
		rules:     clip.CompileRules(cfg),
		store:     history.NewStore(cfg.Capacity, clock),
		ring:      history.NewRing(),
		clock:     clock,
		backend:   deps.Backend,
		scope:     scope,
		clipboard: cb,
		commander: cmd,
		status:    status,
		baseDir:   deps.BaseDir,
	}
}

// Scope returns the persistence scope.
func (s *Session) Scope() string {
	return s.scope
}

// Config returns the active configuration.
func (s *Session) Config() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Load restores history (when persistence is enabled) and session state.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend != nil && s.cfg.Persist() {
		data, ok, err := s.backend.Load(ctx, s.scope, state.HistoryKey)
		if err != nil {
			return errors.NewInternal(fmt.Errorf("load history: %w", err))
		}
		if ok {
			var entries []clip.Entry
			if err := json.Unmarshal(data, &entries); err != nil {
				log.Warn("discarding unreadable history for %s: %v", s.scope, err)
			} else {
				s.store.Load(entries)
			}
		}
	}

	if s.backend != nil {
		data, ok, err := s.backend.Load(ctx, s.scope, state.SessionKey)
		if err != nil {
			return errors.NewInternal(fmt.Errorf("load session state: %w", err))
		}
		if ok {
			var st sessionState
			if err := json.Unmarshal(data, &st); err != nil {
				log.Warn("discarding unreadable session state for %s: %v", s.scope, err)
			} else {
				s.restoreState(st)
			}
		}
	}

	log.With(log.Fields{"scope": s.scope, "clips": s.store.Len()}).Debug("session loaded")
	s.notify()
	return nil
}

func (s *Session) restoreState(st sessionState) {
	if i := s.store.IndexByTimestamp(st.RingCreatedAt); i >= 0 {
		s.ring.Set(s.store, i)
	}
	s.lastCutAt = st.LastCutAt
	s.lastAddedAt = st.LastAddedAt
	s.lastCaptureAt = st.LastCaptureAt
	s.lastCaptureSum = st.LastCaptureSum
}

// Close releases the persistence backend.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backend == nil {
		return nil
	}
	err := s.backend.Close()
	s.backend = nil
	return err
}

// Reconfigure applies a new configuration, e.g. after a config file reload.
func (s *Session) Reconfigure(ctx context.Context, cfg *config.Config) {
	if cfg == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg = cfg
	s.rules = clip.CompileRules(cfg)
	before := s.store.Len()
	s.store.SetCapacity(cfg.Capacity)
	if s.store.Len() != before {
		s.changed(ctx)
	}
}

// changed persists the history and refreshes the status after a mutation.
func (s *Session) changed(ctx context.Context) {
	s.persist(ctx)
	s.notify()
}

func (s *Session) persist(ctx context.Context) {
	if s.backend == nil || !s.cfg.Persist() {
		return
	}
	data, err := json.Marshal(s.store.Snapshot())
	if err != nil {
		log.Error("encode history: %v", err)
		return
	}
	if err := s.backend.Save(ctx, s.scope, state.HistoryKey, data); err != nil {
		log.Error("save history for %s: %v", s.scope, err)
	}
}

func (s *Session) saveState(ctx context.Context) {
	if s.backend == nil {
		return
	}
	st := sessionState{
		LastCutAt:      s.lastCutAt,
		LastAddedAt:    s.lastAddedAt,
		LastCaptureAt:  s.lastCaptureAt,
		LastCaptureSum: s.lastCaptureSum,
	}
	if i := s.ring.Index(s.store); i >= 0 {
		e, _ := s.store.At(i)
		st.RingCreatedAt = e.CreatedAt
	}
	data, err := json.Marshal(st)
	if err != nil {
		log.Error("encode session state: %v", err)
		return
	}
	if err := s.backend.Save(ctx, s.scope, state.SessionKey, data); err != nil {
		log.Error("save session state for %s: %v", s.scope, err)
	}
}

func (s *Session) notify() {
	if label := StatusLabel(s.store.Len()); label != "" {
		s.status.Show(label)
	} else {
		s.status.Hide()
	}
}

// StatusLabel is the clip count label; empty means hidden.
func StatusLabel(n int) string {
	switch {
	case n <= 0:
		return ""
	case n == 1:
		return "1 clip"
	default:
		return fmt.Sprintf("%d clips", n)
	}
}

func (s *Session) nowMs() int64 {
	return s.clock.Time().UnixMilli()
}

// runCommand runs a configured host command. Empty commands are skipped.
func (s *Session) runCommand(ctx context.Context, command string) error {
	if command == "" {
		return nil
	}
	if err := s.commander.Run(ctx, command); err != nil {
		if ctx.Err() != nil {
			return errors.NewCancelled("command")
		}
		return errors.NewCommandFailed(command, err)
	}
	return nil
}

// emit puts text on the clipboard and triggers the host paste command.
func (s *Session) emit(ctx context.Context, text string) error {
	if err := s.clipboard.WriteText(ctx, text); err != nil {
		return errors.NewClipboardUnavailable(err)
	}
	return s.runCommand(ctx, s.cfg.PasteCommand)
}

func (s *Session) exportsDir() string {
	if s.baseDir == "" {
		dir, err := DefaultExportsDir()
		if err != nil {
			return ""
		}
		return dir
	}
	return filepath.Join(s.baseDir, "exports")
}

func checksum(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
