package ops

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hpungsan/tails/internal/clip"
	"github.com/hpungsan/tails/internal/config"
	"github.com/hpungsan/tails/internal/history"
	"github.com/hpungsan/tails/internal/host"
	"github.com/hpungsan/tails/internal/state"
)

// fakeTime is a manually advanced wall clock.
type fakeTime struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeTime) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeTime) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

type testEnv struct {
	session   *Session
	clipboard *host.MemoryClipboard
	commander *host.RecordingCommander
	status    *host.RecordingStatus
	backend   *state.Memory
	time      *fakeTime
	baseDir   string
}

// newTestEnv builds a session over in-memory collaborators. The config has
// copy/cut/paste commands named "copy", "cut" and "paste".
func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.CopyCommand = "copy"
	cfg.CutCommand = "cut"
	cfg.PasteCommand = "paste"
	if mutate != nil {
		mutate(cfg)
	}

	env := &testEnv{
		clipboard: host.NewMemoryClipboard(""),
		commander: &host.RecordingCommander{},
		status:    &host.RecordingStatus{},
		backend:   state.NewMemory(),
		time:      &fakeTime{now: time.UnixMilli(1_700_000_000_000)},
		baseDir:   t.TempDir(),
	}
	env.session = env.open(t, cfg)
	return env
}

// open creates another session over the same backend and clock, like a
// second CLI invocation.
func (env *testEnv) open(t *testing.T, cfg *config.Config) *Session {
	t.Helper()
	s := NewSession(Deps{
		Config:    cfg,
		Backend:   env.backend,
		Scope:     "test",
		Clipboard: env.clipboard,
		Commander: env.commander,
		Status:    env.status,
		Clock:     history.NewClockAt(env.time.Now),
		BaseDir:   env.baseDir,
	})
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return s
}

func goDoc() host.Document {
	return host.Document{LanguageID: "go", EOL: "\n", Path: "/src/app/main.go"}
}

func docFor(lang string) host.Document {
	return host.Document{LanguageID: lang, EOL: "\n", Path: "/src/file." + lang}
}

// capture adds text as a clip of lang and fails the test when it is rejected.
func (env *testEnv) capture(t *testing.T, lang, text string) *CaptureOutput {
	t.Helper()
	out, err := env.session.Capture(context.Background(), text, docFor(lang))
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if !out.Added {
		t.Fatalf("Capture(%q) not added: %s", text, out.Reason)
	}
	env.time.Advance(time.Second)
	return out
}

func editorAt(doc host.Document, line, char int) *host.StaticEditor {
	p := clip.Position{Line: line, Character: char}
	doc.Selection = clip.Selection{Anchor: p, Active: p}
	return host.NewStaticEditor(doc)
}
