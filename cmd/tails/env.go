package main

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/tails/internal/config"
	"github.com/hpungsan/tails/internal/host"
	"github.com/hpungsan/tails/internal/log"
	"github.com/hpungsan/tails/internal/ops"
	"github.com/hpungsan/tails/internal/state"
)

// appEnv holds what commands share. The session is opened on first use so
// help and version never touch the state backend.
type appEnv struct {
	baseDir string
	cwd     string
	cfg     *config.Config

	// Collaborators; nil ones get the real implementations in open
	clipboard host.Clipboard
	commander host.Commander
	status    host.StatusDisplay
	backend   state.Backend

	session *ops.Session
}

func newAppEnv(baseDir, cwd string, cfg *config.Config) *appEnv {
	return &appEnv{baseDir: baseDir, cwd: cwd, cfg: cfg}
}

// open returns the session for scope, creating it on the first call.
func (e *appEnv) open(ctx context.Context, scope string) (*ops.Session, error) {
	if e.session != nil {
		return e.session, nil
	}

	if e.backend == nil {
		backend, err := state.Open(e.cfg.StateBackend, e.baseDir)
		if err != nil {
			return nil, err
		}
		e.backend = backend
	}
	if e.clipboard == nil {
		if host.SystemClipboardSupported() {
			e.clipboard = host.SystemClipboard{}
		} else {
			log.Warn("no system clipboard available; using an in-memory clipboard")
			e.clipboard = host.NewMemoryClipboard("")
		}
	}
	if e.commander == nil {
		e.commander = host.ExecCommander{}
	}
	if e.status == nil {
		e.status = &host.LogStatus{}
	}
	if scope == "" {
		scope = repoScope(e.cwd, e.baseDir)
	}

	s := ops.NewSession(ops.Deps{
		Config:    e.cfg,
		Backend:   e.backend,
		Scope:     scope,
		Clipboard: e.clipboard,
		Commander: e.commander,
		Status:    e.status,
		BaseDir:   e.baseDir,
	})
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	e.session = s
	return s, nil
}

// close releases the session or, when none was opened, the backend.
func (e *appEnv) close() {
	var err error
	switch {
	case e.session != nil:
		err = e.session.Close()
	case e.backend != nil:
		err = e.backend.Close()
	}
	if err != nil {
		log.Warn("close state: %v", err)
	}
}

// configPaths are the files a config reload reads.
func (e *appEnv) configPaths() []string {
	repo := config.FindRepoConfig(e.cwd)
	if repo == "" {
		repo = filepath.Join(e.cwd, ".tails", "config.json")
	}
	return []string{filepath.Join(e.baseDir, "config.json"), repo}
}

func (e *appEnv) reload() (*config.Config, error) {
	return config.LoadWithRepo(e.baseDir, e.cwd)
}

// serve runs fn next to a config watcher that reconfigures s on change.
// The watcher stops when fn returns.
func (e *appEnv) serve(ctx context.Context, s *ops.Session, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return fn(gctx)
	})
	g.Go(func() error {
		return config.Watch(gctx, e.configPaths(), e.reload, func(cfg *config.Config) {
			log.SetLevel(cfg.LogLevel)
			s.Reconfigure(gctx, cfg)
		})
	})
	return g.Wait()
}

// repoScope names the persistence scope after the enclosing repository:
// the nearest directory holding .git or a .tails directory other than
// globalDir. Outside a repository it is ops.DefaultScope.
func repoScope(startDir, globalDir string) string {
	if startDir == "" {
		return ops.DefaultScope
	}
	dir := startDir
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return filepath.Base(dir)
		}
		if local := filepath.Join(dir, ".tails"); local != filepath.Clean(globalDir) {
			if _, err := os.Stat(local); err == nil {
				return filepath.Base(dir)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ops.DefaultScope
		}
		dir = parent
	}
}
