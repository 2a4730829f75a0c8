// Package state persists session data under (scope, key) pairs. A scope is
// one workspace; keys are fixed identifiers such as HistoryKey.
package state

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Fixed state keys.
const (
	HistoryKey = "tails.history"
	SessionKey = "tails.session"
)

// Backend kinds accepted by Open.
const (
	KindSQLite = "sqlite"
	KindBolt   = "bolt"
	KindMemory = "memory"
)

// Backend stores opaque values per scope and key.
type Backend interface {
	// Load returns the stored value; the bool is false when nothing is stored.
	Load(ctx context.Context, scope, key string) ([]byte, bool, error)
	Save(ctx context.Context, scope, key string, value []byte) error
	// Scopes lists the scopes that have stored values, sorted.
	Scopes(ctx context.Context) ([]string, error)
	Close() error
}

// Open creates the backend named by kind under baseDir.
// An empty kind selects SQLite.
func Open(kind, baseDir string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindSQLite:
		return OpenSQLite(baseDir)
	case KindBolt:
		return OpenBolt(filepath.Join(baseDir, "tails.bolt"))
	case KindMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown state backend %q", kind)
	}
}
