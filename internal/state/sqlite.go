package state

import (
	"context"
	"database/sql"
	"sort"

	"github.com/hpungsan/tails/internal/db"
)

// SQLite is the default backend, one row per (scope, key) in tails.db.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite initializes baseDir/tails.db.
func OpenSQLite(baseDir string) (*SQLite, error) {
	handle, err := db.Init(baseDir)
	if err != nil {
		return nil, err
	}
	return &SQLite{db: handle}, nil
}

func (s *SQLite) Load(ctx context.Context, scope, key string) ([]byte, bool, error) {
	return db.GetState(ctx, s.db, scope, key)
}

func (s *SQLite) Save(ctx context.Context, scope, key string, value []byte) error {
	return db.PutState(ctx, s.db, scope, key, value)
}

func (s *SQLite) Scopes(ctx context.Context) ([]string, error) {
	infos, err := db.ListScopes(ctx, s.db)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(infos))
	for _, info := range infos {
		out = append(out, info.Scope)
	}
	sort.Strings(out)
	return out, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
