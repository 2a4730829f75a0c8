package state

import (
	"context"
	"sort"
	"sync"
)

// Memory is a process-local backend for tests and --no-persist runs.
type Memory struct {
	mu     sync.Mutex
	values map[string]map[string][]byte
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, scope, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[scope][key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) Save(_ context.Context, scope, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.values[scope] == nil {
		m.values[scope] = make(map[string][]byte)
	}
	m.values[scope][key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Scopes(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.values))
	for scope := range m.values {
		out = append(out, scope)
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) Close() error {
	return nil
}
