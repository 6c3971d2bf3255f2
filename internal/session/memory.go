package session

import (
	"context"
	"sync"
	"time"
)

// Memory implements Store with in-process concurrency safety. Intended for
// tests and single-node development runs.
type Memory struct {
	mu        sync.RWMutex
	records   map[string]Record
	redirects map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		records:   make(map[string]Record),
		redirects: make(map[string]string),
	}
}

var _ Store = (*Memory)(nil)

func (m *Memory) Get(ctx context.Context, sid string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[sid]
	if !ok {
		return Record{}, ErrNoSession
	}
	return rec, nil
}

func (m *Memory) Put(ctx context.Context, sid string, rec Record) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[sid] = rec
	return nil
}

func (m *Memory) Delete(ctx context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, sid)
	return nil
}

func (m *Memory) SetRedirect(ctx context.Context, sid, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.redirects[sid] = path
	return nil
}

func (m *Memory) TakeRedirect(ctx context.Context, sid string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := m.redirects[sid]
	delete(m.redirects, sid)
	return path, nil
}
