package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/flowfit/internal/domain/model"
)

// MemoryStore keeps submissions in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]Submission
	byKey map[string]string // idempotency key -> id
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]Submission), byKey: make(map[string]string)}
}

func (m *MemoryStore) Save(ctx context.Context, s Submission) error {
	defer observe("save", time.Now())
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.IdempotencyKey != "" {
		if _, ok := m.byKey[s.IdempotencyKey]; ok {
			return ErrDuplicateKey
		}
	}
	if _, ok := m.byID[s.ID]; ok {
		return ErrConflict
	}
	s.Ratings = append([]model.Rating(nil), s.Ratings...)
	m.byID[s.ID] = s
	if s.IdempotencyKey != "" {
		m.byKey[s.IdempotencyKey] = s.ID
	}
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (Submission, error) {
	defer observe("get", time.Now())
	if err := ctx.Err(); err != nil {
		return Submission{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byID[id]
	if !ok {
		return Submission{}, ErrNotFound
	}
	s.Ratings = append([]model.Rating(nil), s.Ratings...)
	return s, nil
}

func (m *MemoryStore) GetByKey(ctx context.Context, key string) (Submission, error) {
	defer observe("get_by_key", time.Now())
	if err := ctx.Err(); err != nil {
		return Submission{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byKey[key]
	if !ok || key == "" {
		return Submission{}, ErrNotFound
	}
	s := m.byID[id]
	s.Ratings = append([]model.Rating(nil), s.Ratings...)
	return s, nil
}

func (m *MemoryStore) List(ctx context.Context) ([]Submission, error) {
	defer observe("list", time.Now())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := make([]Submission, 0, len(m.byID))
	for _, s := range m.byID {
		s.Ratings = append([]model.Rating(nil), s.Ratings...)
		out = append(out, s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID), nil
}

func (m *MemoryStore) Close() error { return nil }
