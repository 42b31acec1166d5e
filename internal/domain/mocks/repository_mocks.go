package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/flagpost/flagpost/internal/domain"
)

// MockFlagRepository is an in-memory implementation of domain.FlagRepository
// for testing.
type MockFlagRepository struct {
	mu        sync.Mutex
	Flags     map[string]domain.Flag
	CreateErr error
	GetErr    error
	ListErr   error
	PatchErr  error
	nextID    int
}

func NewMockFlagRepository() *MockFlagRepository {
	return &MockFlagRepository{Flags: make(map[string]domain.Flag)}
}

func (m *MockFlagRepository) Create(ctx context.Context, key, description string, enabled bool) (domain.Flag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return domain.Flag{}, m.CreateErr
	}
	if _, exists := m.Flags[key]; exists {
		return domain.Flag{}, domain.ErrConflict
	}
	m.nextID++
	flag := domain.Flag{
		ID:          fmt.Sprintf("flag-%d", m.nextID),
		Key:         key,
		Description: description,
		Enabled:     enabled,
		Version:     1,
		UpdatedAt:   time.Now().UTC(),
	}
	m.Flags[key] = flag
	return flag, nil
}

func (m *MockFlagRepository) GetByKey(ctx context.Context, key string) (domain.Flag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return domain.Flag{}, m.GetErr
	}
	flag, ok := m.Flags[key]
	if !ok {
		return domain.Flag{}, domain.ErrNotFound
	}
	return flag, nil
}

func (m *MockFlagRepository) List(ctx context.Context, limit int) ([]domain.Flag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	flags := make([]domain.Flag, 0, len(m.Flags))
	for _, flag := range m.Flags {
		flags = append(flags, flag)
		if len(flags) == limit {
			break
		}
	}
	return flags, nil
}

func (m *MockFlagRepository) Patch(ctx context.Context, key string, patch domain.FlagPatch) (domain.Flag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PatchErr != nil {
		return domain.Flag{}, m.PatchErr
	}
	flag, ok := m.Flags[key]
	if !ok {
		return domain.Flag{}, domain.ErrNotFound
	}
	if patch.Description != nil {
		flag.Description = *patch.Description
	}
	if patch.Enabled != nil {
		flag.Enabled = *patch.Enabled
	}
	flag.Version++
	flag.UpdatedAt = time.Now().UTC()
	m.Flags[key] = flag
	return flag, nil
}

// MockEventRepository is an in-memory implementation of
// domain.EventRepository for testing.
type MockEventRepository struct {
	mu        sync.Mutex
	Appended  []domain.Event
	AppendErr error
}

func (m *MockEventRepository) AppendBatch(ctx context.Context, events []domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.Appended = append(m.Appended, events...)
	return nil
}

// Events returns a copy of everything appended so far.
func (m *MockEventRepository) Events() []domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Event, len(m.Appended))
	copy(out, m.Appended)
	return out
}

// MockCounterStore is an in-memory implementation of domain.CounterStore
// for testing.
type MockCounterStore struct {
	mu     sync.Mutex
	Counts map[string]int64
	Err    error
}

func NewMockCounterStore() *MockCounterStore {
	return &MockCounterStore{Counts: make(map[string]int64)}
}

func (m *MockCounterStore) Increment(ctx context.Context, key string, expireAt time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	m.Counts[key]++
	return m.Counts[key], nil
}
