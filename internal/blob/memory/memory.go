package memory

import (
	"context"
	"sync"

	"cassa/internal/blob"
)

type Store struct {
	mu    sync.Mutex
	items map[string][]byte
}

var _ blob.Store = (*Store)(nil)

func New() *Store {
	return &Store{items: make(map[string][]byte)}
}

// Get returns a copy of the stored blob.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := blob.ValidateKey(key); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

// Put stores a copy of data under key.
func (s *Store) Put(_ context.Context, key string, data []byte) error {
	if err := blob.ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = append([]byte(nil), data...)
	return nil
}
