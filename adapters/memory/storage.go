package memory

import (
	"context"
	"sync"

	"crewkit/core"
)

// Store is a concurrent in-memory Storage implementation.
type Store struct {
	users sync.Map // map[core.UserID]*userRecord
}

type userRecord struct {
	mu   sync.Mutex
	data map[string]string
}

func New() *Store { return &Store{} }

func (s *Store) getOrCreate(user core.UserID) *userRecord {
	if v, ok := s.users.Load(user); ok {
		return v.(*userRecord)
	}
	rec := &userRecord{data: map[string]string{}}
	actual, _ := s.users.LoadOrStore(user, rec)
	return actual.(*userRecord)
}

func (s *Store) Get(_ context.Context, user core.UserID, key string) (string, bool, error) {
	rec := s.getOrCreate(user)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	v, ok := rec.data[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, user core.UserID, key string, value string) error {
	rec := s.getOrCreate(user)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.data[key] = value
	return nil
}

var _ interface {
	Get(context.Context, core.UserID, string) (string, bool, error)
	Set(context.Context, core.UserID, string, string) error
} = (*Store)(nil)
