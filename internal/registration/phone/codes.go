package phone

import (
	"context"
	"sync"
	"time"

	"farmgate/pkg/platform/sentinel"
)

// Code is a pending one-time code for a phone number.
type Code struct {
	Value     string
	ExpiresAt time.Time
	Attempts  int
}

// Usable reports whether the code may still be checked at now: it fails with
// sentinel.ErrExpired past its lifetime and sentinel.ErrLimitReached once
// maxChecks wrong guesses were recorded.
func (c Code) Usable(now time.Time, maxChecks int) error {
	if !now.Before(c.ExpiresAt) {
		return sentinel.ErrExpired
	}
	if c.Attempts >= maxChecks {
		return sentinel.ErrLimitReached
	}
	return nil
}

// CodeStore holds at most one pending code per phone. Missing codes return
// sentinel.ErrNotFound.
type CodeStore interface {
	Save(ctx context.Context, phone string, code Code) error
	Get(ctx context.Context, phone string) (*Code, error)
	// IncrementAttempts counts one wrong guess and returns the new total.
	IncrementAttempts(ctx context.Context, phone string) (int, error)
	Delete(ctx context.Context, phone string) error
}

type InMemoryCodeStore struct {
	mu    sync.Mutex
	codes map[string]Code
}

func NewInMemoryCodeStore() *InMemoryCodeStore {
	return &InMemoryCodeStore{codes: make(map[string]Code)}
}

func (s *InMemoryCodeStore) Save(_ context.Context, phone string, code Code) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[phone] = code
	return nil
}

func (s *InMemoryCodeStore) Get(_ context.Context, phone string) (*Code, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.codes[phone]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &code, nil
}

func (s *InMemoryCodeStore) IncrementAttempts(_ context.Context, phone string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.codes[phone]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	code.Attempts++
	s.codes[phone] = code
	return code.Attempts, nil
}

func (s *InMemoryCodeStore) Delete(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, phone)
	return nil
}
