package provisional

import (
	"context"
	"sync"

	"farmgate/internal/registration/models"
	vmodels "farmgate/internal/verification/models"
	"farmgate/pkg/platform/sentinel"
)

// InMemoryStore keeps provisional registrations in process.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*models.ProvisionalRegistration
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]*models.ProvisionalRegistration)}
}

func (s *InMemoryStore) Create(_ context.Context, reg *models.ProvisionalRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[reg.TempID]; exists {
		return sentinel.ErrConflict
	}
	s.records[reg.TempID] = clone(reg)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, tempID string) (*models.ProvisionalRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reg, ok := s.records[tempID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(reg), nil
}

func (s *InMemoryStore) AttachVerification(_ context.Context, tempID string, outcome vmodels.VerificationOutcome, evidence vmodels.Evidence) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.records[tempID]
	if !ok {
		return sentinel.ErrNotFound
	}
	reg.IDVerified = outcome.Verified
	reg.VerificationData = &outcome
	reg.Evidence = &evidence
	return nil
}

func (s *InMemoryStore) RecordAttempt(_ context.Context, tempID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.records[tempID]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	reg.AttemptsUsed++
	return reg.AttemptsUsed, nil
}

func (s *InMemoryStore) ReleaseAttempt(_ context.Context, tempID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.records[tempID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if reg.AttemptsUsed > 0 {
		reg.AttemptsUsed--
	}
	return nil
}

func (s *InMemoryStore) SetIdentity(_ context.Context, tempID, identityUID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.records[tempID]
	if !ok {
		return sentinel.ErrNotFound
	}
	reg.IdentityUID = identityUID
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, tempID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, tempID)
	return nil
}

func clone(reg *models.ProvisionalRegistration) *models.ProvisionalRegistration {
	c := *reg
	if reg.VerificationData != nil {
		v := reg.VerificationData.WithAttemptsRemaining(reg.VerificationData.AttemptsRemaining)
		c.VerificationData = &v
	}
	if reg.Evidence != nil {
		e := *reg.Evidence
		c.Evidence = &e
	}
	return &c
}
