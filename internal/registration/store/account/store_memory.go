package account

import (
	"context"
	"sync"

	"farmgate/internal/registration/models"
	"farmgate/pkg/platform/sentinel"
)

// InMemoryStore is the account directory for single-instance deployments
// and tests. Accounts are keyed by identity UID.
type InMemoryStore struct {
	mu        sync.RWMutex
	accounts  map[string]*models.Account
	farmers   map[string]*models.FarmerProfile
	consumers map[string]*models.ConsumerProfile
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		accounts:  make(map[string]*models.Account),
		farmers:   make(map[string]*models.FarmerProfile),
		consumers: make(map[string]*models.ConsumerProfile),
	}
}

// UpsertAccount keeps the ID and creation time of an existing account.
func (s *InMemoryStore) UpsertAccount(_ context.Context, account *models.Account) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *account
	if existing, ok := s.accounts[account.IdentityUID]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	}
	s.accounts[account.IdentityUID] = &stored
	out := stored
	return &out, nil
}

func (s *InMemoryStore) UpsertFarmerProfile(_ context.Context, profile *models.FarmerProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[profile.IdentityUID]; !ok {
		return sentinel.ErrNotFound
	}
	stored := *profile
	if existing, ok := s.farmers[profile.IdentityUID]; ok {
		stored.CreatedAt = existing.CreatedAt
	}
	s.farmers[profile.IdentityUID] = &stored
	return nil
}

func (s *InMemoryStore) UpsertConsumerProfile(_ context.Context, profile *models.ConsumerProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[profile.IdentityUID]; !ok {
		return sentinel.ErrNotFound
	}
	stored := *profile
	if existing, ok := s.consumers[profile.IdentityUID]; ok {
		stored.CreatedAt = existing.CreatedAt
	}
	s.consumers[profile.IdentityUID] = &stored
	return nil
}

func (s *InMemoryStore) FindByIdentity(_ context.Context, identityUID string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[identityUID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *account
	return &out, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, accountID string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, account := range s.accounts {
		if account.ID == accountID {
			out := *account
			return &out, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// FarmerProfile returns the stored farmer profile.
func (s *InMemoryStore) FarmerProfile(_ context.Context, identityUID string) (*models.FarmerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.farmers[identityUID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *profile
	return &out, nil
}

// ConsumerProfile returns the stored consumer profile.
func (s *InMemoryStore) ConsumerProfile(_ context.Context, identityUID string) (*models.ConsumerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.consumers[identityUID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *profile
	return &out, nil
}
