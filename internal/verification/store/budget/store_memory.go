package budget

import (
	"context"
	"sync"

	"farmgate/internal/verification/models"
)

// InMemoryStore keeps the counters in process. Suitable for a single
// instance; restarts reset the budget.
type InMemoryStore struct {
	mu         sync.Mutex
	day        string
	dayCount   int
	month      string
	monthCount int
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Usage(_ context.Context, window models.BudgetWindow) (models.BudgetUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.roll(window)
	return models.BudgetUsage{Daily: s.dayCount, Monthly: s.monthCount}, nil
}

func (s *InMemoryStore) Increment(_ context.Context, window models.BudgetWindow, limits models.BudgetLimits) (models.BudgetUsage, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.roll(window)
	if s.dayCount >= limits.Daily || s.monthCount >= limits.Monthly {
		return models.BudgetUsage{Daily: s.dayCount, Monthly: s.monthCount}, false, nil
	}
	s.dayCount++
	s.monthCount++
	return models.BudgetUsage{Daily: s.dayCount, Monthly: s.monthCount}, true, nil
}

// roll resets a counter whose key no longer matches the window.
func (s *InMemoryStore) roll(window models.BudgetWindow) {
	if s.day != window.Day {
		s.day = window.Day
		s.dayCount = 0
	}
	if s.month != window.Month {
		s.month = window.Month
		s.monthCount = 0
	}
}
