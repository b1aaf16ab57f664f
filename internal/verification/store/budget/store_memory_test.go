package budget

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmgate/internal/verification/models"
)


func window(day, month string) models.BudgetWindow {
	return models.BudgetWindow{Day: day, Month: month}
}

func TestInMemoryStore_Increment(t *testing.T) {
	ctx := context.Background()
	limits := models.BudgetLimits{Daily: 2, Monthly: 3}

	t.Run("charges until the daily ceiling", func(t *testing.T) {
		s := NewInMemory()
		w := window("2025-03-10", "2025-03")

		_, ok, err := s.Increment(ctx, w, limits)
		require.NoError(t, err)
		assert.True(t, ok)
		usage, ok, err := s.Increment(ctx, w, limits)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, models.BudgetUsage{Daily: 2, Monthly: 2}, usage)

		usage, ok, err = s.Increment(ctx, w, limits)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, models.BudgetUsage{Daily: 2, Monthly: 2}, usage, "denied call is not charged")
	})

	t.Run("day rollover resets daily but keeps monthly", func(t *testing.T) {
		s := NewInMemory()
		for i := 0; i < 2; i++ {
			_, _, err := s.Increment(ctx, window("2025-03-10", "2025-03"), limits)
			require.NoError(t, err)
		}

		usage, err := s.Usage(ctx, window("2025-03-11", "2025-03"))
		require.NoError(t, err)
		assert.Equal(t, models.BudgetUsage{Daily: 0, Monthly: 2}, usage)

		_, ok, err := s.Increment(ctx, window("2025-03-11", "2025-03"), limits)
		require.NoError(t, err)
		assert.True(t, ok)

		_, ok, err = s.Increment(ctx, window("2025-03-11", "2025-03"), limits)
		require.NoError(t, err)
		assert.False(t, ok, "monthly ceiling reached")
	})

	t.Run("concurrent increments never exceed the ceiling", func(t *testing.T) {
		s := NewInMemory()
		w := window("2025-03-10", "2025-03")
		big := models.BudgetLimits{Daily: 25, Monthly: 1000}

		var wg sync.WaitGroup
		var allowed atomic.Int32
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, ok, err := s.Increment(ctx, w, big); err == nil && ok {
					allowed.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(25), allowed.Load())
	})
}
