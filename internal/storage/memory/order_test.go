package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkalinin/storefront-orders/internal/domain/order"
)

func newItems(n int) []order.NewLineItem {
	items := make([]order.NewLineItem, n)
	for i := range items {
		items[i] = order.NewLineItem{ProductID: uuid.NewString(), Quantity: i + 1}
	}
	return items
}

func TestCreate_AssemblesAggregate(t *testing.T) {
	repo := NewOrderRepository()
	userID := uuid.NewString()

	o, err := repo.Create(context.Background(), userID, newItems(3))
	require.NoError(t, err)

	assert.Equal(t, userID, o.UserID)
	assert.Equal(t, order.StatusActive, o.Status)
	assert.Nil(t, o.CompletedAt)
	assert.False(t, o.CreatedAt.IsZero())

	require.Len(t, o.Items, 3)
	seen := make(map[string]bool, 3)
	for _, item := range o.Items {
		assert.Equal(t, o.ID, item.OrderID)
		assert.False(t, seen[item.ID], "line item IDs must be unique")
		seen[item.ID] = true
	}
}

func TestCreate_ThenFindActiveIncludesOrderOnce(t *testing.T) {
	repo := NewOrderRepository()
	userID := uuid.NewString()

	o, err := repo.Create(context.Background(), userID, newItems(1))
	require.NoError(t, err)

	active, err := repo.FindByUserAndStatus(context.Background(), userID, order.StatusActive)
	require.NoError(t, err)

	count := 0
	for _, got := range active {
		if got.ID == o.ID {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestFindByUserAndStatus_FiltersByUserAndStatus(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()
	userA := uuid.NewString()
	userB := uuid.NewString()

	a1, err := repo.Create(ctx, userA, newItems(1))
	require.NoError(t, err)
	a2, err := repo.Create(ctx, userA, newItems(2))
	require.NoError(t, err)
	_, err = repo.Create(ctx, userB, newItems(1))
	require.NoError(t, err)

	_, err = repo.Complete(ctx, userA, a2.ID)
	require.NoError(t, err)

	active, err := repo.FindByUserAndStatus(ctx, userA, order.StatusActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, a1.ID, active[0].ID)
	assert.Len(t, active[0].Items, 1)

	completed, err := repo.FindByUserAndStatus(ctx, userA, order.StatusCompleted)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, a2.ID, completed[0].ID)
	assert.Len(t, completed[0].Items, 2)
}

func TestComplete_SetsStatusAndTimestamp(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()
	userID := uuid.NewString()

	o, err := repo.Create(ctx, userID, newItems(2))
	require.NoError(t, err)

	done, err := repo.Complete(ctx, userID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.Len(t, done.Items, 2)
}

func TestComplete_WrongUser(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	o, err := repo.Create(ctx, uuid.NewString(), newItems(1))
	require.NoError(t, err)

	_, err = repo.Complete(ctx, uuid.NewString(), o.ID)
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestComplete_UnknownOrder(t *testing.T) {
	repo := NewOrderRepository()

	_, err := repo.Complete(context.Background(), uuid.NewString(), uuid.NewString())
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestComplete_SecondCallFailsWithoutOverwriting(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()
	userID := uuid.NewString()

	o, err := repo.Create(ctx, userID, newItems(1))
	require.NoError(t, err)

	first, err := repo.Complete(ctx, userID, o.ID)
	require.NoError(t, err)

	_, err = repo.Complete(ctx, userID, o.ID)
	require.ErrorIs(t, err, order.ErrNotFound)

	completed, err := repo.FindByUserAndStatus(ctx, userID, order.StatusCompleted)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	require.NotNil(t, completed[0].CompletedAt)
	assert.True(t, completed[0].CompletedAt.Equal(*first.CompletedAt),
		"completedAt set by the first call must never be overwritten")
}

func TestComplete_ConcurrentRace(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()
	userID := uuid.NewString()

	o, err := repo.Create(ctx, userID, newItems(1))
	require.NoError(t, err)

	const racers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		notFound  int
	)
	start := make(chan struct{})

	for range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			_, err := repo.Complete(ctx, userID, o.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, order.ErrNotFound):
				notFound++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes, "exactly one completion may win")
	assert.Equal(t, racers-1, notFound)
}

func TestCreate_ReturnedAggregateIsDetached(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()
	userID := uuid.NewString()

	o, err := repo.Create(ctx, userID, newItems(1))
	require.NoError(t, err)

	// Mutating the returned value must not leak into the store.
	o.Items[0].Quantity = 999

	stored, err := repo.FindByUserAndStatus(ctx, userID, order.StatusActive)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 1, stored[0].Items[0].Quantity)
}
