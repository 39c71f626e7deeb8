package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ridloal/stationery-storefront/internal/cart/domain"
	"github.com/ridloal/stationery-storefront/internal/cart/repository"
	"github.com/ridloal/stationery-storefront/internal/cart/repository/mocks"
	catalog "github.com/ridloal/stationery-storefront/internal/catalog/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pen = catalog.Product{
	ID:                   "product-1",
	Name:                 "Gel Pen",
	Price:                decimal.NewFromInt(10),
	DiscountedPrice:      decimal.NewFromInt(8),
	Stock:                100,
	MinimumOrderQuantity: 1,
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(repo repository.SnapshotRepository, idle time.Duration) (*sessionServiceImpl, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	svc := NewSessionService(repo, domain.StockAllow, idle, nil).(*sessionServiceImpl)
	svc.now = clock.Now
	return svc, clock
}

func TestSessionService_NewSession(t *testing.T) {
	ctx := context.TODO()
	svc, _ := newTestService(repository.NewMemorySnapshotRepository(), time.Hour)

	id, cart, err := svc.NewSession(ctx)

	require.NoError(t, err)
	assert.Len(t, id, 36)
	assert.NotNil(t, cart)
	assert.Equal(t, 1, svc.ActiveSessions())

	again, err := svc.Cart(ctx, id)
	require.NoError(t, err)
	assert.Same(t, cart, again)
}

func TestSessionService_Cart(t *testing.T) {
	ctx := context.TODO()

	t.Run("Empty id", func(t *testing.T) {
		svc, _ := newTestService(repository.NewMemorySnapshotRepository(), time.Hour)

		_, err := svc.Cart(ctx, "")

		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("Unknown id starts an empty cart", func(t *testing.T) {
		mockRepo := new(mocks.MockSnapshotRepository)
		mockRepo.On("Load", ctx, "client-id").Return(nil, repository.ErrSnapshotNotFound).Once()
		svc, _ := newTestService(mockRepo, time.Hour)

		cart, err := svc.Cart(ctx, "client-id")

		require.NoError(t, err)
		assert.Zero(t, cart.TotalItems())
		mockRepo.AssertExpectations(t)
	})

	t.Run("Restores a persisted snapshot", func(t *testing.T) {
		snap := domain.NewSnapshot(3, []domain.Entry{{Product: pen, Quantity: 2}})
		mockRepo := new(mocks.MockSnapshotRepository)
		mockRepo.On("Load", ctx, "returning").Return(snap, nil).Once()
		svc, _ := newTestService(mockRepo, time.Hour)

		cart, err := svc.Cart(ctx, "returning")

		require.NoError(t, err)
		assert.Equal(t, 2, cart.TotalItems())
		assert.Equal(t, uint64(3), cart.Snapshot().Version)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Repository failure starts over", func(t *testing.T) {
		mockRepo := new(mocks.MockSnapshotRepository)
		mockRepo.On("Load", ctx, "broken").Return(nil, errors.New("connection refused")).Once()
		svc, _ := newTestService(mockRepo, time.Hour)

		cart, err := svc.Cart(ctx, "broken")

		require.NoError(t, err)
		assert.Zero(t, cart.TotalItems())
	})
}

func TestSessionService_PersistsEveryMutation(t *testing.T) {
	ctx := context.TODO()
	repo := repository.NewMemorySnapshotRepository()
	svc, _ := newTestService(repo, time.Hour)
	id, cart, err := svc.NewSession(ctx)
	require.NoError(t, err)

	_, err = cart.AddToCart(pen, 3)
	require.NoError(t, err)

	saved, err := repo.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, saved.TotalItems)
	assert.True(t, decimal.NewFromInt(24).Equal(saved.TotalPrice))

	cart.ClearCart()
	saved, err = repo.Load(ctx, id)
	require.NoError(t, err)
	assert.True(t, saved.IsEmpty())
}

func TestSessionService_SaveFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.TODO()
	mockRepo := new(mocks.MockSnapshotRepository)
	mockRepo.On("Save", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("domain.Snapshot")).Return(errors.New("redis down"))
	svc, _ := newTestService(mockRepo, time.Hour)
	_, cart, err := svc.NewSession(ctx)
	require.NoError(t, err)

	_, err = cart.AddToCart(pen, 1)

	assert.NoError(t, err)
	assert.Equal(t, 1, cart.TotalItems())
	mockRepo.AssertNumberOfCalls(t, "Save", 1)
}

func TestSessionService_SweepIdle(t *testing.T) {
	ctx := context.TODO()
	repo := repository.NewMemorySnapshotRepository()
	svc, clock := newTestService(repo, 30*time.Minute)

	idleID, idleCart, _ := svc.NewSession(ctx)
	_, _ = idleCart.AddToCart(pen, 2)
	clock.Advance(20 * time.Minute)
	activeID, _, _ := svc.NewSession(ctx)
	clock.Advance(15 * time.Minute)

	evicted := svc.SweepIdle(ctx)

	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, svc.ActiveSessions())

	t.Run("Evicted session comes back from the repository", func(t *testing.T) {
		cart, err := svc.Cart(ctx, idleID)
		require.NoError(t, err)
		assert.NotSame(t, idleCart, cart)
		assert.Equal(t, 2, cart.TotalItems())
	})

	t.Run("Evicted store no longer persists", func(t *testing.T) {
		_, _ = idleCart.AddToCart(pen, 5)
		saved, err := repo.Load(ctx, idleID)
		require.NoError(t, err)
		assert.Equal(t, 2, saved.TotalItems)
	})

	t.Run("Access keeps a session alive", func(t *testing.T) {
		_, err := svc.Cart(ctx, activeID)
		require.NoError(t, err)
		clock.Advance(29 * time.Minute)
		svc.SweepIdle(ctx)
		assert.Equal(t, 2, svc.ActiveSessions())
	})
}

func TestSessionService_CartRacingSweepStillPersists(t *testing.T) {
	ctx := context.TODO()
	for i := 0; i < 200; i++ {
		repo := repository.NewMemorySnapshotRepository()
		svc, clock := newTestService(repo, time.Minute)
		id, _, err := svc.NewSession(ctx)
		require.NoError(t, err)
		clock.Advance(time.Hour)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			svc.SweepIdle(ctx)
		}()
		go func() {
			defer wg.Done()
			cart, err := svc.Cart(ctx, id)
			if assert.NoError(t, err) {
				_, _ = cart.AddToCart(pen, 1)
			}
		}()
		wg.Wait()

		saved, err := repo.Load(ctx, id)
		require.NoError(t, err)
		require.Equal(t, 1, saved.TotalItems, "iteration %d", i)
	}
}

func TestSessionService_SweepDisabled(t *testing.T) {
	svc, clock := newTestService(repository.NewMemorySnapshotRepository(), 0)
	_, _, _ = svc.NewSession(context.TODO())
	clock.Advance(24 * time.Hour)

	assert.Zero(t, svc.SweepIdle(context.TODO()))
	assert.Equal(t, 1, svc.ActiveSessions())
}

func TestSessionService_Sweeper(t *testing.T) {
	svc, _ := newTestService(repository.NewMemorySnapshotRepository(), time.Hour)

	assert.Error(t, svc.StartSweeper("not a schedule"))

	require.NoError(t, svc.StartSweeper("*/30 * * * * *"))
	require.NoError(t, svc.StartSweeper("*/30 * * * * *"))
	svc.StopSweeper()
	svc.StopSweeper()
}
