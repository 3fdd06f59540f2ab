package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/parking-manager/internal/models"
	"github.com/magabrotheeeer/parking-manager/internal/storage/repository"
)

// MockSubscriptionRepository реализует интерфейс SubscriptionRepository
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) CreateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	args := m.Called(ctx, sub)
	return args.Int(0), args.Error(1)
}

func (m *MockSubscriptionRepository) ReadSubscription(ctx context.Context, id int) (*models.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) ListSubscriptions(ctx context.Context) ([]*models.Subscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) UpdateSubscriptionPrice(ctx context.Context, id int, price float64) error {
	args := m.Called(ctx, id, price)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) RemoveSubscription(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCache реализует интерфейс Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Invalidate(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestCreate_Success(t *testing.T) {
	repo := new(MockSubscriptionRepository)
	repo.On("CreateSubscription", mock.Anything, models.Subscription{
		Name:     "Premium",
		Duration: "3 Month",
		Price:    49.90,
	}).Return(7, nil)

	svc := NewSubscriptionService(repo, nil, testLogger())

	id, err := svc.Create(context.Background(), models.DummySubscription{
		Name:  "Premium",
		Time:  "3 Month",
		Price: 49.90,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, id)
	repo.AssertExpectations(t)
}

func TestCreate_Validation(t *testing.T) {
	cases := []struct {
		name  string
		dummy models.DummySubscription
	}{
		{"пустое имя", models.DummySubscription{Name: "", Time: "1 Month", Price: 10}},
		{"имя из пробелов", models.DummySubscription{Name: "   ", Time: "1 Month", Price: 10}},
		{"некорректная длительность", models.DummySubscription{Name: "P", Time: "3 Fortnight", Price: 10}},
		{"нулевая цена", models.DummySubscription{Name: "P", Time: "1 Month", Price: 0}},
		{"отрицательная цена", models.DummySubscription{Name: "P", Time: "1 Month", Price: -5}},
		{"нулевое значение длительности", models.DummySubscription{Name: "P", Time: "0 Month", Price: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockSubscriptionRepository)
			svc := NewSubscriptionService(repo, nil, testLogger())

			id, err := svc.Create(context.Background(), tc.dummy)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Zero(t, id)
			repo.AssertNotCalled(t, "CreateSubscription", mock.Anything, mock.Anything)
		})
	}
}

func TestCreate_InvalidatesCache(t *testing.T) {
	repo := new(MockSubscriptionRepository)
	repo.On("CreateSubscription", mock.Anything, mock.Anything).Return(1, nil)

	cache := new(MockCache)
	cache.On("Invalidate", mock.Anything, listCacheKey).Return(nil)

	svc := NewSubscriptionService(repo, cache, testLogger())

	_, err := svc.Create(context.Background(), models.DummySubscription{
		Name: "Basic", Time: "1 Month", Price: 10,
	})
	require.NoError(t, err)
	cache.AssertExpectations(t)
}

func TestList_CacheHit(t *testing.T) {
	repo := new(MockSubscriptionRepository)

	cached := []*models.Subscription{{ID: 1, Name: "Basic", Duration: "1 Month", Price: 10}}
	cache := new(MockCache)
	cache.On("Get", mock.Anything, listCacheKey, mock.Anything).
		Run(func(args mock.Arguments) {
			out := args.Get(2).(*[]*models.Subscription)
			*out = cached
		}).Return(true, nil)

	svc := NewSubscriptionService(repo, cache, testLogger())

	subs, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cached, subs)
	repo.AssertNotCalled(t, "ListSubscriptions", mock.Anything)
}

func TestList_CacheMissReadsStoreAndCaches(t *testing.T) {
	stored := []*models.Subscription{
		{ID: 1, Name: "Basic", Duration: "1 Month", Price: 10},
		{ID: 2, Name: "Premium", Duration: "1 Year", Price: 99},
	}
	repo := new(MockSubscriptionRepository)
	repo.On("ListSubscriptions", mock.Anything).Return(stored, nil)

	cache := new(MockCache)
	cache.On("Get", mock.Anything, listCacheKey, mock.Anything).Return(false, nil)
	cache.On("Set", mock.Anything, listCacheKey, stored, listCacheTTL).Return(nil)

	svc := NewSubscriptionService(repo, cache, testLogger())

	subs, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stored, subs)
	cache.AssertExpectations(t)
}

func TestUpdatePrice_UnknownPlan(t *testing.T) {
	repo := new(MockSubscriptionRepository)
	repo.On("UpdateSubscriptionPrice", mock.Anything, 99, 15.0).
		Return(repository.ErrSubscriptionNotFound)

	svc := NewSubscriptionService(repo, nil, testLogger())

	err := svc.UpdatePrice(context.Background(), 99, 15.0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePrice_RejectsNonPositive(t *testing.T) {
	repo := new(MockSubscriptionRepository)
	svc := NewSubscriptionService(repo, nil, testLogger())

	err := svc.UpdatePrice(context.Background(), 1, 0)
	assert.ErrorIs(t, err, ErrValidation)
	repo.AssertNotCalled(t, "UpdateSubscriptionPrice", mock.Anything, mock.Anything, mock.Anything)
}

func TestRemove_Success(t *testing.T) {
	repo := new(MockSubscriptionRepository)
	repo.On("RemoveSubscription", mock.Anything, 1).Return(nil)

	cache := new(MockCache)
	cache.On("Invalidate", mock.Anything, listCacheKey).Return(nil)

	svc := NewSubscriptionService(repo, cache, testLogger())

	require.NoError(t, svc.Remove(context.Background(), 1))
	cache.AssertExpectations(t)
}

func TestRemove_UnknownPlan(t *testing.T) {
	repo := new(MockSubscriptionRepository)
	repo.On("RemoveSubscription", mock.Anything, 99).
		Return(repository.ErrSubscriptionNotFound)

	svc := NewSubscriptionService(repo, nil, testLogger())

	err := svc.Remove(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}
