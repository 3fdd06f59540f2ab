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

	"github.com/magabrotheeeer/parking-manager/internal/lib/password"
	"github.com/magabrotheeeer/parking-manager/internal/models"
	"github.com/magabrotheeeer/parking-manager/internal/storage/repository"
)

// MockUserRepository реализует интерфейс UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetUser(ctx context.Context, uid string) (*models.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SetBlocked(ctx context.Context, uid string, blocked bool) error {
	args := m.Called(ctx, uid, blocked)
	return args.Error(0)
}

func (m *MockUserRepository) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) AssignSubscription(ctx context.Context, uid string, planID int, endDate time.Time) error {
	args := m.Called(ctx, uid, planID, endDate)
	return args.Error(0)
}

// MockSubscriptionRepository реализует интерфейс SubscriptionRepository
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) ReadSubscription(ctx context.Context, id int) (*models.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func storedUser(hash string) *models.User {
	return &models.User{
		UID:          "uid-1",
		Name:         "Dupont",
		Email:        "dupont@example.com",
		PasswordHash: hash,
		Role:         models.RoleUser,
		Plate:        "ABC123",
		Telephone:    32470000000,
		ParkingID:    models.DefaultParkingID,
	}
}

func TestUpdateProfile_KeepsHashWhenPasswordEmpty(t *testing.T) {
	hash, err := password.GetHash("secret")
	require.NoError(t, err)

	users := new(MockUserRepository)
	users.On("GetUser", mock.Anything, "uid-1").Return(storedUser(hash), nil)
	users.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.PasswordHash == hash
	})).Return(nil)

	svc := NewUserService(users, new(MockSubscriptionRepository), testLogger())

	updated, err := svc.UpdateProfile(context.Background(), "uid-1", UpdateInput{
		Name:      "Dupont",
		Telephone: 32470000000,
		Plate:     "XY99ZZ",
	})
	require.NoError(t, err)
	assert.Equal(t, "XY99ZZ", updated.Plate)
	assert.Equal(t, hash, updated.PasswordHash)
	users.AssertExpectations(t)
}

func TestUpdateProfile_RehashesNewPassword(t *testing.T) {
	oldHash, err := password.GetHash("secret")
	require.NoError(t, err)

	users := new(MockUserRepository)
	users.On("GetUser", mock.Anything, "uid-1").Return(storedUser(oldHash), nil)
	users.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.PasswordHash != oldHash &&
			u.PasswordHash != "brand-new" &&
			password.CompareHash(u.PasswordHash, "brand-new") == nil
	})).Return(nil)

	svc := NewUserService(users, new(MockSubscriptionRepository), testLogger())

	_, err = svc.UpdateProfile(context.Background(), "uid-1", UpdateInput{
		Name:     "Dupont",
		Password: "brand-new",
	})
	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestUpdateProfile_DoesNotDoubleHash(t *testing.T) {
	hash, err := password.GetHash("secret")
	require.NoError(t, err)

	users := new(MockUserRepository)
	users.On("GetUser", mock.Anything, "uid-1").Return(storedUser(hash), nil)
	users.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.PasswordHash == hash
	})).Return(nil)

	svc := NewUserService(users, new(MockSubscriptionRepository), testLogger())

	// Клиент прислал обратно сохранённый хэш вместо нового пароля.
	_, err = svc.UpdateProfile(context.Background(), "uid-1", UpdateInput{
		Name:     "Dupont",
		Password: hash,
	})
	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestUpdateProfile_UnknownUser(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetUser", mock.Anything, "missing").Return(nil, repository.ErrUserNotFound)

	svc := NewUserService(users, new(MockSubscriptionRepository), testLogger())

	updated, err := svc.UpdateProfile(context.Background(), "missing", UpdateInput{Name: "X"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, updated)
}

func TestSetBlocked(t *testing.T) {
	users := new(MockUserRepository)
	users.On("SetBlocked", mock.Anything, "uid-1", true).Return(nil)

	svc := NewUserService(users, new(MockSubscriptionRepository), testLogger())

	require.NoError(t, svc.SetBlocked(context.Background(), "uid-1", true))
	users.AssertExpectations(t)
}

func TestSetBlocked_UnknownUser(t *testing.T) {
	users := new(MockUserRepository)
	users.On("SetBlocked", mock.Anything, "missing", true).Return(repository.ErrUserNotFound)

	svc := NewUserService(users, new(MockSubscriptionRepository), testLogger())

	err := svc.SetBlocked(context.Background(), "missing", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssignSubscription(t *testing.T) {
	plans := new(MockSubscriptionRepository)
	plans.On("ReadSubscription", mock.Anything, 7).Return(&models.Subscription{
		ID:       7,
		Name:     "Premium",
		Duration: "3 Month",
		Price:    49.90,
	}, nil)

	users := new(MockUserRepository)
	users.On("AssignSubscription", mock.Anything, "uid-1", 7,
		mock.MatchedBy(func(endDate time.Time) bool {
			expected := time.Now().UTC().AddDate(0, 3, 0)
			return endDate.Sub(expected).Abs() < time.Minute
		})).Return(nil)
	result := storedUser("hash")
	planID := 7
	result.TypeSubscription = &planID
	users.On("GetUser", mock.Anything, "uid-1").Return(result, nil)

	svc := NewUserService(users, plans, testLogger())

	updated, err := svc.AssignSubscription(context.Background(), "uid-1", 7)
	require.NoError(t, err)
	require.NotNil(t, updated.TypeSubscription)
	assert.Equal(t, 7, *updated.TypeSubscription)
	users.AssertExpectations(t)
	plans.AssertExpectations(t)
}

func TestAssignSubscription_UnknownPlan(t *testing.T) {
	plans := new(MockSubscriptionRepository)
	plans.On("ReadSubscription", mock.Anything, 99).
		Return(nil, repository.ErrSubscriptionNotFound)

	svc := NewUserService(new(MockUserRepository), plans, testLogger())

	updated, err := svc.AssignSubscription(context.Background(), "uid-1", 99)
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
	assert.Nil(t, updated)
}

func TestList(t *testing.T) {
	users := new(MockUserRepository)
	users.On("ListUsers", mock.Anything, 10, 0).
		Return([]*models.User{storedUser("hash")}, nil)

	svc := NewUserService(users, new(MockSubscriptionRepository), testLogger())

	list, err := svc.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "uid-1", list[0].UID)
}
