package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/parking-manager/internal/lib/plate"
	"github.com/magabrotheeeer/parking-manager/internal/models"
)

func TestStorage_RegisterAndFindUserByPlate(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	uid, err := storage.RegisterUser(context.Background(), models.User{
		Name:         "Dupont",
		Email:        "dupont@example.com",
		PasswordHash: "hash",
		Role:         models.RoleUser,
		Plate:        "1-XY99ZZ",
		Telephone:    32470000000,
	})
	require.NoError(t, err)
	require.NotEmpty(t, uid)

	// Детектор присылает номер без префикса и в нижнем регистре.
	plain, prefixed := plate.CandidateForms("xy99zz")
	found, err := storage.FindUserByPlate(context.Background(), plain, prefixed)
	require.NoError(t, err)
	assert.Equal(t, uid, found.UID)
	assert.Equal(t, models.DefaultParkingID, found.ParkingID)
}

func TestStorage_RegisterUser_DuplicateEmail(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	factory.CreateUser(t, "Dupont", "dupont@example.com", "hash", "ABC123")

	_, err := storage.RegisterUser(context.Background(), models.User{
		Name:         "Impostor",
		Email:        "dupont@example.com",
		PasswordHash: "hash2",
		Role:         models.RoleUser,
		Plate:        "ZZ000",
		Telephone:    32470000001,
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestStorage_FindUserByPlate_PrefersNewestRegistration(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	older := factory.CreateUserAt(t, "Older", "older@example.com", "ABC123",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := factory.CreateUserAt(t, "Newer", "newer@example.com", "1-abc123",
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	found, err := storage.FindUserByPlate(context.Background(), "ABC123", "1-ABC123")
	require.NoError(t, err)
	assert.Equal(t, newer, found.UID)
	assert.NotEqual(t, older, found.UID)
}

func TestStorage_FindUserByPlate_NotFound(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	_, err := storage.FindUserByPlate(context.Background(), "ZZ000", "1-ZZ000")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStorage_UpdateParkingState_VersionGuard(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	uid := factory.CreateUser(t, "Dupont", "dupont@example.com", "hash", "ABC123")

	now := time.Now().UTC()
	require.NoError(t,
		storage.UpdateParkingState(context.Background(), uid, 0, "1", &now, nil))

	// Повторная запись со старой версией должна быть отвергнута.
	err := storage.UpdateParkingState(context.Background(), uid, 0, "2", &now, nil)
	assert.ErrorIs(t, err, ErrVersionConflict)

	user, err := storage.GetUser(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, "1", user.ParkingID)
	assert.Equal(t, 1, user.Version)
	require.NotNil(t, user.ArrivalTime)
	assert.Nil(t, user.ExitTime)
}

func TestStorage_SubscriptionCRUD(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()

	id, err := storage.CreateSubscription(ctx, models.Subscription{
		Name:     "Premium",
		Duration: "3 Month",
		Price:    49.90,
	})
	require.NoError(t, err)

	sub, err := storage.ReadSubscription(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Premium", sub.Name)
	assert.Equal(t, "3 Month", sub.Duration)
	assert.InDelta(t, 49.90, sub.Price, 0.001)

	require.NoError(t, storage.UpdateSubscriptionPrice(ctx, id, 59.90))
	sub, err = storage.ReadSubscription(ctx, id)
	require.NoError(t, err)
	assert.InDelta(t, 59.90, sub.Price, 0.001)

	subs, err := storage.ListSubscriptions(ctx)
	require.NoError(t, err)
	assert.Len(t, subs, 1)

	require.NoError(t, storage.RemoveSubscription(ctx, id))
	_, err = storage.ReadSubscription(ctx, id)
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
}

func TestStorage_RemoveSubscription_NullsUserReference(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	planID := factory.CreateSubscription(t, "Premium", "3 Month", 49.90)
	uid := factory.CreateUser(t, "Dupont", "dupont@example.com", "hash", "ABC123")

	endDate := time.Now().UTC().AddDate(0, 3, 0)
	require.NoError(t, storage.AssignSubscription(ctx, uid, planID, endDate))

	user, err := storage.GetUser(ctx, uid)
	require.NoError(t, err)
	require.NotNil(t, user.TypeSubscription)
	assert.Equal(t, planID, *user.TypeSubscription)

	require.NoError(t, storage.RemoveSubscription(ctx, planID))

	user, err = storage.GetUser(ctx, uid)
	require.NoError(t, err)
	assert.Nil(t, user.TypeSubscription)
}

func TestStorage_FindSubscriptionsExpiringTomorrow(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	planID := factory.CreateSubscription(t, "Premium", "3 Month", 49.90)

	expiring := factory.CreateUser(t, "Expiring", "expiring@example.com", "hash", "AAA111")
	require.NoError(t, storage.AssignSubscription(ctx, expiring, planID,
		time.Now().UTC().AddDate(0, 0, 1)))

	later := factory.CreateUser(t, "Later", "later@example.com", "hash", "BBB222")
	require.NoError(t, storage.AssignSubscription(ctx, later, planID,
		time.Now().UTC().AddDate(0, 1, 0)))

	infos, err := storage.FindSubscriptionsExpiringTomorrow(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "expiring@example.com", infos[0].Email)
	assert.Equal(t, "Premium", infos[0].PlanName)
}

func TestStorage_SetBlockedAndListUsers(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	uid := factory.CreateUser(t, "Dupont", "dupont@example.com", "hash", "ABC123")
	factory.CreateUser(t, "Martin", "martin@example.com", "hash", "ZZ000")

	require.NoError(t, storage.SetBlocked(ctx, uid, true))

	user, err := storage.GetUser(ctx, uid)
	require.NoError(t, err)
	assert.True(t, user.Blocked)

	users, err := storage.ListUsers(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	page, err := storage.ListUsers(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}
