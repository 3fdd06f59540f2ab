// Package services содержит бизнес-логику управления профилями пользователей:
// обновление профиля, блокировку и привязку тарифного плана.
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/parking-manager/internal/lib/duration"
	"github.com/magabrotheeeer/parking-manager/internal/lib/password"
	"github.com/magabrotheeeer/parking-manager/internal/models"
	"github.com/magabrotheeeer/parking-manager/internal/storage/repository"
)

// Ошибки сервиса пользователей.
var (
	// ErrNotFound — пользователь с таким uid отсутствует.
	ErrNotFound = errors.New("user not found")
	// ErrSubscriptionNotFound — привязываемый тарифный план отсутствует.
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// UserRepository определяет методы хранилища для работы с пользователями.
type UserRepository interface {
	GetUser(ctx context.Context, uid string) (*models.User, error)
	UpdateProfile(ctx context.Context, user models.User) error
	SetBlocked(ctx context.Context, uid string, blocked bool) error
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	AssignSubscription(ctx context.Context, uid string, planID int, endDate time.Time) error
}

// SubscriptionRepository определяет чтение тарифного плана при привязке.
type SubscriptionRepository interface {
	ReadSubscription(ctx context.Context, id int) (*models.Subscription, error)
}

// UpdateInput — изменяемые поля профиля. Пустой Password означает
// "пароль не менялся" и сохраняет текущий хэш без изменений.
type UpdateInput struct {
	Name                      string
	Firstname                 *string
	Telephone                 int64
	Plate                     string
	ProfileImageName          *string
	Password                  string
	RequiresAccessibleParking bool
}

// UserService реализует операции над профилями пользователей.
type UserService struct {
	users UserRepository
	plans SubscriptionRepository
	log   *slog.Logger
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(users UserRepository, plans SubscriptionRepository, log *slog.Logger) *UserService {
	return &UserService{
		users: users,
		plans: plans,
		log:   log,
	}
}

// Get возвращает пользователя по uid.
func (s *UserService) Get(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.users.GetUser(ctx, uid)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile обновляет профиль. Пароль перехешируется только если в запросе
// пришло новое значение; уже захешированное значение повторно не хешируется.
func (s *UserService) UpdateProfile(ctx context.Context, uid string, input UpdateInput) (*models.User, error) {
	current, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	passwordHash := current.PasswordHash
	if input.Password != "" && !password.IsHash(input.Password) {
		passwordHash, err = password.GetHash(input.Password)
		if err != nil {
			return nil, err
		}
	}

	updated := *current
	updated.Name = input.Name
	updated.Firstname = input.Firstname
	updated.Telephone = input.Telephone
	updated.Plate = input.Plate
	updated.ProfileImageName = input.ProfileImageName
	updated.PasswordHash = passwordHash
	updated.RequiresAccessibleParking = input.RequiresAccessibleParking

	if err := s.users.UpdateProfile(ctx, updated); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.log.Info("updated user profile", slog.String("uid", uid))
	return &updated, nil
}

// SetBlocked выставляет признак блокировки пользователя.
func (s *UserService) SetBlocked(ctx context.Context, uid string, blocked bool) error {
	err := s.users.SetBlocked(ctx, uid, blocked)
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	s.log.Info("changed user blocked flag",
		slog.String("uid", uid), slog.Bool("blocked", blocked))
	return nil
}

// List возвращает пользователей с пагинацией.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return s.users.ListUsers(ctx, limit, offset)
}

// AssignSubscription привязывает пользователя к тарифному плану и вычисляет
// дату окончания подписки из длительности плана.
func (s *UserService) AssignSubscription(ctx context.Context, uid string, planID int) (*models.User, error) {
	plan, err := s.plans.ReadSubscription(ctx, planID)
	if errors.Is(err, repository.ErrSubscriptionNotFound) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}

	d, err := duration.Parse(plan.Duration)
	if err != nil {
		return nil, err
	}
	endDate := d.AddTo(time.Now().UTC())

	if err := s.users.AssignSubscription(ctx, uid, planID, endDate); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Get(ctx, uid)
}
