// Package services содержит бизнес-логику администрирования тарифных планов:
// создание, чтение списка, изменение цены и удаление.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/parking-manager/internal/lib/duration"
	"github.com/magabrotheeeer/parking-manager/internal/lib/sl"
	"github.com/magabrotheeeer/parking-manager/internal/models"
	"github.com/magabrotheeeer/parking-manager/internal/storage/repository"
)

// Ошибки сервиса тарифных планов.
var (
	// ErrValidation — данные плана не прошли проверку.
	ErrValidation = errors.New("invalid subscription data")
	// ErrNotFound — план с таким id отсутствует.
	ErrNotFound = errors.New("subscription not found")
)

// Ключ кэша списка планов и срок его жизни.
const (
	listCacheKey = "subscriptions:list"
	listCacheTTL = 5 * time.Minute
)

// SubscriptionRepository определяет методы хранилища для тарифных планов.
type SubscriptionRepository interface {
	CreateSubscription(ctx context.Context, sub models.Subscription) (int, error)
	ReadSubscription(ctx context.Context, id int) (*models.Subscription, error)
	ListSubscriptions(ctx context.Context) ([]*models.Subscription, error)
	UpdateSubscriptionPrice(ctx context.Context, id int, price float64) error
	RemoveSubscription(ctx context.Context, id int) error
}

// Cache кэширует список планов между запросами.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// SubscriptionService реализует операции администратора над тарифными планами.
type SubscriptionService struct {
	repo  SubscriptionRepository
	cache Cache
	log   *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
// cache может быть nil — тогда список всегда читается из базы.
func NewSubscriptionService(repo SubscriptionRepository, cache Cache, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create проверяет и сохраняет новый тарифный план, возвращает его id.
func (s *SubscriptionService) Create(ctx context.Context, dummy models.DummySubscription) (int, error) {
	if strings.TrimSpace(dummy.Name) == "" {
		return 0, fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	if _, err := duration.Parse(dummy.Time); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if dummy.Price <= 0 {
		return 0, fmt.Errorf("%w: price must be positive", ErrValidation)
	}

	id, err := s.repo.CreateSubscription(ctx, models.Subscription{
		Name:     dummy.Name,
		Duration: dummy.Time,
		Price:    dummy.Price,
	})
	if err != nil {
		return 0, err
	}

	s.invalidateList(ctx)
	s.log.Info("created subscription plan",
		slog.Int("id", id), slog.String("name", dummy.Name))
	return id, nil
}

// Read возвращает тарифный план по id.
func (s *SubscriptionService) Read(ctx context.Context, id int) (*models.Subscription, error) {
	sub, err := s.repo.ReadSubscription(ctx, id)
	if errors.Is(err, repository.ErrSubscriptionNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// List возвращает все тарифные планы, при возможности — из кэша.
func (s *SubscriptionService) List(ctx context.Context) ([]*models.Subscription, error) {
	var cached []*models.Subscription
	if s.cache != nil {
		found, err := s.cache.Get(ctx, listCacheKey, &cached)
		if err != nil {
			s.log.Warn("failed to read subscriptions from cache", sl.Err(err))
		}
		if found {
			return cached, nil
		}
	}

	subs, err := s.repo.ListSubscriptions(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, listCacheKey, subs, listCacheTTL); err != nil {
			s.log.Warn("failed to cache subscriptions", sl.Err(err))
		}
	}
	return subs, nil
}

// UpdatePrice меняет цену тарифного плана.
func (s *SubscriptionService) UpdatePrice(ctx context.Context, id int, price float64) error {
	if price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrValidation)
	}

	err := s.repo.UpdateSubscriptionPrice(ctx, id, price)
	if errors.Is(err, repository.ErrSubscriptionNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	s.invalidateList(ctx)
	s.log.Info("updated subscription price",
		slog.Int("id", id), slog.Float64("price", price))
	return nil
}

// Remove удаляет тарифный план. Подписки пользователей на этот план
// обнуляются на уровне базы.
func (s *SubscriptionService) Remove(ctx context.Context, id int) error {
	err := s.repo.RemoveSubscription(ctx, id)
	if errors.Is(err, repository.ErrSubscriptionNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	s.invalidateList(ctx)
	s.log.Info("removed subscription plan", slog.Int("id", id))
	return nil
}

func (s *SubscriptionService) invalidateList(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, listCacheKey); err != nil {
		s.log.Warn("failed to invalidate subscriptions cache", sl.Err(err))
	}
}
