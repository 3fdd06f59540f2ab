// Package services содержит планировщик, который периодически ищет подписки
// с истекающим сроком и ставит уведомления в очередь.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/parking-manager/internal/lib/sl"
	"github.com/magabrotheeeer/parking-manager/internal/models"
)

// Период между проверками истекающих подписок.
const checkInterval = 12 * time.Hour

// SubscriptionRepository определяет выборку подписок с истекающим сроком.
type SubscriptionRepository interface {
	FindSubscriptionsExpiringTomorrow(ctx context.Context) ([]*models.ExpiryInfo, error)
}

// Publisher публикует уведомления в очередь.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// SchedulerService периодически находит истекающие подписки и публикует
// уведомления для сервиса рассылки.
type SchedulerService struct {
	repo      SubscriptionRepository
	publisher Publisher
	log       *slog.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo SubscriptionRepository, publisher Publisher, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// Run запускает цикл проверок: одна проверка сразу, дальше по таймеру до
// отмены контекста.
func (s *SchedulerService) Run(ctx context.Context) {
	s.runFindExpiringSubscriptions(ctx)

	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runFindExpiringSubscriptions(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *SchedulerService) runFindExpiringSubscriptions(ctx context.Context) {
	s.log.Info("starting check for subscriptions expiring tomorrow")
	entries, err := s.repo.FindSubscriptionsExpiringTomorrow(ctx)
	if err != nil {
		s.log.Error("failed to find expiring subscriptions", sl.Err(err))
		return
	}
	if len(entries) == 0 {
		s.log.Info("no expiring subscriptions found")
		return
	}
	s.log.Info("found expiring subscriptions", "count", len(entries))
	for _, entry := range entries {
		if err := s.publisher.Publish("expiring", entry); err != nil {
			s.log.Error("failed to publish expiry notification", sl.Err(err))
		}
	}
}
