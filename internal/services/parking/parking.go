// Package services содержит бизнес-логику проверки номеров: резолвер,
// который сопоставляет показание детектора с пользователем и обновляет его
// парковочное состояние.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/parking-manager/internal/lib/plate"
	"github.com/magabrotheeeer/parking-manager/internal/lib/sl"
	"github.com/magabrotheeeer/parking-manager/internal/models"
	"github.com/magabrotheeeer/parking-manager/internal/storage/repository"
)

// Ошибки резолвера. HTTP-слой переводит их в статусы ответа.
var (
	// ErrEmptyPlate — детектор прислал пустой номер; хранилище не опрашивается.
	ErrEmptyPlate = errors.New("plate is required")
	// ErrNotFound — ни одна из форм номера не совпала с зарегистрированным пользователем.
	ErrNotFound = errors.New("no user matches plate")
	// ErrConcurrentUpdate — конкурентные детекции одного номера исчерпали попытки записи.
	ErrConcurrentUpdate = errors.New("parking state update conflicted")
	// ErrStoreUnavailable — хранилище недоступно или истёк таймаут.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Число перечитываний записи при конфликте версий.
const maxUpdateRetries = 3

// UserRepository определяет методы хранилища, нужные резолверу.
type UserRepository interface {
	// FindUserByPlate ищет пользователя по двум формам номера без учёта регистра.
	FindUserByPlate(ctx context.Context, plain, prefixed string) (*models.User, error)
	// UpdateParkingState записывает парковочные поля с проверкой версии.
	UpdateParkingState(ctx context.Context, uid string, version int,
		parkingID string, arrivalTime, exitTime *time.Time) error
}

// Publisher публикует событие въезда в очередь.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// ParkingService реализует проверку номера и выдачу парковочного места.
type ParkingService struct {
	repo            UserRepository
	publisher       Publisher
	log             *slog.Logger
	slots           []string
	accessibleSlots []string
	nextSlot        atomic.Uint64
}

// NewParkingService создает новый экземпляр ParkingService.
// publisher может быть nil — тогда события въезда не публикуются.
func NewParkingService(repo UserRepository, publisher Publisher, log *slog.Logger,
	slots, accessibleSlots []string) *ParkingService {
	if len(slots) == 0 {
		slots = []string{"1"}
	}
	return &ParkingService{
		repo:            repo,
		publisher:       publisher,
		log:             log,
		slots:           slots,
		accessibleSlots: accessibleSlots,
	}
}

// CheckPlate находит пользователя по показанию детектора и отмечает въезд:
// выдаёт место, ставит arrival_time, сбрасывает exit_time. Возвращает
// обновлённого пользователя.
//
// Запись защищена оптимистичной проверкой версии: при конкурентной детекции
// того же номера запись перечитывается и попытка повторяется.
func (s *ParkingService) CheckPlate(ctx context.Context, rawPlate string) (*models.User, error) {
	if strings.TrimSpace(rawPlate) == "" {
		return nil, ErrEmptyPlate
	}

	plain, prefixed := plate.CandidateForms(rawPlate)
	s.log.Info("plate normalized",
		slog.String("raw", rawPlate), slog.String("normalized", plain))

	for range maxUpdateRetries {
		user, err := s.findUser(ctx, plain, prefixed)
		if err != nil {
			return nil, err
		}

		slot := s.assignSlot(user)
		now := time.Now().UTC()

		err = s.repo.UpdateParkingState(ctx, user.UID, user.Version, slot, &now, nil)
		if errors.Is(err, repository.ErrVersionConflict) {
			s.log.Warn("version conflict on parking update, retrying",
				slog.String("uid", user.UID))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}

		user.ParkingID = slot
		user.ArrivalTime = &now
		user.ExitTime = nil
		user.Version++

		s.publishEntry(user)
		return user, nil
	}
	return nil, ErrConcurrentUpdate
}

// ReleasePlate отмечает выезд: ставит exit_time и освобождает место.
func (s *ParkingService) ReleasePlate(ctx context.Context, rawPlate string) (*models.User, error) {
	if strings.TrimSpace(rawPlate) == "" {
		return nil, ErrEmptyPlate
	}

	plain, prefixed := plate.CandidateForms(rawPlate)

	for range maxUpdateRetries {
		user, err := s.findUser(ctx, plain, prefixed)
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		err = s.repo.UpdateParkingState(ctx, user.UID, user.Version,
			models.DefaultParkingID, user.ArrivalTime, &now)
		if errors.Is(err, repository.ErrVersionConflict) {
			s.log.Warn("version conflict on parking release, retrying",
				slog.String("uid", user.UID))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}

		user.ParkingID = models.DefaultParkingID
		user.ExitTime = &now
		user.Version++
		return user, nil
	}
	return nil, ErrConcurrentUpdate
}

func (s *ParkingService) findUser(ctx context.Context, plain, prefixed string) (*models.User, error) {
	user, err := s.repo.FindUserByPlate(ctx, plain, prefixed)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return user, nil
}

// assignSlot выдаёт идентификатор места по кругу; пользователям с признаком
// requires_accessible_parking — из выделенного пула, если он настроен.
func (s *ParkingService) assignSlot(user *models.User) string {
	pool := s.slots
	if user.RequiresAccessibleParking && len(s.accessibleSlots) > 0 {
		pool = s.accessibleSlots
	}
	n := s.nextSlot.Add(1) - 1
	return pool[n%uint64(len(pool))]
}

// publishEntry отправляет событие въезда в очередь. Ошибка публикации не
// отменяет уже зафиксированный въезд, только логируется.
func (s *ParkingService) publishEntry(user *models.User) {
	if s.publisher == nil {
		return
	}
	event := models.EntryEvent{
		EventID:     uuid.NewString(),
		UserUID:     user.UID,
		Email:       user.Email,
		Name:        user.Name,
		Plate:       user.Plate,
		ParkingID:   user.ParkingID,
		ArrivalTime: *user.ArrivalTime,
	}
	if err := s.publisher.Publish("entry", event); err != nil {
		s.log.Warn("failed to publish entry event", sl.Err(err))
		return
	}
	s.log.Info("published entry event", slog.String("event_id", event.EventID))
}
