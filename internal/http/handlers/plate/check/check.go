// Package check реализует HTTP-обработчик проверки номера машины.
//
// Handler принимает показание детектора, передает его резолверу, который
// находит пользователя и отмечает въезд, и возвращает подтверждение вместе
// с данными пользователя в JSON-формате.
//
// В случае ошибок формируются соответствующие HTTP-ответы с описанием проблемы.
package check

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/parking-manager/internal/http/response"
	"github.com/magabrotheeeer/parking-manager/internal/lib/sl"
	"github.com/magabrotheeeer/parking-manager/internal/metrics"
	"github.com/magabrotheeeer/parking-manager/internal/models"
	parking "github.com/magabrotheeeer/parking-manager/internal/services/parking"
)

// Request — показание детектора номеров.
type Request struct {
	Plate string `json:"plate"`
}

// Handler управляет HTTP-запросами проверки номера от детектора.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Резолвер номеров
}

// Service описывает интерфейс бизнес-логики проверки номера.
type Service interface {
	CheckPlate(ctx context.Context, rawPlate string) (*models.User, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Проверить номер машины
// @Description Принимает показание детектора, ищет владельца и отмечает въезд на парковку.
// @Tags Parking
// @Accept  json
// @Produce  json
// @Param request body Request true "Показание детектора"
// @Success 200 {object} map[string]any "Владелец найден, въезд отмечен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или пустой номер"
// @Failure 404 {object} response.ErrorResponse "Номер не зарегистрирован"
// @Failure 409 {object} response.ErrorResponse "Конкурентное обновление состояния"
// @Failure 500 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /check-plate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plate.check"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		metrics.PlateChecks.WithLabelValues(metrics.ResultInvalidRequest).Inc()
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("plate", req.Plate))

	user, err := h.service.CheckPlate(r.Context(), req.Plate)
	switch {
	case errors.Is(err, parking.ErrEmptyPlate):
		log.Error("empty plate in request")
		metrics.PlateChecks.WithLabelValues(metrics.ResultInvalidRequest).Inc()
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("plate is required"))
		return
	case errors.Is(err, parking.ErrNotFound):
		log.Info("plate does not match any user", slog.String("plate", req.Plate))
		metrics.PlateChecks.WithLabelValues(metrics.ResultNotFound).Inc()
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("no user matches plate"))
		return
	case errors.Is(err, parking.ErrConcurrentUpdate):
		log.Error("concurrent update conflict", slog.String("plate", req.Plate))
		metrics.PlateChecks.WithLabelValues(metrics.ResultError).Inc()
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("concurrent update, retry later"))
		return
	case err != nil:
		log.Error("failed to check plate", sl.Err(err))
		metrics.PlateChecks.WithLabelValues(metrics.ResultError).Inc()
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.ErrorWithDetail("could not check plate", err))
		return
	}

	log.Info("plate matched, entry recorded",
		slog.String("uid", user.UID), slog.String("parking_id", user.ParkingID))
	metrics.PlateChecks.WithLabelValues(metrics.ResultOK).Inc()
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "user has parked",
		"user":    user,
	}))
}
