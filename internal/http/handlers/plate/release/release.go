// Package release реализует HTTP-обработчик отметки выезда машины с парковки.
package release

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
	"github.com/magabrotheeeer/parking-manager/internal/models"
	parking "github.com/magabrotheeeer/parking-manager/internal/services/parking"
)

// Request — показание детектора на выезде.
type Request struct {
	Plate string `json:"plate"`
}

// Handler управляет HTTP-запросами отметки выезда.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики отметки выезда.
type Service interface {
	ReleasePlate(ctx context.Context, rawPlate string) (*models.User, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отметить выезд машины
// @Description Принимает показание детектора на выезде и освобождает парковочное место владельца.
// @Tags Parking
// @Accept  json
// @Produce  json
// @Param request body Request true "Показание детектора"
// @Success 200 {object} map[string]any "Выезд отмечен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или пустой номер"
// @Failure 404 {object} response.ErrorResponse "Номер не зарегистрирован"
// @Failure 409 {object} response.ErrorResponse "Конкурентное обновление состояния"
// @Failure 500 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /release-plate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plate.release"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	user, err := h.service.ReleasePlate(r.Context(), req.Plate)
	switch {
	case errors.Is(err, parking.ErrEmptyPlate):
		log.Error("empty plate in request")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("plate is required"))
		return
	case errors.Is(err, parking.ErrNotFound):
		log.Info("plate does not match any user", slog.String("plate", req.Plate))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("no user matches plate"))
		return
	case errors.Is(err, parking.ErrConcurrentUpdate):
		log.Error("concurrent update conflict", slog.String("plate", req.Plate))
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("concurrent update, retry later"))
		return
	case err != nil:
		log.Error("failed to release plate", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.ErrorWithDetail("could not release plate", err))
		return
	}

	log.Info("exit recorded", slog.String("uid", user.UID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "user has left parking",
		"user":    user,
	}))
}
