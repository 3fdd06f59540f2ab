// Package update реализует HTTP-обработчик обновления профиля пользователя.
//
// Handler принимает JSON-запрос с новыми данными профиля, валидирует их,
// извлекает uid пользователя из контекста и делегирует обновление сервису.
// Пароль перехешируется только если пришло новое значение.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/parking-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/parking-manager/internal/http/response"
	"github.com/magabrotheeeer/parking-manager/internal/lib/sl"
	"github.com/magabrotheeeer/parking-manager/internal/models"
	user "github.com/magabrotheeeer/parking-manager/internal/services/user"
)

// Request — структура входных данных обновления профиля.
// Пустой Password означает, что пароль не меняется.
type Request struct {
	Name                      string  `json:"name" validate:"required,min=2,max=50"`
	Firstname                 *string `json:"firstname,omitempty"`
	Telephone                 int64   `json:"telephone" validate:"required"`
	Plate                     string  `json:"plate" validate:"required"`
	ProfileImageName          *string `json:"profile_image_name,omitempty"`
	Password                  string  `json:"password,omitempty" validate:"omitempty,min=6"`
	RequiresAccessibleParking bool    `json:"requires_accessible_parking"`
}

// Handler управляет HTTP-запросами обновления профиля.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики обновления профиля.
type Service interface {
	UpdateProfile(ctx context.Context, uid string, input user.UpdateInput) (*models.User, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Обновить профиль пользователя
// @Description Обновляет профиль текущего пользователя. Пустой пароль оставляет текущий хэш без изменений.
// @Tags Users
// @Accept  json
// @Produce  json
// @Param request body Request true "Новые данные профиля"
// @Success 200 {object} map[string]any "Профиль обновлен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/profile [put]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.update"
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

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	uid, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || uid == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), uid, user.UpdateInput{
		Name:                      req.Name,
		Firstname:                 req.Firstname,
		Telephone:                 req.Telephone,
		Plate:                     req.Plate,
		ProfileImageName:          req.ProfileImageName,
		Password:                  req.Password,
		RequiresAccessibleParking: req.RequiresAccessibleParking,
	})
	if errors.Is(err, user.ErrNotFound) {
		log.Error("user not found", slog.String("uid", uid))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	}
	if err != nil {
		log.Error("failed to update profile", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update profile"))
		return
	}

	log.Info("profile updated", slog.String("uid", uid))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user": updated,
	}))
}
