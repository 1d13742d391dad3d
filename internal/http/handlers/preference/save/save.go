// Package save реализует HTTP-обработчик сохранения настройки входа
// для устройства.
package save

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/postcraft/internal/http/response"
	"github.com/magabrotheeeer/postcraft/internal/lib/sl"
	"github.com/magabrotheeeer/postcraft/internal/models"
)

// Request — входные данные для сохранения настройки входа.
type Request struct {
	DeviceID   string `json:"device_id" validate:"required,max=128"`
	RememberMe bool   `json:"remember_me"`
	LastEmail  string `json:"last_email" validate:"omitempty,email"`
}

// Service описывает интерфейс бизнес-логики настроек входа.
type Service interface {
	Save(ctx context.Context, deviceID string, pref models.LoginPreference) error
}

// Handler обрабатывает HTTP-запросы на сохранение настройки входа.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
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
// @Summary Сохранить настройку входа
// @Description Сохраняет настройку "запомнить меня" для устройства. Выключенный флаг удаляет запись.
// @Tags Preferences
// @Accept  json
// @Produce  json
// @Param request body Request true "Настройка входа"
// @Success 200 {object} response.Response "Настройка сохранена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /preferences/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.preference.save"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
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

	if err := h.service.Save(r.Context(), req.DeviceID, models.LoginPreference{
		RememberMe: req.RememberMe,
		LastEmail:  req.LastEmail,
	}); err != nil {
		log.Error("failed to save login preference", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not save preference"))
		return
	}

	log.Info("login preference saved", slog.String("device_id", req.DeviceID))
	render.JSON(w, r, response.OK())
}
