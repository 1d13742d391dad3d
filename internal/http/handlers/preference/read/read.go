// Package read реализует HTTP-обработчик чтения настройки входа
// для устройства. Маршрут публичный: настройка нужна до аутентификации,
// чтобы предзаполнить форму входа.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/postcraft/internal/http/response"
	"github.com/magabrotheeeer/postcraft/internal/lib/sl"
	"github.com/magabrotheeeer/postcraft/internal/models"
)

// Service описывает интерфейс бизнес-логики настроек входа.
type Service interface {
	Read(ctx context.Context, deviceID string) (models.LoginPreference, error)
}

// Handler обрабатывает HTTP-запросы на чтение настройки входа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить настройку входа
// @Description Возвращает настройку "запомнить меня" для устройства.
// @Tags Preferences
// @Produce  json
// @Param device_id query string true "Идентификатор устройства"
// @Success 200 {object} map[string]any "Настройка входа"
// @Failure 400 {object} response.ErrorResponse "Не указан device_id"
// @Router /preferences/login [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.preference.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	deviceID := r.URL.Query().Get("device_id")
	if deviceID == "" {
		log.Error("device_id is missing")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("device_id is required"))
		return
	}

	pref, err := h.service.Read(r.Context(), deviceID)
	if err != nil {
		log.Error("failed to read login preference", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read preference"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"preference": pref,
	}))
}
