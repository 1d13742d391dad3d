// Package list реализует HTTP-обработчик выдачи каталога шаблонов.
//
// Handler принимает необязательные query-параметры platform и format
// и возвращает подходящие шаблоны.
package list

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

// Service описывает интерфейс бизнес-логики каталога шаблонов.
type Service interface {
	List(ctx context.Context, platform, format string) ([]*models.Template, error)
}

// Handler обрабатывает HTTP-запросы на получение шаблонов.
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
// @Summary Получить каталог шаблонов
// @Description Возвращает шаблоны контента с фильтрацией по платформе и формату.
// @Tags Templates
// @Produce  json
// @Security BearerAuth
// @Param platform query string false "Платформа (instagram, vk и т.д.)"
// @Param format query string false "Формат (post, story и т.д.)"
// @Success 200 {object} map[string]any "Список шаблонов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /templates [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.template.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	platform := r.URL.Query().Get("platform")
	format := r.URL.Query().Get("format")

	templates, err := h.service.List(r.Context(), platform, format)
	if err != nil {
		log.Error("failed to list templates", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list templates"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"templates": templates,
		"count":     len(templates),
	}))
}
