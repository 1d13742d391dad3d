// Package read реализует HTTP-обработчик чтения активного тарифного
// пакета компании. Отсутствие активного пакета не является ошибкой.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/postcraft/internal/http/middlewarectx"
	"github.com/magabrotheeeer/postcraft/internal/http/response"
	"github.com/magabrotheeeer/postcraft/internal/lib/sl"
	"github.com/magabrotheeeer/postcraft/internal/models"
)

// Service описывает интерфейс бизнес-логики чтения активного пакета.
type Service interface {
	ActivePack(ctx context.Context, companyUID string) (*models.Pack, error)
}

// Handler обрабатывает HTTP-запросы на чтение активного пакета.
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
// @Summary Получить активный пакет
// @Description Возвращает активный тарифный пакет компании или null, если его нет.
// @Tags Packs
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Активный пакет и остаток генераций"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /packs/active [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pack.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	companyUID, ok := r.Context().Value(middlewarectx.CompanyUID).(string)
	if !ok || companyUID == "" {
		log.Error("company uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	pack, err := h.service.ActivePack(r.Context(), companyUID)
	if err != nil {
		log.Error("failed to read active pack", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read active pack"))
		return
	}

	data := map[string]any{"pack": pack}
	if pack != nil {
		data["remaining"] = pack.Remaining()
	}
	render.JSON(w, r, response.OKWithData(data))
}
