// Package read реализует HTTP-обработчик чтения профиля компании
// текущего пользователя.
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

// Service описывает интерфейс бизнес-логики чтения компании.
type Service interface {
	Read(ctx context.Context, companyUID string) (*models.Company, error)
}

// Handler обрабатывает HTTP-запросы на чтение профиля компании.
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
// @Summary Получить профиль компании
// @Description Возвращает профиль компании текущего пользователя.
// @Tags Company
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Профиль компании"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /company [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.company.read"

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

	company, err := h.service.Read(r.Context(), companyUID)
	if err != nil {
		log.Error("failed to read company", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read company"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"company": company,
	}))
}
