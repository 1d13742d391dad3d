// Package refresh реализует HTTP-обработчик принудительного обновления
// снимка сессии: кеш сбрасывается и цепочка загрузки выполняется заново.
package refresh

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/postcraft/internal/http/middlewarectx"
	"github.com/magabrotheeeer/postcraft/internal/http/response"
	"github.com/magabrotheeeer/postcraft/internal/lib/sl"
	"github.com/magabrotheeeer/postcraft/internal/models"
	session "github.com/magabrotheeeer/postcraft/internal/services/session"
)

// Service описывает интерфейс бизнес-логики обновления сессии.
type Service interface {
	Refresh(ctx context.Context, userUID string) (*models.Snapshot, error)
}

// Handler обрабатывает HTTP-запросы на обновление сессии.
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
// @Summary Обновить снимок сессии
// @Description Сбрасывает кеш и заново выполняет цепочку загрузки сессии.
// @Tags Session
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Снимок сессии"
// @Failure 401 {object} response.ErrorResponse "Сессия отозвана или пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /session/refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	snapshot, err := h.service.Refresh(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, session.ErrSessionSuperseded) {
			log.Error("session superseded during refresh")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("session revoked"))
			return
		}
		log.Error("failed to refresh session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to refresh session"))
		return
	}

	log.Info("session refreshed", slog.String("user_uid", userUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"session": snapshot,
	}))
}
