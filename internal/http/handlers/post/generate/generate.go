// Package generate реализует HTTP-обработчик генерации поста.
//
// Handler валидирует запрос, вызывает бизнес-логику генерации и
// транслирует доменные ошибки квоты в соответствующие HTTP-статусы.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/postcraft/internal/http/middlewarectx"
	"github.com/magabrotheeeer/postcraft/internal/http/response"
	"github.com/magabrotheeeer/postcraft/internal/lib/sl"
	"github.com/magabrotheeeer/postcraft/internal/models"
	generation "github.com/magabrotheeeer/postcraft/internal/services/generation"
)

// Service описывает интерфейс бизнес-логики генерации постов.
type Service interface {
	Generate(ctx context.Context, userUID, companyUID string, req models.DummyGenerate) (*models.GeneratedPost, error)
}

// Handler обрабатывает HTTP-запросы на генерацию поста.
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
// @Summary Сгенерировать пост
// @Description Генерирует пост через внешний сервис и списывает одну генерацию из квоты пакета.
// @Tags Posts
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyGenerate true "Параметры генерации"
// @Success 200 {object} map[string]any "Сгенерированный пост"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 402 {object} response.ErrorResponse "Нет активного пакета"
// @Failure 404 {object} response.ErrorResponse "Шаблон не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Квота генераций исчерпана"
// @Failure 502 {object} response.ErrorResponse "Сервис генерации недоступен"
// @Router /posts/generate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.post.generate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyGenerate
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
	log.Info("all fields are validated")

	userUID, okUser := r.Context().Value(middlewarectx.UserUID).(string)
	companyUID, okCompany := r.Context().Value(middlewarectx.CompanyUID).(string)
	if !okUser || !okCompany || userUID == "" || companyUID == "" {
		log.Error("identifiers not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	post, err := h.service.Generate(r.Context(), userUID, companyUID, req)
	if err != nil {
		switch {
		case errors.Is(err, generation.ErrNoActivePack):
			log.Error("no active pack", slog.String("company_uid", companyUID))
			w.WriteHeader(http.StatusPaymentRequired)
			render.JSON(w, r, response.Error("no active pack"))
		case errors.Is(err, generation.ErrQuotaExceeded):
			log.Error("quota exceeded", slog.String("company_uid", companyUID))
			w.WriteHeader(http.StatusTooManyRequests)
			render.JSON(w, r, response.Error("pack quota exceeded"))
		case errors.Is(err, generation.ErrTemplateNotFound):
			log.Error("template not found", slog.String("template_uid", req.TemplateUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("template not found"))
		default:
			log.Error("failed to generate post", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("could not generate post"))
		}
		return
	}

	log.Info("post generated", slog.String("post_uid", post.UID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"post": post,
	}))
}
