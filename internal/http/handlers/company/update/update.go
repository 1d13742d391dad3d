// Package update реализует HTTP-обработчик полного обновления профиля
// компании. Профиль заменяется целиком: поля, отсутствующие в запросе,
// обнуляются.
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

	"github.com/magabrotheeeer/postcraft/internal/http/middlewarectx"
	"github.com/magabrotheeeer/postcraft/internal/http/response"
	"github.com/magabrotheeeer/postcraft/internal/lib/sl"
	"github.com/magabrotheeeer/postcraft/internal/models"
	company "github.com/magabrotheeeer/postcraft/internal/services/company"
)

// Service описывает интерфейс бизнес-логики обновления компании.
type Service interface {
	Update(ctx context.Context, companyUID, userUID string, req models.DummyCompany) (*models.Company, error)
}

// Handler обрабатывает HTTP-запросы на обновление профиля компании.
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
// @Summary Обновить профиль компании
// @Description Полностью заменяет профиль компании текущего пользователя.
// @Tags Company
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyCompany true "Новый профиль компании"
// @Success 200 {object} map[string]any "Обновленный профиль"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Компания не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /company [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.company.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyCompany
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

	companyUID, ok := r.Context().Value(middlewarectx.CompanyUID).(string)
	userUID, okUser := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || !okUser || companyUID == "" || userUID == "" {
		log.Error("identifiers not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	updated, err := h.service.Update(r.Context(), companyUID, userUID, req)
	if err != nil {
		if errors.Is(err, company.ErrCompanyNotFound) {
			log.Error("company not found", slog.String("company_uid", companyUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("company not found"))
			return
		}
		log.Error("failed to update company", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update company"))
		return
	}

	log.Info("company updated", slog.String("company_uid", companyUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"company": updated,
	}))
}
