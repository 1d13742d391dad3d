// Package login реализует HTTP-обработчик входа пользователя.
//
// Handler проверяет пару email/пароль, выпускает JWT и сразу загружает
// снимок сессии, чтобы клиент получил профиль, компанию и активный пакет
// одним ответом. При включенном remember_me сохраняется настройка входа
// для устройства.
package login

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/postcraft/internal/http/response"
	"github.com/magabrotheeeer/postcraft/internal/lib/sl"
	"github.com/magabrotheeeer/postcraft/internal/models"
	auth "github.com/magabrotheeeer/postcraft/internal/services/auth"
)

// Handler обрабатывает HTTP-запросы на вход.
type Handler struct {
	log         *slog.Logger        // Логгер для записи операций и ошибок
	service     Service             // Сервис бизнес-логики аутентификации
	sessions    SessionService      // Сервис загрузки снимка сессии
	preferences PreferenceService   // Сервис настроек входа
	validate    *validator.Validate // Валидатор для проверки входных данных
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, sessions SessionService, preferences PreferenceService) *Handler {
	return &Handler{
		log:         log,
		service:     service,
		sessions:    sessions,
		preferences: preferences,
		validate:    validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Войти в систему
// @Description Проверяет email и пароль, возвращает JWT и снимок сессии.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.DummyLogin true "Данные входа"
// @Success 200 {object} map[string]any "Токен и снимок сессии"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyLogin
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

	token, user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			log.Error("invalid credentials", slog.String("email", req.Email))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid email or password"))
			return
		}
		log.Error("login failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to login"))
		return
	}

	snapshot, err := h.sessions.Load(r.Context(), user.UID)
	if err != nil {
		log.Error("failed to load session snapshot", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load session"))
		return
	}

	if req.DeviceID != "" {
		if err := h.preferences.Save(r.Context(), req.DeviceID, models.LoginPreference{
			RememberMe: req.RememberMe,
			LastEmail:  req.Email,
		}); err != nil {
			log.Warn("failed to save login preference", sl.Err(err))
		}
	}

	log.Info("user logged in", slog.String("user_uid", user.UID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token":   token,
		"session": snapshot,
	}))
}
