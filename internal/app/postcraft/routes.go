// Package postcraft предоставляет маршруты приложения.
package postcraft

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	loginhandler "github.com/magabrotheeeer/postcraft/internal/http/handlers/auth/login"
	logouthandler "github.com/magabrotheeeer/postcraft/internal/http/handlers/auth/logout"
	registerhandler "github.com/magabrotheeeer/postcraft/internal/http/handlers/auth/register"
	companyread "github.com/magabrotheeeer/postcraft/internal/http/handlers/company/read"
	companyupdate "github.com/magabrotheeeer/postcraft/internal/http/handlers/company/update"
	healthhandler "github.com/magabrotheeeer/postcraft/internal/http/handlers/health"
	packread "github.com/magabrotheeeer/postcraft/internal/http/handlers/pack/read"
	postgenerate "github.com/magabrotheeeer/postcraft/internal/http/handlers/post/generate"
	postlist "github.com/magabrotheeeer/postcraft/internal/http/handlers/post/list"
	preferenceread "github.com/magabrotheeeer/postcraft/internal/http/handlers/preference/read"
	preferencesave "github.com/magabrotheeeer/postcraft/internal/http/handlers/preference/save"
	sessionget "github.com/magabrotheeeer/postcraft/internal/http/handlers/session/get"
	sessionrefresh "github.com/magabrotheeeer/postcraft/internal/http/handlers/session/refresh"
	templatelist "github.com/magabrotheeeer/postcraft/internal/http/handlers/template/list"
	"github.com/magabrotheeeer/postcraft/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/postcraft/internal/services/auth"
	companyservice "github.com/magabrotheeeer/postcraft/internal/services/company"
	generationservice "github.com/magabrotheeeer/postcraft/internal/services/generation"
	preferenceservice "github.com/magabrotheeeer/postcraft/internal/services/preference"
	sessionservice "github.com/magabrotheeeer/postcraft/internal/services/session"
	templateservice "github.com/magabrotheeeer/postcraft/internal/services/template"
)

// Services группирует бизнес-сервисы, нужные HTTP-слою.
type Services struct {
	Auth       *authservice.AuthService
	Session    *sessionservice.SessionService
	Company    *companyservice.CompanyService
	Template   *templateservice.TemplateService
	Preference *preferenceservice.PreferenceService
	Generation *generationservice.GenerationService
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", registerhandler.New(logger, s.Auth, s.Session).ServeHTTP)
		r.Post("/auth/login", loginhandler.New(logger, s.Auth, s.Session, s.Preference).ServeHTTP)
		r.Get("/preferences/login", preferenceread.New(logger, s.Preference).ServeHTTP)
		r.Post("/preferences/login", preferencesave.New(logger, s.Preference).ServeHTTP)
		r.Get("/health", healthhandler.New(logger).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/auth/logout", logouthandler.New(logger, s.Auth).ServeHTTP)
			r.Get("/session", sessionget.New(logger, s.Session).ServeHTTP)
			r.Post("/session/refresh", sessionrefresh.New(logger, s.Session).ServeHTTP)
			r.Get("/company", companyread.New(logger, s.Company).ServeHTTP)
			r.Put("/company", companyupdate.New(logger, s.Company).ServeHTTP)
			r.Get("/templates", templatelist.New(logger, s.Template).ServeHTTP)
			r.Get("/packs/active", packread.New(logger, s.Session).ServeHTTP)
			r.Post("/posts/generate", postgenerate.New(logger, s.Generation).ServeHTTP)
			r.Get("/posts", postlist.New(logger, s.Generation).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
