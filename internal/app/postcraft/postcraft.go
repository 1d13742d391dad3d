// Package postcraft собирает приложение: хранилище, кеш, брокер событий,
// клиента сервиса генерации, бизнес-сервисы и HTTP-сервер.
package postcraft

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/postcraft/internal/cache"
	"github.com/magabrotheeeer/postcraft/internal/config"
	"github.com/magabrotheeeer/postcraft/internal/generator"
	jwtlib "github.com/magabrotheeeer/postcraft/internal/lib/jwt"
	"github.com/magabrotheeeer/postcraft/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/postcraft/internal/lib/sl"
	"github.com/magabrotheeeer/postcraft/internal/migrations"
	authservice "github.com/magabrotheeeer/postcraft/internal/services/auth"
	companyservice "github.com/magabrotheeeer/postcraft/internal/services/company"
	generationservice "github.com/magabrotheeeer/postcraft/internal/services/generation"
	preferenceservice "github.com/magabrotheeeer/postcraft/internal/services/preference"
	sessionservice "github.com/magabrotheeeer/postcraft/internal/services/session"
	templateservice "github.com/magabrotheeeer/postcraft/internal/services/template"
	"github.com/magabrotheeeer/postcraft/internal/storage"
)

// App содержит собранные зависимости приложения и HTTP-сервер.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *storage.Storage
	amqpConn *amqp.Connection
	amqpCh   *amqp.Channel
}

// New собирает приложение из конфигурации. Брокер событий необязателен:
// при ошибке подключения приложение стартует без публикации событий.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	var (
		amqpConn  *amqp.Connection
		amqpCh    *amqp.Channel
		publisher generationservice.EventPublisher
	)
	amqpConn, amqpCh, err = rabbitmq.Connect(cfg.AmqpURL)
	if err != nil {
		logger.Warn("rabbitmq unavailable, events will not be published", sl.Err(err))
	} else {
		if err := rabbitmq.SetupExchange(amqpCh, cfg.Exchange); err != nil {
			return nil, err
		}
		publisher = rabbitmq.NewPublisher(amqpCh, cfg.Exchange)
	}

	jwtMaker := jwtlib.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	generatorClient := generator.NewClient(cfg.WebhookURL, cfg.WebhookTimeout)

	authService := authservice.NewAuthService(db, cacheRedis, jwtMaker, logger)
	sessionService := sessionservice.NewSessionService(db, cacheRedis, logger)
	companyService := companyservice.NewCompanyService(db, cacheRedis, logger)
	templateService := templateservice.NewTemplateService(db, cacheRedis, logger)
	preferenceService := preferenceservice.NewPreferenceService(cacheRedis, logger)
	generationService := generationservice.NewGenerationService(db, generatorClient, publisher, cacheRedis, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:       authService,
		Session:    sessionService,
		Company:    companyService,
		Template:   templateService,
		Preference: preferenceService,
		Generation: generationService,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		amqpConn: amqpConn,
		amqpCh:   amqpCh,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.amqpCh != nil {
			_ = a.amqpCh.Close()
		}
		if a.amqpConn != nil {
			_ = a.amqpConn.Close()
		}
		a.db.DB.Close()
		return err
	}
}
