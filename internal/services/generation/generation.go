// Package services содержит бизнес-логику генерации постов: проверку
// квоты пакета, вызов внешнего сервиса генерации и учет использования.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/postcraft/internal/cache"
	"github.com/magabrotheeeer/postcraft/internal/generator"
	"github.com/magabrotheeeer/postcraft/internal/lib/sl"
	"github.com/magabrotheeeer/postcraft/internal/metrics"
	"github.com/magabrotheeeer/postcraft/internal/models"
	"github.com/magabrotheeeer/postcraft/internal/storage"
)

var (
	// ErrNoActivePack возвращается, когда у компании нет активного пакета.
	ErrNoActivePack = errors.New("company has no active pack")
	// ErrQuotaExceeded возвращается, когда месячный лимит генераций исчерпан.
	ErrQuotaExceeded = errors.New("pack quota exceeded")
	// ErrTemplateNotFound возвращается при запросе с несуществующим шаблоном.
	ErrTemplateNotFound = errors.New("template not found")
)

// GenerationRepository определяет методы хранилища, нужные для генерации.
type GenerationRepository interface {
	GetCompanyByUID(ctx context.Context, uid string) (*models.Company, error)
	GetActivePack(ctx context.Context, companyUID string) (*models.Pack, error)
	GetTemplateByUID(ctx context.Context, uid string) (*models.Template, error)
	CreateGeneratedPost(ctx context.Context, post models.GeneratedPost) (string, error)
	// RemoveGeneratedPost удаляет запись поста. Используется только как
	// компенсация, когда инкремент квоты не прошел.
	RemoveGeneratedPost(ctx context.Context, uid string) (int, error)
	// ConsumePackQuota атомарно увеличивает счетчик использованных
	// генераций. Возвращает false, если лимит уже исчерпан или пакет
	// перестал быть активным.
	ConsumePackQuota(ctx context.Context, packUID string) (bool, error)
	ListGeneratedPosts(ctx context.Context, companyUID string, limit int) ([]*models.GeneratedPost, error)
}

// Generator описывает клиента внешнего сервиса генерации контента.
type Generator interface {
	Generate(ctx context.Context, req generator.GenerateRequest) (*generator.GenerateResponse, error)
}

// EventPublisher описывает публикацию доменных событий в брокер.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// Cache описывает методы для сброса кешированных снимков сессии.
type Cache interface {
	Invalidate(key string) error
}

// Ключ маршрутизации события об успешной генерации.
const routingKeyPostGenerated = "post.generated"

// Максимальный и применяемый по умолчанию размер выборки истории постов.
const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// GenerationService реализует полный цикл генерации поста.
type GenerationService struct {
	repo      GenerationRepository
	generator Generator
	publisher EventPublisher
	cache     Cache
	log       *slog.Logger
}

// NewGenerationService создает новый экземпляр GenerationService.
// publisher может быть nil, если брокер недоступен при старте.
func NewGenerationService(repo GenerationRepository, gen Generator,
	publisher EventPublisher, cache Cache, log *slog.Logger) *GenerationService {
	return &GenerationService{
		repo:      repo,
		generator: gen,
		publisher: publisher,
		cache:     cache,
		log:       log,
	}
}

// Generate выполняет генерацию поста для компании. Порядок строгий:
// сначала предварительная проверка квоты, затем вызов внешнего сервиса,
// затем сохранение результата и атомарное списание квоты. Если списание
// не прошло — конкурирующий запрос успел занять последний слот — уже
// сохраненный пост удаляется и возвращается ErrQuotaExceeded.
func (s *GenerationService) Generate(ctx context.Context, userUID, companyUID string,
	req models.DummyGenerate) (*models.GeneratedPost, error) {
	const op = "services.GenerationService.Generate"

	pack, err := s.repo.GetActivePack(ctx, companyUID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			metrics.GenerationsTotal.WithLabelValues("no_active_pack").Inc()
			return nil, ErrNoActivePack
		}
		metrics.GenerationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if pack.Remaining() == 0 {
		metrics.GenerationsTotal.WithLabelValues("quota_exceeded").Inc()
		return nil, ErrQuotaExceeded
	}

	template, err := s.repo.GetTemplateByUID(ctx, req.TemplateUID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			metrics.GenerationsTotal.WithLabelValues("error").Inc()
			return nil, ErrTemplateNotFound
		}
		metrics.GenerationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	company, err := s.repo.GetCompanyByUID(ctx, companyUID)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result, err := s.generator.Generate(ctx, generator.GenerateRequest{
		CompanyName:    company.Name,
		Sector:         company.Sector,
		Services:       company.Services,
		TargetAudience: company.TargetAudience,
		PrimaryColor:   company.PrimaryColor,
		SecondaryColor: company.SecondaryColor,
		LogoURL:        company.LogoURL,
		ToneOfVoice:    company.ToneOfVoice,
		VisualStyle:    company.VisualStyle,
		Platform:       req.Platform,
		Format:         req.Format,
		TemplateName:   template.Name,
		BasePrompt:     template.BasePrompt,
		Suggestion:     req.Suggestion,
	})
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues("webhook_failed").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	post := models.GeneratedPost{
		CompanyUID:  companyUID,
		Platform:    req.Platform,
		Format:      req.Format,
		TemplateUID: req.TemplateUID,
		Suggestion:  req.Suggestion,
		ImageURL:    result.ImageURL,
		Caption:     result.Caption,
		Hashtags:    result.Hashtags,
	}
	postUID, err := s.repo.CreateGeneratedPost(ctx, post)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	post.UID = postUID

	consumed, err := s.repo.ConsumePackQuota(ctx, pack.UID)
	if err != nil {
		s.compensate(ctx, postUID)
		metrics.GenerationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !consumed {
		s.compensate(ctx, postUID)
		metrics.GenerationsTotal.WithLabelValues("quota_exceeded").Inc()
		return nil, ErrQuotaExceeded
	}

	if err := s.cache.Invalidate(cache.SessionSnapshotKey(userUID)); err != nil {
		s.log.Warn("failed to drop session snapshot", sl.Err(err))
	}

	s.publishEvent(post)

	s.log.Info("generated post",
		slog.String("post_uid", postUID),
		slog.String("company_uid", companyUID),
		slog.String("platform", req.Platform))
	metrics.GenerationsTotal.WithLabelValues("success").Inc()
	return &post, nil
}

// ListRecent возвращает последние сгенерированные посты компании.
func (s *GenerationService) ListRecent(ctx context.Context, companyUID string, limit int) ([]*models.GeneratedPost, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.repo.ListGeneratedPosts(ctx, companyUID, limit)
}

// compensate удаляет пост, созданный до проигранного списания квоты.
func (s *GenerationService) compensate(ctx context.Context, postUID string) {
	if _, err := s.repo.RemoveGeneratedPost(ctx, postUID); err != nil {
		s.log.Error("failed to remove post after quota conflict",
			slog.String("post_uid", postUID), sl.Err(err))
	}
}

// publishEvent отправляет событие о генерации. Ошибка публикации не
// влияет на результат запроса.
func (s *GenerationService) publishEvent(post models.GeneratedPost) {
	if s.publisher == nil {
		return
	}
	event := models.PostGeneratedEvent{
		PostUID:    post.UID,
		CompanyUID: post.CompanyUID,
		Platform:   post.Platform,
		Format:     post.Format,
		CreatedAt:  post.CreatedAt,
	}
	if err := s.publisher.Publish(routingKeyPostGenerated, event); err != nil {
		s.log.Warn("failed to publish post generated event", sl.Err(err))
	}
}
