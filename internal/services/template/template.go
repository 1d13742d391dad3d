// Package services содержит бизнес-логику работы с каталогом шаблонов.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/postcraft/internal/cache"
	"github.com/magabrotheeeer/postcraft/internal/lib/sl"
	"github.com/magabrotheeeer/postcraft/internal/models"
)

// TemplateRepository определяет методы для чтения каталога шаблонов.
type TemplateRepository interface {
	// ListTemplates возвращает шаблоны, отфильтрованные по платформе и
	// формату. Пустое значение фильтра означает отсутствие фильтрации.
	ListTemplates(ctx context.Context, platform, format string) ([]*models.Template, error)
}

// Cache описывает методы для кеширования результатов выборки шаблонов.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

// Время жизни кеша каталога. Каталог пополняется миграциями, поэтому
// короткого TTL достаточно.
const templatesTTL = 10 * time.Minute

// TemplateService реализует выдачу каталога шаблонов с кешированием.
// Каталог меняется редко, поэтому каждая комбинация фильтров кешируется
// целиком.
type TemplateService struct {
	repo  TemplateRepository
	cache Cache
	log   *slog.Logger
}

// NewTemplateService создает новый экземпляр TemplateService.
func NewTemplateService(repo TemplateRepository, cache Cache, log *slog.Logger) *TemplateService {
	return &TemplateService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// List возвращает шаблоны по фильтрам, сначала пробуя кеш.
func (s *TemplateService) List(ctx context.Context, platform, format string) ([]*models.Template, error) {
	key := cache.TemplatesKey(platform, format)

	var cached []*models.Template
	if found, err := s.cache.Get(key, &cached); err == nil && found {
		return cached, nil
	}

	templates, err := s.repo.ListTemplates(ctx, platform, format)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(key, templates, templatesTTL); err != nil {
		s.log.Warn("failed to cache templates", sl.Err(err))
	}

	return templates, nil
}
