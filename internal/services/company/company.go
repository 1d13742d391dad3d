// Package services содержит бизнес-логику работы с профилем компании.
package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/postcraft/internal/cache"
	"github.com/magabrotheeeer/postcraft/internal/lib/sl"
	"github.com/magabrotheeeer/postcraft/internal/models"
)

// ErrCompanyNotFound возвращается, когда профиль компании отсутствует.
var ErrCompanyNotFound = errors.New("company not found")

// CompanyRepository определяет методы для работы с компаниями в хранилище.
type CompanyRepository interface {
	// GetCompanyByUID возвращает профиль компании.
	GetCompanyByUID(ctx context.Context, uid string) (*models.Company, error)
	// UpdateCompany заменяет все изменяемые поля профиля и возвращает
	// количество изменённых строк.
	UpdateCompany(ctx context.Context, uid string, company models.Company) (int, error)
}

// Cache описывает методы для сброса кешированных снимков сессии.
type Cache interface {
	Invalidate(key string) error
}

// CompanyService реализует чтение и полное обновление профиля компании.
type CompanyService struct {
	repo  CompanyRepository
	cache Cache
	log   *slog.Logger
}

// NewCompanyService создает новый экземпляр CompanyService.
func NewCompanyService(repo CompanyRepository, cache Cache, log *slog.Logger) *CompanyService {
	return &CompanyService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Read возвращает профиль компании по идентификатору.
func (s *CompanyService) Read(ctx context.Context, companyUID string) (*models.Company, error) {
	return s.repo.GetCompanyByUID(ctx, companyUID)
}

// Update заменяет профиль компании целиком. Список услуг предварительно
// дедуплицируется с сохранением исходного порядка. После записи снимок
// сессии инициатора сбрасывается, чтобы следующая загрузка увидела
// новый профиль.
func (s *CompanyService) Update(ctx context.Context, companyUID, userUID string, req models.DummyCompany) (*models.Company, error) {
	company := models.Company{
		UID:            companyUID,
		Name:           req.Name,
		Sector:         req.Sector,
		Services:       dedupeOrdered(req.Services),
		TargetAudience: req.TargetAudience,
		PrimaryColor:   req.PrimaryColor,
		SecondaryColor: req.SecondaryColor,
		LogoURL:        req.LogoURL,
		ToneOfVoice:    req.ToneOfVoice,
		VisualStyle:    req.VisualStyle,
	}

	count, err := s.repo.UpdateCompany(ctx, companyUID, company)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrCompanyNotFound
	}
	s.log.Info("updated company profile", slog.String("company_uid", companyUID))

	if err := s.cache.Invalidate(cache.SessionSnapshotKey(userUID)); err != nil {
		s.log.Warn("failed to drop session snapshot", sl.Err(err))
	}

	return s.repo.GetCompanyByUID(ctx, companyUID)
}

// dedupeOrdered убирает дубликаты, сохраняя порядок первого вхождения.
func dedupeOrdered(items []string) []string {
	if items == nil {
		return []string{}
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		result = append(result, item)
	}
	return result
}
