// Package services реализует цепочку загрузки сессии: последовательное
// чтение пользователя, его компании и активного тарифного пакета.
// Снимок сессии — единственный источник правды о том, кто вошел в
// систему и что ему доступно.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/postcraft/internal/cache"
	"github.com/magabrotheeeer/postcraft/internal/lib/sl"
	"github.com/magabrotheeeer/postcraft/internal/models"
	"github.com/magabrotheeeer/postcraft/internal/storage"
)

// ErrSessionSuperseded возвращается, когда версия сессии изменилась,
// пока выполнялась цепочка загрузки: результат устарел и отброшен.
var ErrSessionSuperseded = errors.New("session superseded")

const snapshotTTL = time.Minute

// SessionRepository определяет методы чтения сущностей цепочки загрузки.
type SessionRepository interface {
	// GetUserByUID возвращает пользователя по идентификатору.
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
	// GetCompanyByUID возвращает профиль компании.
	GetCompanyByUID(ctx context.Context, uid string) (*models.Company, error)
	// GetActivePack возвращает пакет компании со статусом active.
	GetActivePack(ctx context.Context, companyUID string) (*models.Pack, error)
}

// Cache описывает методы для кэширования снимков сессии.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// SessionService реализует цепочку загрузки и кеширование снимков.
type SessionService struct {
	repo  SessionRepository
	cache Cache
	log   *slog.Logger
}

// NewSessionService создает новый экземпляр SessionService.
func NewSessionService(repo SessionRepository, cache Cache, log *slog.Logger) *SessionService {
	return &SessionService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Load выполняет цепочку загрузки пользователь -> компания -> активный пакет.
//
// Чтения пользователя и компании критичны: их ошибка прерывает цепочку.
// Отсутствие активного пакета не ошибка — поле Pack снимка остается nil,
// вызывающая сторона трактует это как "нет тарифа". Версия сессии
// фиксируется в начале цепочки и сверяется в конце: если за это время
// пользователь вышел, результат отбрасывается.
func (s *SessionService) Load(ctx context.Context, userUID string) (*models.Snapshot, error) {
	const op = "session.Load"

	startVersion, err := s.currentVersion(userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var cached models.Snapshot
	found, err := s.cache.Get(cache.SessionSnapshotKey(userUID), &cached)
	if err != nil {
		s.log.Warn("failed to read session snapshot from cache", sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	user, err := s.repo.GetUserByUID(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	company, err := s.repo.GetCompanyByUID(ctx, user.CompanyUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pack, err := s.repo.GetActivePack(ctx, company.UID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		pack = nil // нет активного пакета — не ошибка
	}

	endVersion, err := s.currentVersion(userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if endVersion != startVersion {
		s.log.Info("discarding stale load chain result",
			slog.String("user_uid", userUID),
			slog.Int64("started_at_version", startVersion),
			slog.Int64("current_version", endVersion))
		return nil, ErrSessionSuperseded
	}

	snapshot := &models.Snapshot{
		User:    user,
		Company: company,
		Pack:    pack,
		Version: startVersion,
	}
	if err := s.cache.Set(cache.SessionSnapshotKey(userUID), snapshot, snapshotTTL); err != nil {
		s.log.Warn("failed to cache session snapshot", sl.Err(err))
	}
	return snapshot, nil
}

// Refresh сбрасывает кешированный снимок и повторяет цепочку загрузки.
func (s *SessionService) Refresh(ctx context.Context, userUID string) (*models.Snapshot, error) {
	if err := s.cache.Invalidate(cache.SessionSnapshotKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate session snapshot", sl.Err(err))
	}
	return s.Load(ctx, userUID)
}

// ActivePack возвращает активный пакет компании или nil, если его нет.
func (s *SessionService) ActivePack(ctx context.Context, companyUID string) (*models.Pack, error) {
	pack, err := s.repo.GetActivePack(ctx, companyUID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return pack, nil
}

func (s *SessionService) currentVersion(userUID string) (int64, error) {
	var version int64
	found, err := s.cache.Get(cache.SessionVersionKey(userUID), &version)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return version, nil
}
