// Package services содержит бизнес-логику клиентских настроек входа.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/postcraft/internal/cache"
	"github.com/magabrotheeeer/postcraft/internal/models"
)

// Cache описывает методы для хранения настроек входа.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Настройка входа живет до явного выключения или нового входа.
const preferenceTTL = 90 * 24 * time.Hour

// PreferenceService хранит настройку "запомнить меня" по устройству.
// Ключом выступает идентификатор устройства, который клиент генерирует
// сам: на одном устройстве живет ровно одна запомненная личность, и
// logout ее не стирает.
type PreferenceService struct {
	cache Cache
	log   *slog.Logger
}

// NewPreferenceService создает новый экземпляр PreferenceService.
func NewPreferenceService(cache Cache, log *slog.Logger) *PreferenceService {
	return &PreferenceService{
		cache: cache,
		log:   log,
	}
}

// Save сохраняет настройку входа для устройства. Выключенный флаг
// remember_me удаляет запись вместе с сохраненным email.
func (s *PreferenceService) Save(_ context.Context, deviceID string, pref models.LoginPreference) error {
	key := cache.LoginPreferenceKey(deviceID)
	if !pref.RememberMe {
		return s.cache.Invalidate(key)
	}
	return s.cache.Set(key, pref, preferenceTTL)
}

// Read возвращает настройку входа для устройства. Отсутствие записи не
// является ошибкой: возвращается выключенный флаг без email.
func (s *PreferenceService) Read(_ context.Context, deviceID string) (models.LoginPreference, error) {
	var pref models.LoginPreference
	found, err := s.cache.Get(cache.LoginPreferenceKey(deviceID), &pref)
	if err != nil || !found {
		return models.LoginPreference{}, nil
	}
	return pref, nil
}
