package login

import (
	"context"

	"github.com/magabrotheeeer/postcraft/internal/models"
)

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	Login(ctx context.Context, email, password string) (string, *models.User, error)
}

// SessionService описывает загрузку снимка сессии после входа.
type SessionService interface {
	Load(ctx context.Context, userUID string) (*models.Snapshot, error)
}

// PreferenceService описывает сохранение настройки "запомнить меня".
type PreferenceService interface {
	Save(ctx context.Context, deviceID string, pref models.LoginPreference) error
}
