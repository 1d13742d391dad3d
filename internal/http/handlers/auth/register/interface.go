package register

import (
	"context"

	"github.com/magabrotheeeer/postcraft/internal/models"
)

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Register(ctx context.Context, email, password, firstName, lastName, companyName string) (string, string, string, error)
}

// SessionService описывает загрузку снимка сессии после регистрации.
type SessionService interface {
	Load(ctx context.Context, userUID string) (*models.Snapshot, error)
}
