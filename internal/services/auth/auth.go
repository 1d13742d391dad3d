// Package services содержит логику бизнес-уровня для регистрации,
// аутентификации и управления жизненным циклом сессий.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/postcraft/internal/cache"
	"github.com/magabrotheeeer/postcraft/internal/lib/jwt"
	"github.com/magabrotheeeer/postcraft/internal/lib/password"
	"github.com/magabrotheeeer/postcraft/internal/lib/sl"
	"github.com/magabrotheeeer/postcraft/internal/models"
	"github.com/magabrotheeeer/postcraft/internal/storage"
)

// ErrInvalidCredentials возвращается при неверной паре email/пароль.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrSessionRevoked возвращается, когда версия сессии в токене
// отстала от текущей: пользователь вышел после выдачи токена.
var ErrSessionRevoked = errors.New("session revoked")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUserWithCompany создает компанию и пользователя в одной транзакции.
	CreateUserWithCompany(ctx context.Context, user models.User, companyName string) (string, string, error)

	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// SessionStore описывает операции кеша, нужные для версионирования сессий.
type SessionStore interface {
	Get(key string, result any) (bool, error)
	Incr(key string) (int64, error)
	Invalidate(key string) error
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users    UserRepository
	sessions SessionStore
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, sessions SessionStore, jwtMaker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Register проводит трехшаговую регистрацию: хэширование пароля, создание
// компании с пустым профилем и создание пользователя, ссылающегося на неё.
// Оба insert выполняются в одной транзакции хранилища, поэтому при сбое
// не остается осиротевших учетных записей. Сразу после создания выпускается
// JWT: свежезарегистрированный пользователь входит без повторного логина.
func (s *AuthService) Register(ctx context.Context, email, rawPassword, firstName, lastName, companyName string) (string, string, string, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", "", "", err
	}
	user := models.User{
		Email:        email,
		PasswordHash: hashed,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         models.RoleOwner, // дефолтная роль при регистрации
	}
	userUID, companyUID, err := s.users.CreateUserWithCompany(ctx, user, companyName)
	if err != nil {
		return "", "", "", err
	}

	version, err := s.currentVersion(userUID)
	if err != nil {
		return "", "", "", err
	}
	token, err := s.jwtMaker.GenerateToken(userUID, email, models.RoleOwner, companyUID, version)
	if err != nil {
		return "", "", "", err
	}

	s.log.Info("registered new user",
		slog.String("user_uid", userUID), slog.String("company_uid", companyUID))
	return token, userUID, companyUID, nil
}

// Login проверяет пароль пользователя и генерирует JWT с текущей версией сессии.
// Ошибка неверных учетных данных передается вызывающей стороне без изменений.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	version, err := s.currentVersion(user.UID)
	if err != nil {
		return "", nil, err
	}
	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email, user.Role, user.CompanyUID, version)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Logout инвалидирует сессию: поднимает версию сессии пользователя и
// сбрасывает кешированный снимок. Все ранее выданные токены перестают
// проходить валидацию, а незавершенные цепочки загрузки отбрасывают
// свой результат.
func (s *AuthService) Logout(_ context.Context, userUID string) error {
	if _, err := s.sessions.Incr(cache.SessionVersionKey(userUID)); err != nil {
		return err
	}
	if err := s.sessions.Invalidate(cache.SessionSnapshotKey(userUID)); err != nil {
		s.log.Warn("failed to drop session snapshot", slog.String("user_uid", userUID), sl.Err(err))
	}
	s.log.Info("user logged out", slog.String("user_uid", userUID))
	return nil
}

// ValidateToken проверяет JWT и сверяет версию сессии из claims с текущей.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, err
	}
	current, err := s.currentVersion(claims.UserUID)
	if err != nil {
		return nil, err
	}
	if claims.Version != current {
		return nil, ErrSessionRevoked
	}
	return claims, nil
}

func (s *AuthService) currentVersion(userUID string) (int64, error) {
	const op = "auth.currentVersion"
	var version int64
	found, err := s.sessions.Get(cache.SessionVersionKey(userUID), &version)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return 0, nil
	}
	return version, nil
}
