// Package models содержит доменные структуры приложения: пользователей,
// компании, тарифные пакеты, шаблоны контента и сгенерированные посты.
// Структуры используются в бизнес-логике и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
// Пользователь всегда принадлежит ровно одной компании.
type User struct {
	UID          string    `json:"uid"`           // Уникальный идентификатор пользователя
	Email        string    `json:"email"`         // Электронная почта (уникальная)
	PasswordHash string    `json:"-"`             // Хэш пароля пользователя
	FirstName    string    `json:"first_name"`    // Имя
	LastName     string    `json:"last_name"`     // Фамилия
	Role         string    `json:"role"`          // Роль пользователя, owner или member
	CompanyUID   string    `json:"company_uid"`   // Компания, которой принадлежит пользователь
	CreatedAt    time.Time `json:"created_at"`
}

// Роли пользователей внутри компании.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// DummyRegister используется для приёма запроса на регистрацию
// из JSON-запроса. Вместе с пользователем создается его компания.
type DummyRegister struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	FirstName   string `json:"first_name" validate:"required,min=1,max=100"`
	LastName    string `json:"last_name" validate:"required,min=1,max=100"`
	CompanyName string `json:"company_name" validate:"required,min=1,max=200"`
}

// DummyLogin используется для приёма запроса на вход. DeviceID
// нужен только при включенном remember_me.
type DummyLogin struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
	DeviceID   string `json:"device_id" validate:"omitempty,max=128"`
}
