package models

import "time"

// Company представляет профиль компании: сфера деятельности, услуги,
// целевая аудитория и настройки фирменного стиля для генерации контента.
type Company struct {
	UID            string    `json:"uid"`
	Name           string    `json:"name"`
	Sector         string    `json:"sector"`
	Services       []string  `json:"services"`        // Упорядоченный список услуг без дубликатов
	TargetAudience string    `json:"target_audience"`
	PrimaryColor   string    `json:"primary_color"`   // Основной фирменный цвет, hex
	SecondaryColor string    `json:"secondary_color"` // Дополнительный фирменный цвет, hex
	LogoURL        string    `json:"logo_url"`
	ToneOfVoice    string    `json:"tone_of_voice"`
	VisualStyle    string    `json:"visual_style"`
	CreatedAt      time.Time `json:"created_at"`
}

// DummyCompany используется для приёма данных профиля из JSON-запроса.
// Обновление профиля заменяет все изменяемые поля целиком, частичный
// patch не поддерживается.
type DummyCompany struct {
	Name           string   `json:"name" validate:"required,min=1,max=100"`
	Sector         string   `json:"sector" validate:"max=100"`
	Services       []string `json:"services" validate:"dive,min=1"`
	TargetAudience string   `json:"target_audience" validate:"max=1000"`
	PrimaryColor   string   `json:"primary_color" validate:"omitempty,hexcolor"`
	SecondaryColor string   `json:"secondary_color" validate:"omitempty,hexcolor"`
	LogoURL        string   `json:"logo_url" validate:"omitempty,url"`
	ToneOfVoice    string   `json:"tone_of_voice" validate:"max=50"`
	VisualStyle    string   `json:"visual_style" validate:"max=50"`
}
