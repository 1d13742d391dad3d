package models

import "time"

// GeneratedPost представляет результат одной успешной генерации контента.
// Записи создаются ровно один раз и никогда не изменяются.
type GeneratedPost struct {
	UID         string    `json:"uid"`
	CompanyUID  string    `json:"company_uid"`
	Platform    string    `json:"platform"`
	Format      string    `json:"format"`
	TemplateUID string    `json:"template_uid"`
	Suggestion  string    `json:"suggestion"`
	ImageURL    string    `json:"image_url"`
	Caption     string    `json:"caption"`
	Hashtags    []string  `json:"hashtags"`
	CreatedAt   time.Time `json:"created_at"`
}

// DummyGenerate используется для приёма запроса на генерацию поста
// из JSON-запроса.
type DummyGenerate struct {
	Platform    string `json:"platform" validate:"required,min=1,max=50"`
	Format      string `json:"format" validate:"required,min=1,max=50"`
	TemplateUID string `json:"template_uid" validate:"required,uuid"`
	Suggestion  string `json:"suggestion" validate:"max=2000"`
}

// PostGeneratedEvent публикуется в брокер после каждой успешной генерации.
type PostGeneratedEvent struct {
	PostUID    string    `json:"post_uid"`
	CompanyUID string    `json:"company_uid"`
	Platform   string    `json:"platform"`
	Format     string    `json:"format"`
	CreatedAt  time.Time `json:"created_at"`
}
