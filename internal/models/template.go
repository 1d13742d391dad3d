package models

// Template представляет шаблон контента: базовый промпт и теги
// применимости по секторам, платформам и форматам. Шаблоны доступны
// только для чтения со стороны приложения.
type Template struct {
	UID          string   `json:"uid"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	BasePrompt   string   `json:"base_prompt"`
	ThumbnailURL string   `json:"thumbnail_url"`
	Sectors      []string `json:"sectors"`
	Platforms    []string `json:"platforms"`
	Formats      []string `json:"formats"`
}
