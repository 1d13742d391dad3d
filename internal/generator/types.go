package generator

// GenerateRequest — плоский payload для внешнего сервиса генерации:
// профиль компании плюс выбранные платформа, формат и шаблон.
type GenerateRequest struct {
	CompanyName    string   `json:"company_name"`
	Sector         string   `json:"sector"`
	Services       []string `json:"services"`
	TargetAudience string   `json:"target_audience"`
	PrimaryColor   string   `json:"primary_color"`
	SecondaryColor string   `json:"secondary_color"`
	LogoURL        string   `json:"logo_url,omitempty"`
	ToneOfVoice    string   `json:"tone_of_voice"`
	VisualStyle    string   `json:"visual_style"`
	Platform       string   `json:"platform"`
	Format         string   `json:"format"`
	TemplateName   string   `json:"template_name"`
	BasePrompt     string   `json:"base_prompt"`
	Suggestion     string   `json:"suggestion,omitempty"`
}

// GenerateResponse — ожидаемое тело ответа сервиса генерации.
type GenerateResponse struct {
	ImageURL string   `json:"image_url"`
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags"`
}
