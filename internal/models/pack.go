package models

// Статусы тарифного пакета. У компании в любой момент ожидается
// не более одного пакета со статусом active.
const (
	PackStatusActive   = "active"
	PackStatusInactive = "inactive"
	PackStatusExpired  = "expired"
)

// Pack представляет тарифный пакет компании, ограничивающий количество
// генераций постов за расчетный период. PostsUsed монотонно растет
// в пределах периода и не должен превышать MonthlyPostsLimit.
type Pack struct {
	UID               string  `json:"uid"`
	CompanyUID        string  `json:"company_uid"`
	PackType          string  `json:"pack_type"`
	MonthlyPostsLimit int     `json:"monthly_posts_limit"`
	PostsUsed         int     `json:"posts_used"`
	Price             float64 `json:"price"`
	Status            string  `json:"status"`
}

// Remaining возвращает число оставшихся генераций в текущем периоде.
func (p *Pack) Remaining() int {
	if p.PostsUsed >= p.MonthlyPostsLimit {
		return 0
	}
	return p.MonthlyPostsLimit - p.PostsUsed
}
