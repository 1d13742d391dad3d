package models

// Snapshot представляет результат цепочки загрузки сессии:
// пользователь -> компания -> активный пакет. User и Company всегда
// заполнены в валидном снимке; Pack равен nil, если у компании нет
// пакета со статусом active — это не ошибка.
type Snapshot struct {
	User    *User    `json:"user"`
	Company *Company `json:"company"`
	Pack    *Pack    `json:"pack,omitempty"`
	Version int64    `json:"-"` // Версия сессии на момент начала цепочки
}

// LoginPreference хранит клиентскую настройку "запомнить меня"
// и последний использованный email для предзаполнения формы входа.
type LoginPreference struct {
	RememberMe bool   `json:"remember_me"`
	LastEmail  string `json:"last_email"`
}
