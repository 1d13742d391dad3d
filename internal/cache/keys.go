package cache

import "fmt"

// Ключи кеша, разделяемые сервисами приложения.

// SessionVersionKey — счетчик версии сессии пользователя. Инкремент при
// выходе делает недействительными все ранее выданные токены.
func SessionVersionKey(userUID string) string {
	return fmt.Sprintf("session:version:%s", userUID)
}

// SessionSnapshotKey — кешированный снимок цепочки загрузки сессии.
func SessionSnapshotKey(userUID string) string {
	return fmt.Sprintf("session:snapshot:%s", userUID)
}

// TemplatesKey — кешированный список шаблонов для пары платформа/формат.
func TemplatesKey(platform, format string) string {
	return fmt.Sprintf("templates:%s:%s", platform, format)
}

// LoginPreferenceKey — настройка "запомнить меня" для устройства.
func LoginPreferenceKey(deviceID string) string {
	return fmt.Sprintf("loginpref:%s", deviceID)
}
