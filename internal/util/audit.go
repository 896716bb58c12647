package util

import (
	"log"
	"strings"
)

// MaskEmail маскирует email для журнала аудита: "a@x.com" -> "a***@x.com".
// Полный адрес в журнал не попадает никогда.
func MaskEmail(email string) string {
	if email == "" {
		return "unknown"
	}

	at := strings.Index(email, "@")
	if at <= 0 {
		return "***"
	}

	return email[:1] + "***" + email[at:]
}

// AuditAttempt записывает исход операции в журнал аудита.
// Вызывается на каждую попытку login/refresh/logout независимо от ответа клиенту.
func AuditAttempt(operation string, email string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	log.Printf("[Audit] операция=%s, email=%s, результат=%s", operation, MaskEmail(email), result)
}
