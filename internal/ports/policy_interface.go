package ports

import "context"

// RateLimiter : счётчик попыток входа с фиксированным окном
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// PolicyService : предусловия, проверяемые до Session Gate.
// Вызываются явно из handler-ов, а не ветвлением в middleware по форме запроса.
type PolicyService interface {
	CheckEmailVerifiedForLogin(ctx context.Context, email string) error
	CheckEmailVerifiedForRefresh(ctx context.Context, refreshSecret, deviceName string) error
	AllowLogin(ctx context.Context, clientIP string) error
}
