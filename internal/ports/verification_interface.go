package ports

import (
	"context"

	"device-auth-server/internal/security"
)

type VerificationTokenInterface interface {
	GenerateToken(userUUID string, email string) (string, error)
	ValidateToken(tokenStr string) (*security.VerificationClaims, error)
}

// Notifier : доставка ссылки подтверждения внешнему отправителю почты
type Notifier interface {
	NotifyVerification(ctx context.Context, email string, token string) error
}

type VerificationService interface {
	SendVerification(ctx context.Context, email string) error
	ConfirmVerification(ctx context.Context, token string) error
}
