package ports

import (
	"context"

	"device-auth-server/internal/model"
	"device-auth-server/internal/security"
)

type SessionService interface {
	Login(ctx context.Context, email, password, deviceName string) (*model.CredentialPair, error)
	Refresh(ctx context.Context, refreshSecret, deviceName string) (*model.CredentialPair, error)
	Logout(ctx context.Context, principal *security.Principal, deviceName string) error
	LogoutAll(ctx context.Context, principal *security.Principal) (*model.RevokedSummary, error)
	ListDevices(ctx context.Context, principal *security.Principal) ([]string, error)
}
