package ports

import (
	"context"
	"time"

	"device-auth-server/internal/model"

	"github.com/jmoiron/sqlx"
)

// CredentialRepository : SQL слой для двух таблиц учётных данных.
// Методы принимают exec, чтобы несколько операций могли разделить одну транзакцию.
type CredentialRepository interface {
	BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error)
	LockDevice(ctx context.Context, exec sqlx.ExtContext, deviceName string) error
	SaveAccessCredential(ctx context.Context, exec sqlx.ExtContext, credential *model.AccessCredential) error
	SaveRefreshCredential(ctx context.Context, exec sqlx.ExtContext, credential *model.RefreshCredential) error
	FindAccessByUUID(ctx context.Context, exec sqlx.ExtContext, credentialUUID string) (*model.AccessCredential, error)
	FindRefreshByDevice(ctx context.Context, exec sqlx.ExtContext, deviceName string) (*model.RefreshCredential, error)
	DeleteDeviceCredentials(ctx context.Context, exec sqlx.ExtContext, userUUID, deviceName string) (accessDeleted bool, refreshDeleted bool, err error)
	DeleteAllForUser(ctx context.Context, exec sqlx.ExtContext, userUUID string) (count int64, deviceNames []string, err error)
	ListDevices(ctx context.Context, exec sqlx.ExtContext, userUUID string) ([]string, error)
}

type CredentialIssuer interface {
	IssueAccessCredential(ctx context.Context, exec sqlx.ExtContext, userUUID, deviceName string) (plainSecret string, expiresAt time.Time, err error)
	IssueRefreshCredential(ctx context.Context, exec sqlx.ExtContext, userUUID, deviceName string) (plainSecret string, expiresAt time.Time, err error)
	AccessTTLSeconds() int64
}

type CredentialRevoker interface {
	RevokeDevice(ctx context.Context, exec sqlx.ExtContext, userUUID, deviceName string, operation string) (accessRevoked bool, refreshRevoked bool, err error)
	RevokeAllForUser(ctx context.Context, userUUID string) (*model.RevokedSummary, error)
}
