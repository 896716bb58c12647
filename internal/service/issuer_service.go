package service

import (
	"context"
	"time"

	"device-auth-server/config"
	"device-auth-server/internal/model"
	"device-auth-server/internal/ports"
	"device-auth-server/internal/security"
	"device-auth-server/internal/util"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// IssuerService выдаёт новые учётные данные устройства.
// Повторный вызов без предварительного отзыва создаст вторую запись:
// последовательность revoke-then-issue обеспечивает Session Gate.
type IssuerService struct {
	credentialRepository ports.CredentialRepository
	accessTTL            time.Duration
	refreshTTL           time.Duration
	clock                util.Clock
}

func NewIssuerService(
	repo ports.CredentialRepository,
	cfg *config.CredentialConfig,
	clock util.Clock,
) (*IssuerService, error) {
	accessTTL, err := time.ParseDuration(cfg.AccessTTL)
	if err != nil {
		return nil, util.LogError("[IssuerService] ошибка парсинга access_ttl", err)
	}

	refreshTTL, err := time.ParseDuration(cfg.RefreshTTL)
	if err != nil {
		return nil, util.LogError("[IssuerService] ошибка парсинга refresh_ttl", err)
	}

	return &IssuerService{
		credentialRepository: repo,
		accessTTL:            accessTTL,
		refreshTTL:           refreshTTL,
		clock:                clock,
	}, nil
}

// IssueAccessCredential создаёт access запись и возвращает секрет.
// Секрет отдается один раз, из БД его восстановить нельзя.
func (s *IssuerService) IssueAccessCredential(ctx context.Context, exec sqlx.ExtContext, userUUID, deviceName string) (string, time.Time, error) {
	credentialUUID, plainSecret, secretHash, err := security.GenerateAccessSecret()
	if err != nil {
		return "", time.Time{}, util.LogError("[IssuerService] ошибка генерации access секрета", err)
	}

	now := s.clock.Now()
	credential := &model.AccessCredential{
		UUID:       credentialUUID,
		UserUUID:   userUUID,
		DeviceName: deviceName,
		SecretHash: secretHash,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.accessTTL),
	}

	if err := s.credentialRepository.SaveAccessCredential(ctx, exec, credential); err != nil {
		return "", time.Time{}, util.LogError("[IssuerService] ошибка сохранения access записи", err)
	}

	return plainSecret, credential.ExpiresAt, nil
}

// IssueRefreshCredential создаёт refresh запись и возвращает секрет.
// Хэш — bcrypt: поиск записи идёт по устройству, а не по секрету.
func (s *IssuerService) IssueRefreshCredential(ctx context.Context, exec sqlx.ExtContext, userUUID, deviceName string) (string, time.Time, error) {
	plainSecret, err := security.GenerateRefreshSecret()
	if err != nil {
		return "", time.Time{}, util.LogError("[IssuerService] ошибка генерации refresh секрета", err)
	}

	secretHash, err := security.HashPassword(plainSecret)
	if err != nil {
		return "", time.Time{}, util.LogError("[IssuerService] ошибка хэширования refresh секрета", err)
	}

	now := s.clock.Now()
	credential := &model.RefreshCredential{
		UUID:       uuid.New().String(),
		UserUUID:   userUUID,
		DeviceName: deviceName,
		SecretHash: secretHash,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.refreshTTL),
	}

	if err := s.credentialRepository.SaveRefreshCredential(ctx, exec, credential); err != nil {
		return "", time.Time{}, util.LogError("[IssuerService] ошибка сохранения refresh записи", err)
	}

	return plainSecret, credential.ExpiresAt, nil
}

// AccessTTLSeconds : время жизни access секрета для ответа клиенту
func (s *IssuerService) AccessTTLSeconds() int64 {
	return int64(s.accessTTL.Seconds())
}
