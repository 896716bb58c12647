package service

import (
	"context"
	"log"

	"device-auth-server/internal/model"
	"device-auth-server/internal/ports"
	"device-auth-server/internal/util"

	"github.com/jmoiron/sqlx"
)

// RevokerService удаляет учётные данные устройства или всех устройств пользователя
type RevokerService struct {
	credentialRepository ports.CredentialRepository
}

func NewRevokerService(repo ports.CredentialRepository) *RevokerService {
	return &RevokerService{credentialRepository: repo}
}

// RevokeDevice удаляет обе записи устройства в рамках переданной транзакции.
// Для операции login отсутствие записей допустимо: первому входу отзывать нечего.
// Для logout и refresh отсутствие обеих записей — ErrDeviceNotFound.
func (s *RevokerService) RevokeDevice(ctx context.Context, exec sqlx.ExtContext, userUUID, deviceName string, operation string) (bool, bool, error) {
	accessRevoked, refreshRevoked, err := s.credentialRepository.DeleteDeviceCredentials(ctx, exec, userUUID, deviceName)
	if err != nil {
		return false, false, util.LogError("[RevokerService] не удалось отозвать учётные данные устройства", err)
	}

	if operation != OperationLogin && !accessRevoked && !refreshRevoked {
		return false, false, ErrDeviceNotFound
	}

	return accessRevoked, refreshRevoked, nil
}

// RevokeAllForUser удаляет все учётные данные пользователя одной транзакцией.
// Ноль refresh записей — ErrNoCredentials: вызывающий отличает
// "уже везде разлогинен" от успеха.
func (s *RevokerService) RevokeAllForUser(ctx context.Context, userUUID string) (*model.RevokedSummary, error) {
	exec, rollback, commit, err := s.credentialRepository.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[RevokerService] не удалось начать транзакцию", err)
	}
	defer rollback()

	count, deviceNames, err := s.credentialRepository.DeleteAllForUser(ctx, exec, userUUID)
	if err != nil {
		return nil, util.LogError("[RevokerService] не удалось отозвать учётные данные пользователя", err)
	}

	if count == 0 {
		return nil, ErrNoCredentials
	}

	if err := commit(); err != nil {
		return nil, util.LogError("[RevokerService] не удалось закоммитить транзакцию", err)
	}

	log.Printf("[RevokerService] отозвано %d refresh записей пользователя %s, устройства: %v", count, userUUID, deviceNames)

	return &model.RevokedSummary{
		Count:       count,
		DeviceNames: deviceNames,
	}, nil
}
