package repository

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"device-auth-server/config"
	"device-auth-server/internal/model"
	"device-auth-server/internal/util"

	"github.com/jmoiron/sqlx"
)

type CredentialRepository struct {
	*config.Database
}

func NewCredentialRepository(database *config.Database) *CredentialRepository {
	return &CredentialRepository{database}
}

// BeginTX открывает транзакцию. Отзыв и выдача для одного устройства
// всегда выполняются внутри одной транзакции.
func (r *CredentialRepository) BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	return tx, func() error { return tx.Rollback() }, func() error { return tx.Commit() }, nil
}

// LockDevice сериализует revoke+issue по имени устройства.
// Advisory-lock снимается вместе с транзакцией, поэтому второй конкурентный
// вход для того же устройства дождётся коммита первого. Ключ — только имя
// устройства: refresh узнаёт владельца лишь после чтения строки, и единый
// порядок взятия блокировок исключает deadlock между login и refresh.
func (r *CredentialRepository) LockDevice(ctx context.Context, exec sqlx.ExtContext, deviceName string) error {
	query := `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`

	if _, err := exec.ExecContext(ctx, query, deviceName); err != nil {
		return util.LogError("[CredentialRepo] не удалось взять блокировку устройства", err)
	}

	return nil
}

// SaveAccessCredential сохраняет access запись (в БД только хэш секрета)
func (r *CredentialRepository) SaveAccessCredential(ctx context.Context, exec sqlx.ExtContext, credential *model.AccessCredential) error {
	query := `INSERT INTO access_credentials (uuid, user_uuid, device_name, secret_hash, created_at, expires_at)
				VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := exec.ExecContext(ctx, query,
		credential.UUID,
		credential.UserUUID,
		credential.DeviceName,
		credential.SecretHash,
		credential.CreatedAt,
		credential.ExpiresAt,
	)

	if err != nil {
		return util.LogError("[CredentialRepo] ошибка вставки access записи", err)
	}

	return nil
}

// SaveRefreshCredential сохраняет refresh запись (в БД только хэш секрета)
func (r *CredentialRepository) SaveRefreshCredential(ctx context.Context, exec sqlx.ExtContext, credential *model.RefreshCredential) error {
	query := `INSERT INTO refresh_credentials (uuid, user_uuid, device_name, secret_hash, created_at, expires_at)
				VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := exec.ExecContext(ctx, query,
		credential.UUID,
		credential.UserUUID,
		credential.DeviceName,
		credential.SecretHash,
		credential.CreatedAt,
		credential.ExpiresAt,
	)

	if err != nil {
		return util.LogError("[CredentialRepo] ошибка вставки refresh записи", err)
	}

	return nil
}

// FindAccessByUUID ищет access запись по её UUID
func (r *CredentialRepository) FindAccessByUUID(ctx context.Context, exec sqlx.ExtContext, credentialUUID string) (*model.AccessCredential, error) {
	query := `SELECT uuid, user_uuid, device_name, secret_hash, created_at, expires_at
				FROM access_credentials WHERE uuid = $1`

	credential := &model.AccessCredential{}
	err := sqlx.GetContext(ctx, exec, credential, query, credentialUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.LogError("[CredentialRepo] access запись не найдена", err)
		}
		return nil, util.LogError("[CredentialRepo] ошибка при выполнении запроса", err)
	}

	return credential, nil
}

// FindRefreshByDevice ищет refresh запись по имени устройства.
// Запрос идёт с FOR UPDATE: ротация держит строку до конца транзакции.
func (r *CredentialRepository) FindRefreshByDevice(ctx context.Context, exec sqlx.ExtContext, deviceName string) (*model.RefreshCredential, error) {
	query := `SELECT uuid, user_uuid, device_name, secret_hash, created_at, expires_at
				FROM refresh_credentials WHERE device_name = $1 FOR UPDATE`

	credential := &model.RefreshCredential{}
	err := sqlx.GetContext(ctx, exec, credential, query, deviceName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, util.LogError("[CredentialRepo] ошибка при выполнении запроса", err)
	}

	return credential, nil
}

// DeleteDeviceCredentials удаляет обе записи устройства.
// Вызывающий обязан передать exec открытой транзакции: частичный отзыв
// (удален refresh, остался access) наблюдаться не должен.
func (r *CredentialRepository) DeleteDeviceCredentials(ctx context.Context, exec sqlx.ExtContext, userUUID, deviceName string) (bool, bool, error) {
	accessResult, err := exec.ExecContext(ctx,
		`DELETE FROM access_credentials WHERE user_uuid = $1 AND device_name = $2`,
		userUUID, deviceName,
	)
	if err != nil {
		return false, false, util.LogError("[CredentialRepo] не удалось удалить access записи устройства", err)
	}

	refreshResult, err := exec.ExecContext(ctx,
		`DELETE FROM refresh_credentials WHERE user_uuid = $1 AND device_name = $2`,
		userUUID, deviceName,
	)
	if err != nil {
		return false, false, util.LogError("[CredentialRepo] не удалось удалить refresh записи устройства", err)
	}

	accessDeleted, err := accessResult.RowsAffected()
	if err != nil {
		return false, false, util.LogError("[CredentialRepo] не удалось проверить, удалены ли access записи", err)
	}

	refreshDeleted, err := refreshResult.RowsAffected()
	if err != nil {
		return false, false, util.LogError("[CredentialRepo] не удалось проверить, удалены ли refresh записи", err)
	}

	return accessDeleted > 0, refreshDeleted > 0, nil
}

// DeleteAllForUser удаляет все учётные данные пользователя на всех устройствах.
// Имена устройств и счётчик берутся из одного DELETE ... RETURNING: отдельное
// чтение перед удалением разошлось бы с результатом при конкурентном входе.
func (r *CredentialRepository) DeleteAllForUser(ctx context.Context, exec sqlx.ExtContext, userUUID string) (int64, []string, error) {
	deviceNames := []string{}
	err := sqlx.SelectContext(ctx, exec, &deviceNames,
		`DELETE FROM refresh_credentials WHERE user_uuid = $1 RETURNING device_name`,
		userUUID,
	)
	if err != nil {
		return 0, nil, util.LogError("[CredentialRepo] не удалось удалить refresh записи пользователя", err)
	}

	if _, err := exec.ExecContext(ctx,
		`DELETE FROM access_credentials WHERE user_uuid = $1`,
		userUUID,
	); err != nil {
		return 0, nil, util.LogError("[CredentialRepo] не удалось удалить access записи пользователя", err)
	}

	sort.Strings(deviceNames)
	return int64(len(deviceNames)), deviceNames, nil
}

// ListDevices : имена устройств с живой refresh записью
func (r *CredentialRepository) ListDevices(ctx context.Context, exec sqlx.ExtContext, userUUID string) ([]string, error) {
	deviceNames := []string{}
	err := sqlx.SelectContext(ctx, exec, &deviceNames,
		`SELECT device_name FROM refresh_credentials WHERE user_uuid = $1 ORDER BY device_name`,
		userUUID,
	)
	if err != nil {
		return nil, util.LogError("[CredentialRepo] не удалось получить список устройств", err)
	}

	return deviceNames, nil
}
