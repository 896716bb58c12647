package model

import "time"

// AccessCredential : короткоживущий токен доступа устройства.
// В БД хранится только sha256-хэш секрета, сам секрет отдается клиенту один раз.
type AccessCredential struct {
	UUID       string    `db:"uuid"`
	UserUUID   string    `db:"user_uuid"`
	DeviceName string    `db:"device_name"`
	SecretHash string    `db:"secret_hash"`
	CreatedAt  time.Time `db:"created_at"`
	ExpiresAt  time.Time `db:"expires_at"`
}

// RefreshCredential : долгоживущий токен обновления устройства.
// Инвариант: не больше одной живой записи на пару (user_uuid, device_name),
// ротация удаляет старую запись и вставляет новую в одной транзакции.
type RefreshCredential struct {
	UUID       string    `db:"uuid"`
	UserUUID   string    `db:"user_uuid"`
	DeviceName string    `db:"device_name"`
	SecretHash string    `db:"secret_hash"`
	CreatedAt  time.Time `db:"created_at"`
	ExpiresAt  time.Time `db:"expires_at"`
}

// CredentialPair содержит пару выданных секретов для устройства
// swagger:model
type CredentialPair struct {
	// Access секрет (uuid|secret, отдается один раз)
	// example: 7f2b...|vcSi0369y1I62wOpxZFpgZ
	AccessSecret string `json:"accessSecret"`

	// Refresh секрет (для получения новой пары)
	// example: vcSi0369y1I62wOpxZFpgZ...
	RefreshSecret string `json:"refreshSecret"`

	// Время жизни access секрета в секундах
	// example: 3600
	ExpiresIn int64 `json:"expiresIn"`

	// Имя устройства, для которого выдана пара
	// example: phone
	DeviceName string `json:"deviceName"`
}

// RevokedSummary : результат отзыва всех учётных данных пользователя
type RevokedSummary struct {
	Count       int64    `json:"count"`
	DeviceNames []string `json:"devices"`
}
