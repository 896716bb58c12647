package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"device-auth-server/internal/util"

	"github.com/google/uuid"
)

// GenerateAccessSecret создаёт opaque access секрет для устройства.
// Клиенту отдается составной секрет "uuid|secret" (один раз, восстановить нельзя),
// в БД сохраняется только sha256-хэш случайной части.
func GenerateAccessSecret() (credentialUUID string, plainSecret string, secretHash string, err error) {
	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return "", "", "", util.LogError("ошибка генерации секрета", err)
	}

	credentialUUID = uuid.New().String()
	secret := base64.RawURLEncoding.EncodeToString(secretBytes)

	return credentialUUID, credentialUUID + "|" + secret, HashAccessSecret(secret), nil
}

// GenerateRefreshSecret создаёт opaque refresh секрет.
// Хэшируется bcrypt-ом на уровне выше: поиск идет по (user, device), а не по секрету.
func GenerateRefreshSecret() (string, error) {
	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return "", util.LogError("ошибка генерации секрета", err)
	}

	return base64.RawURLEncoding.EncodeToString(secretBytes), nil
}

func HashAccessSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// VerifyAccessSecret сравнивает секрет с хэшем из БД за константное время
func VerifyAccessSecret(secret string, storedHash string) bool {
	computed := HashAccessSecret(secret)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}

// ParseAccessSecret разбирает составной секрет "uuid|secret"
func ParseAccessSecret(composite string) (credentialUUID string, secret string, err error) {
	parts := strings.SplitN(composite, "|", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("неверный формат access секрета")
	}
	return parts[0], parts[1], nil
}
