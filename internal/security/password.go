package security

import (
	"device-auth-server/internal/util"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword хэширует пароль или refresh-секрет.
// bcrypt медленный и солёный, сравнение выполняется за константное время.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", util.LogError("ошибка хэширования", err)
	}
	return string(hash), nil
}

func CheckPassword(password string, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
