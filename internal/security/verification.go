package security

import (
	"fmt"
	"time"

	"device-auth-server/config"
	"device-auth-server/internal/util"

	"github.com/golang-jwt/jwt/v5"
)

// VerificationClaims : подписанный токен подтверждения email
type VerificationClaims struct {
	UserUUID string `json:"user_uuid"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

type VerificationTokenService struct {
	*config.VerificationConfig
}

func NewVerificationTokenService(cfg *config.VerificationConfig) *VerificationTokenService {
	return &VerificationTokenService{cfg}
}

// GenerateToken выпускает подписанный токен подтверждения email
func (service *VerificationTokenService) GenerateToken(userUUID string, email string) (string, error) {
	timeDuration, err := time.ParseDuration(service.TokenTTL)
	if err != nil {
		return "", util.LogError("ошибка парсинга", err)
	}

	claims := VerificationClaims{
		UserUUID: userUUID,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(timeDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "Device-auth-server",
		},
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	token, err := jwtToken.SignedString([]byte(service.SecretKey))
	if err != nil {
		return "", util.LogError("ошибка подписи токена", err)
	}

	return token, nil
}

// ValidateToken проверяет подпись и срок токена подтверждения
func (service *VerificationTokenService) ValidateToken(tokenStr string) (*VerificationClaims, error) {
	var claims = &VerificationClaims{}

	jwtToken, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Header["alg"] != jwt.SigningMethodHS512.Alg() {
			return nil, fmt.Errorf("неверный способ подписи токена: %v", token.Header["alg"])
		}
		return []byte(service.SecretKey), nil
	})

	if err != nil || jwtToken.Valid == false {
		return nil, util.LogError("невалидный токен подтверждения", err)
	}

	return claims, nil
}
