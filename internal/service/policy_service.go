package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"device-auth-server/config"
	"device-auth-server/internal/ports"
	"device-auth-server/internal/security"
	"device-auth-server/internal/util"
)

// PolicyService — предусловия перед Session Gate: подтверждённый email
// и лимит попыток входа. Вызывается явно из handler-ов.
type PolicyService struct {
	userRepository       ports.UserRepository
	credentialRepository ports.CredentialRepository
	rateLimiter          ports.RateLimiter
}

func NewPolicyService(
	userRepository ports.UserRepository,
	credentialRepository ports.CredentialRepository,
	rateLimiter ports.RateLimiter,
) *PolicyService {
	return &PolicyService{
		userRepository:       userRepository,
		credentialRepository: credentialRepository,
		rateLimiter:          rateLimiter,
	}
}

// CheckEmailVerifiedForLogin проверяет подтверждение email перед входом.
// Несуществующий адрес отклоняется тем же ErrInvalidCredentials, что и
// неверный пароль.
func (s *PolicyService) CheckEmailVerifiedForLogin(ctx context.Context, email string) error {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return fmt.Errorf("[PolicyService] database connection не найден в context")
	}

	user, err := s.userRepository.FindByEmail(ctx, db, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidCredentials
		}
		return util.LogError("[PolicyService] ошибка поиска пользователя по email", err)
	}

	if !user.IsVerified || user.EmailVerifiedAt == nil {
		log.Printf("[PolicyService] вход отклонён: email не подтверждён, %s", util.MaskEmail(email))
		return ErrEmailNotVerified
	}

	return nil
}

// CheckEmailVerifiedForRefresh проверяет подтверждение email владельца
// refresh секрета перед ротацией
func (s *PolicyService) CheckEmailVerifiedForRefresh(ctx context.Context, refreshSecret, deviceName string) error {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return fmt.Errorf("[PolicyService] database connection не найден в context")
	}

	stored, err := s.credentialRepository.FindRefreshByDevice(ctx, db, deviceName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidRefreshToken
		}
		return util.LogError("[PolicyService] ошибка поиска refresh записи", err)
	}

	if !security.CheckPassword(refreshSecret, stored.SecretHash) {
		return ErrInvalidRefreshToken
	}

	user, err := s.userRepository.FindByUUID(ctx, db, stored.UserUUID)
	if err != nil || user == nil {
		return ErrInvalidRefreshToken
	}

	if !user.IsVerified || user.EmailVerifiedAt == nil {
		log.Printf("[PolicyService] ротация отклонена: email не подтверждён, %s", util.MaskEmail(user.Email))
		return ErrEmailNotVerified
	}

	return nil
}

// AllowLogin : лимит попыток входа по IP клиента
func (s *PolicyService) AllowLogin(ctx context.Context, clientIP string) error {
	allowed, err := s.rateLimiter.Allow(ctx, clientIP)
	if err != nil {
		return util.LogError("[PolicyService] ошибка проверки лимита попыток", err)
	}

	if !allowed {
		log.Printf("[PolicyService] превышен лимит попыток входа, ip=%s", clientIP)
		return ErrRateLimited
	}

	return nil
}
