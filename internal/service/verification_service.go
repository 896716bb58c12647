package service

import (
	"context"
	"fmt"
	"log"

	"device-auth-server/config"
	"device-auth-server/internal/ports"
	"device-auth-server/internal/util"
)

// VerificationService выпускает и подтверждает токены верификации email.
// Сама доставка письма — внешняя: ссылка уходит в webhook почтового сервиса.
type VerificationService struct {
	userRepository ports.UserRepository
	tokenService   ports.VerificationTokenInterface
	notifier       ports.Notifier
}

func NewVerificationService(
	userRepository ports.UserRepository,
	tokenService ports.VerificationTokenInterface,
	notifier ports.Notifier,
) *VerificationService {
	return &VerificationService{
		userRepository: userRepository,
		tokenService:   tokenService,
		notifier:       notifier,
	}
}

// SendVerification выпускает токен подтверждения и передаёт его отправителю.
// Для неизвестного адреса отвечаем так же, как для известного:
// наличие учётной записи не раскрывается.
func (s *VerificationService) SendVerification(ctx context.Context, email string) error {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return fmt.Errorf("[VerificationService] database connection не найден в context")
	}

	user, err := s.userRepository.FindByEmail(ctx, db, email)
	if err != nil || user == nil {
		log.Printf("[VerificationService] запрос подтверждения для неизвестного адреса %s", util.MaskEmail(email))
		return nil
	}

	if user.IsVerified {
		log.Printf("[VerificationService] email уже подтверждён, %s", util.MaskEmail(email))
		return nil
	}

	token, err := s.tokenService.GenerateToken(user.UUID, user.Email)
	if err != nil {
		return util.LogError("[VerificationService] не удалось выпустить токен подтверждения", err)
	}

	if err := s.notifier.NotifyVerification(ctx, user.Email, token); err != nil {
		return util.LogError("[VerificationService] не удалось передать ссылку подтверждения", err)
	}

	return nil
}

// ConfirmVerification проверяет токен и помечает email подтверждённым
func (s *VerificationService) ConfirmVerification(ctx context.Context, token string) error {
	claims, err := s.tokenService.ValidateToken(token)
	if err != nil {
		return util.LogError("[VerificationService] невалидный токен подтверждения", err)
	}

	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return fmt.Errorf("[VerificationService] database connection не найден в context")
	}

	user, err := s.userRepository.FindByUUID(ctx, db, claims.UserUUID)
	if err != nil || user == nil {
		return fmt.Errorf("[VerificationService] пользователь не найден")
	}

	if user.Email != claims.Email {
		return fmt.Errorf("[VerificationService] токен выпущен для другого адреса")
	}

	if user.IsVerified {
		return nil
	}

	if err := s.userRepository.MarkEmailVerified(ctx, db, user.UUID); err != nil {
		return util.LogError("[VerificationService] не удалось подтвердить email", err)
	}

	log.Printf("[VerificationService] email подтверждён, %s", util.MaskEmail(user.Email))
	return nil
}
