package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"unicode"

	"device-auth-server/config"
	"device-auth-server/internal/model"
	"device-auth-server/internal/ports"
	"device-auth-server/internal/security"
	"device-auth-server/internal/util"

	"github.com/google/uuid"
)

type UserService struct {
	userRepository ports.UserRepository
	revoker        ports.CredentialRevoker
	verification   ports.VerificationService
	images         ports.ProfileImageService
}

func NewUserService(
	userRepository ports.UserRepository,
	revoker ports.CredentialRevoker,
	verification ports.VerificationService,
	images ports.ProfileImageService,
) *UserService {
	return &UserService{
		userRepository: userRepository,
		revoker:        revoker,
		verification:   verification,
		images:         images,
	}
}

// Register создаёт пользователя с неподтверждённым email
// и запускает отправку ссылки подтверждения
func (s *UserService) Register(ctx context.Context, email, password, firstName, lastName string) (*model.User, error) {
	if err := validateEmail(email); err != nil {
		return nil, fmt.Errorf("[UserService] %w", err)
	}

	if err := validatePassword(password); err != nil {
		return nil, fmt.Errorf("[UserService] %w", err)
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("[UserService] не удалось создать хэш пароля: %w", err)
	}

	user := &model.User{
		UUID:         uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
	}

	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, fmt.Errorf("[UserService] database connection не найден в context")
	}

	created, err := s.userRepository.CreateUser(ctx, db, user)
	if err != nil {
		return nil, fmt.Errorf("[UserService] ошибка создания пользователя: %w", err)
	}

	if err := s.verification.SendVerification(ctx, created.Email); err != nil {
		// регистрация состоялась, ссылку можно запросить повторно
		util.LogError("[UserService] не удалось отправить ссылку подтверждения", err)
	}

	return created, nil
}

func validateEmail(email string) error {
	if len(email) > 248 {
		return fmt.Errorf("email должен быть не длиннее 248 символов")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("некорректный email")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("пароль должен содержать минимум 8 символов")
	}

	var upperCount, lowerCount, digitCount, specialCount int

	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			upperCount++
		case unicode.IsLower(c):
			lowerCount++
		case unicode.IsDigit(c):
			digitCount++
		case unicode.IsPunct(c) || unicode.IsSymbol(c):
			specialCount++
		}
	}

	if upperCount == 0 || lowerCount == 0 || (upperCount+lowerCount) < 2 {
		return fmt.Errorf("пароль должен содержать минимум 2 буквы в разных регистрах")
	}
	if digitCount < 1 {
		return fmt.Errorf("пароль должен содержать хотя бы одну цифру")
	}
	if specialCount < 1 {
		return fmt.Errorf("пароль должен содержать хотя бы один специальный символ")
	}

	return nil
}

func (s *UserService) GetUser(ctx context.Context, uuid string) (*model.User, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, fmt.Errorf("[UserService] database connection не найден в context")
	}

	principal, err := security.GetPrincipalFromContext(ctx)
	if err != nil || principal == nil {
		return nil, ErrUnauthenticated
	}

	if principal.UserUUID != uuid {
		return nil, fmt.Errorf("[UserService] доступ запрещён")
	}

	user, err := s.userRepository.FindByUUID(ctx, db, uuid)
	if err != nil || user == nil {
		return nil, fmt.Errorf("[UserService] пользователь не найден")
	}

	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, updatedUser *model.User) error {
	principal, err := security.GetPrincipalFromContext(ctx)
	if err != nil || principal == nil {
		return ErrUnauthenticated
	}

	db, ok := ctx.Value("db").(*config.Database)
	if ok == false {
		return fmt.Errorf("[UserService] database connection не найден в context")
	}

	if principal.UserUUID != updatedUser.UUID {
		return fmt.Errorf("[UserService] доступ запрещён")
	}

	return s.userRepository.UpdateUser(ctx, db, updatedUser)
}

func (s *UserService) UpdatePassword(ctx context.Context, uuid, newPassword string) error {
	principal, err := security.GetPrincipalFromContext(ctx)
	if err != nil || principal == nil {
		return ErrUnauthenticated
	}

	db, ok := ctx.Value("db").(*config.Database)
	if ok == false {
		return fmt.Errorf("[UserService] database connection не найден в context")
	}

	if principal.UserUUID != uuid {
		return fmt.Errorf("[UserService] доступ запрещён")
	}

	if err := validatePassword(newPassword); err != nil {
		return fmt.Errorf("[UserService] %w", err)
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.userRepository.UpdatePassword(ctx, db, uuid, hash)
}

// PrepareProfileImage выдаёт pre-signed PUT ссылку для нового изображения
// профиля и запоминает путь. Старое изображение удаляется из хранилища.
func (s *UserService) PrepareProfileImage(ctx context.Context, uuid string, fileName string) (string, string, error) {
	principal, err := security.GetPrincipalFromContext(ctx)
	if err != nil || principal == nil {
		return "", "", ErrUnauthenticated
	}

	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return "", "", fmt.Errorf("[UserService] database connection не найден в context")
	}

	if principal.UserUUID != uuid {
		return "", "", fmt.Errorf("[UserService] доступ запрещён")
	}

	user, err := s.userRepository.FindByUUID(ctx, db, uuid)
	if err != nil || user == nil {
		return "", "", fmt.Errorf("[UserService] пользователь не найден")
	}

	uploadURL, imagePath, err := s.images.PrepareUpload(ctx, uuid, fileName)
	if err != nil {
		return "", "", fmt.Errorf("[UserService] не удалось подготовить загрузку изображения: %w", err)
	}

	if user.ImagePath != "" {
		if err := s.images.DeleteImage(ctx, user.ImagePath); err != nil {
			util.LogError("[UserService] не удалось удалить старое изображение", err)
		}
	}

	if err := s.userRepository.UpdateImagePath(ctx, db, uuid, imagePath); err != nil {
		return "", "", fmt.Errorf("[UserService] не удалось сохранить путь изображения: %w", err)
	}

	return uploadURL, imagePath, nil
}

// DeleteUser удаляет пользователя, предварительно отозвав
// его учётные данные на всех устройствах
func (s *UserService) DeleteUser(ctx context.Context, uuid string) error {
	principal, err := security.GetPrincipalFromContext(ctx)
	if err != nil || principal == nil {
		return ErrUnauthenticated
	}

	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return fmt.Errorf("[UserService] database connection не найден в context")
	}

	if principal.UserUUID != uuid {
		return fmt.Errorf("[UserService] доступ запрещён")
	}

	if _, err := s.revoker.RevokeAllForUser(ctx, uuid); err != nil && !errors.Is(err, ErrNoCredentials) {
		return fmt.Errorf("[UserService] не удалось отозвать учётные данные: %w", err)
	}

	if err := s.userRepository.DeleteUser(ctx, db, uuid); err != nil {
		return fmt.Errorf("[UserService] пользователь не найден")
	}

	return nil
}
