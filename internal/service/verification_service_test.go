package service_test

import (
	"context"
	"errors"
	"testing"

	"device-auth-server/config"
	"device-auth-server/internal/model"
	"device-auth-server/internal/security"
	"device-auth-server/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockVerificationToken
type MockVerificationToken struct {
	mock.Mock
}

func (m *MockVerificationToken) GenerateToken(userUUID string, email string) (string, error) {
	args := m.Called(userUUID, email)
	return args.String(0), args.Error(1)
}

func (m *MockVerificationToken) ValidateToken(tokenStr string) (*security.VerificationClaims, error) {
	args := m.Called(tokenStr)
	if c, ok := args.Get(0).(*security.VerificationClaims); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyVerification(ctx context.Context, email string, token string) error {
	args := m.Called(ctx, email, token)
	return args.Error(0)
}

func newTestVerificationService() (*service.VerificationService, *MockUserRepository, *MockVerificationToken, *MockNotifier) {
	mockUserRepo := new(MockUserRepository)
	mockToken := new(MockVerificationToken)
	mockNotifier := new(MockNotifier)

	svc := service.NewVerificationService(mockUserRepo, mockToken, mockNotifier)

	return svc, mockUserRepo, mockToken, mockNotifier
}

// 1. Неизвестный адрес: тот же успех, что и для известного, токен не выпускается
func TestSendVerification_UnknownEmailSilentSuccess(t *testing.T) {
	svc, mockUserRepo, mockToken, mockNotifier := newTestVerificationService()
	ctx := context.WithValue(context.Background(), "db", &config.Database{})

	mockUserRepo.On("FindByEmail", ctx, mock.Anything, "ghost@example.com").
		Return(nil, errors.New("not found"))

	err := svc.SendVerification(ctx, "ghost@example.com")

	assert.NoError(t, err)
	mockToken.AssertNotCalled(t, "GenerateToken", mock.Anything, mock.Anything)
	mockNotifier.AssertNotCalled(t, "NotifyVerification", mock.Anything, mock.Anything, mock.Anything)
}

// 2. Уже подтверждён — повторная ссылка не отправляется
func TestSendVerification_AlreadyVerified(t *testing.T) {
	svc, mockUserRepo, mockToken, _ := newTestVerificationService()
	ctx := context.WithValue(context.Background(), "db", &config.Database{})

	user := &model.User{UUID: "u1", Email: "user@example.com", IsVerified: true}

	mockUserRepo.On("FindByEmail", ctx, mock.Anything, "user@example.com").
		Return(user, nil)

	err := svc.SendVerification(ctx, "user@example.com")

	assert.NoError(t, err)
	mockToken.AssertNotCalled(t, "GenerateToken", mock.Anything, mock.Anything)
}

// 3. Успех: токен уходит отправителю
func TestSendVerification_Success(t *testing.T) {
	svc, mockUserRepo, mockToken, mockNotifier := newTestVerificationService()
	ctx := context.WithValue(context.Background(), "db", &config.Database{})

	user := &model.User{UUID: "u1", Email: "user@example.com", IsVerified: false}

	mockUserRepo.On("FindByEmail", ctx, mock.Anything, "user@example.com").
		Return(user, nil)
	mockToken.On("GenerateToken", "u1", "user@example.com").Return("signed-token", nil)
	mockNotifier.On("NotifyVerification", ctx, "user@example.com", "signed-token").Return(nil)

	err := svc.SendVerification(ctx, "user@example.com")

	assert.NoError(t, err)
	mockUserRepo.AssertExpectations(t)
	mockToken.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)
}

// 4. Токен выпущен для другого адреса
func TestConfirmVerification_EmailMismatch(t *testing.T) {
	svc, mockUserRepo, mockToken, _ := newTestVerificationService()
	ctx := context.WithValue(context.Background(), "db", &config.Database{})

	claims := &security.VerificationClaims{UserUUID: "u1", Email: "old@example.com"}
	user := &model.User{UUID: "u1", Email: "new@example.com"}

	mockToken.On("ValidateToken", "signed-token").Return(claims, nil)
	mockUserRepo.On("FindByUUID", ctx, mock.Anything, "u1").Return(user, nil)

	err := svc.ConfirmVerification(ctx, "signed-token")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "другого адреса")
	mockUserRepo.AssertNotCalled(t, "MarkEmailVerified", mock.Anything, mock.Anything, mock.Anything)
}

// 5. Успешное подтверждение
func TestConfirmVerification_Success(t *testing.T) {
	svc, mockUserRepo, mockToken, _ := newTestVerificationService()
	ctx := context.WithValue(context.Background(), "db", &config.Database{})

	claims := &security.VerificationClaims{UserUUID: "u1", Email: "user@example.com"}
	user := &model.User{UUID: "u1", Email: "user@example.com", IsVerified: false}

	mockToken.On("ValidateToken", "signed-token").Return(claims, nil)
	mockUserRepo.On("FindByUUID", ctx, mock.Anything, "u1").Return(user, nil)
	mockUserRepo.On("MarkEmailVerified", ctx, mock.Anything, "u1").Return(nil)

	err := svc.ConfirmVerification(ctx, "signed-token")

	assert.NoError(t, err)
	mockUserRepo.AssertExpectations(t)
	mockToken.AssertExpectations(t)
}
