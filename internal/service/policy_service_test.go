package service_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"device-auth-server/config"
	"device-auth-server/internal/model"
	"device-auth-server/internal/security"
	"device-auth-server/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRateLimiter
type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func newTestPolicyService() (*service.PolicyService, *MockUserRepository, *MockCredentialRepository, *MockRateLimiter) {
	mockUserRepo := new(MockUserRepository)
	mockCredRepo := new(MockCredentialRepository)
	mockLimiter := new(MockRateLimiter)

	svc := service.NewPolicyService(mockUserRepo, mockCredRepo, mockLimiter)

	return svc, mockUserRepo, mockCredRepo, mockLimiter
}

// 1. Неизвестный email не раскрывается: та же ошибка, что и неверный пароль
func TestCheckEmailVerifiedForLogin_UnknownEmail(t *testing.T) {
	svc, mockUserRepo, _, _ := newTestPolicyService()
	ctx := context.WithValue(context.Background(), "db", &config.Database{})

	mockUserRepo.On("FindByEmail", ctx, mock.Anything, "test@example.com").
		Return(nil, fmt.Errorf("не удалось найти пользователя по email: %w", sql.ErrNoRows))

	err := svc.CheckEmailVerifiedForLogin(ctx, "test@example.com")

	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	mockUserRepo.AssertExpectations(t)
}

// 1a. Сбой хранилища не маскируется под неверные учётные данные
func TestCheckEmailVerifiedForLogin_StorageFailure(t *testing.T) {
	svc, mockUserRepo, _, _ := newTestPolicyService()
	ctx := context.WithValue(context.Background(), "db", &config.Database{})

	mockUserRepo.On("FindByEmail", ctx, mock.Anything, "test@example.com").
		Return(nil, errors.New("pq: connection refused"))

	err := svc.CheckEmailVerifiedForLogin(ctx, "test@example.com")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrInvalidCredentials)
	mockUserRepo.AssertExpectations(t)
}

// 2. Email не подтверждён — вход закрыт
func TestCheckEmailVerifiedForLogin_NotVerified(t *testing.T) {
	svc, mockUserRepo, _, _ := newTestPolicyService()
	ctx := context.WithValue(context.Background(), "db", &config.Database{})

	user := &model.User{UUID: "u1", Email: "test@example.com", IsVerified: false}

	mockUserRepo.On("FindByEmail", ctx, mock.Anything, "test@example.com").
		Return(user, nil)

	err := svc.CheckEmailVerifiedForLogin(ctx, "test@example.com")

	assert.ErrorIs(t, err, service.ErrEmailNotVerified)
	mockUserRepo.AssertExpectations(t)
}

// 3. Подтверждённый email проходит
func TestCheckEmailVerifiedForLogin_Verified(t *testing.T) {
	svc, mockUserRepo, _, _ := newTestPolicyService()
	ctx := context.WithValue(context.Background(), "db", &config.Database{})

	verifiedAt := time.Now().Add(-time.Hour)
	user := &model.User{UUID: "u1", Email: "test@example.com", IsVerified: true, EmailVerifiedAt: &verifiedAt}

	mockUserRepo.On("FindByEmail", ctx, mock.Anything, "test@example.com").
		Return(user, nil)

	err := svc.CheckEmailVerifiedForLogin(ctx, "test@example.com")

	assert.NoError(t, err)
	mockUserRepo.AssertExpectations(t)
}

// 4. Refresh: неподтверждённый владелец действующего секрета не ротируется
func TestCheckEmailVerifiedForRefresh_NotVerified(t *testing.T) {
	svc, mockUserRepo, mockCredRepo, _ := newTestPolicyService()
	ctx := context.WithValue(context.Background(), "db", &config.Database{})

	hash, _ := security.HashPassword("refresh-secret")
	stored := &model.RefreshCredential{UUID: "r1", UserUUID: "u1", DeviceName: "phone", SecretHash: hash, ExpiresAt: time.Now().Add(time.Hour)}
	user := &model.User{UUID: "u1", Email: "test@example.com", IsVerified: false}

	mockCredRepo.On("FindRefreshByDevice", ctx, mock.Anything, "phone").
		Return(stored, nil)
	mockUserRepo.On("FindByUUID", ctx, mock.Anything, "u1").
		Return(user, nil)

	err := svc.CheckEmailVerifiedForRefresh(ctx, "refresh-secret", "phone")

	assert.ErrorIs(t, err, service.ErrEmailNotVerified)
	mockUserRepo.AssertExpectations(t)
	mockCredRepo.AssertExpectations(t)
}

// 5. Refresh: чужой секрет не раскрывает статус владельца
func TestCheckEmailVerifiedForRefresh_WrongSecret(t *testing.T) {
	svc, _, mockCredRepo, _ := newTestPolicyService()
	ctx := context.WithValue(context.Background(), "db", &config.Database{})

	hash, _ := security.HashPassword("real-secret")
	stored := &model.RefreshCredential{UUID: "r1", UserUUID: "u1", DeviceName: "phone", SecretHash: hash, ExpiresAt: time.Now().Add(time.Hour)}

	mockCredRepo.On("FindRefreshByDevice", ctx, mock.Anything, "phone").
		Return(stored, nil)

	err := svc.CheckEmailVerifiedForRefresh(ctx, "stolen-guess", "phone")

	assert.ErrorIs(t, err, service.ErrInvalidRefreshToken)
	mockCredRepo.AssertExpectations(t)
}

// 6. Лимит не превышен
func TestAllowLogin_UnderLimit(t *testing.T) {
	svc, _, _, mockLimiter := newTestPolicyService()

	mockLimiter.On("Allow", mock.Anything, "10.0.0.1").Return(true, nil)

	err := svc.AllowLogin(context.Background(), "10.0.0.1")

	assert.NoError(t, err)
	mockLimiter.AssertExpectations(t)
}

// 7. Лимит превышен
func TestAllowLogin_OverLimit(t *testing.T) {
	svc, _, _, mockLimiter := newTestPolicyService()

	mockLimiter.On("Allow", mock.Anything, "10.0.0.1").Return(false, nil)

	err := svc.AllowLogin(context.Background(), "10.0.0.1")

	assert.ErrorIs(t, err, service.ErrRateLimited)
	mockLimiter.AssertExpectations(t)
}

// 8. Сбой счётчика попыток не выдаётся за превышение лимита
func TestAllowLogin_LimiterFailure(t *testing.T) {
	svc, _, _, mockLimiter := newTestPolicyService()

	mockLimiter.On("Allow", mock.Anything, "10.0.0.1").
		Return(false, errors.New("redis: connection refused"))

	err := svc.AllowLogin(context.Background(), "10.0.0.1")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrRateLimited)
	mockLimiter.AssertExpectations(t)
}
