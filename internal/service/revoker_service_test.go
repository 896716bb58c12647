package service_test

import (
	"context"
	"errors"
	"testing"

	"device-auth-server/internal/service"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// 1. Первый вход: записей нет, для login это не ошибка
func TestRevokeDevice_LoginContextAllowsEmpty(t *testing.T) {
	mockCredRepo := new(MockCredentialRepository)
	svc := service.NewRevokerService(mockCredRepo)
	exec := &sqlx.DB{}

	mockCredRepo.On("DeleteDeviceCredentials", mock.Anything, exec, "u1", "phone").
		Return(false, false, nil)

	accessRevoked, refreshRevoked, err := svc.RevokeDevice(context.Background(), exec, "u1", "phone", service.OperationLogin)

	assert.NoError(t, err)
	assert.False(t, accessRevoked)
	assert.False(t, refreshRevoked)
	mockCredRepo.AssertExpectations(t)
}

// 2. Logout: записей нет — устройство не найдено
func TestRevokeDevice_LogoutContextStrict(t *testing.T) {
	mockCredRepo := new(MockCredentialRepository)
	svc := service.NewRevokerService(mockCredRepo)
	exec := &sqlx.DB{}

	mockCredRepo.On("DeleteDeviceCredentials", mock.Anything, exec, "u1", "phone").
		Return(false, false, nil)

	_, _, err := svc.RevokeDevice(context.Background(), exec, "u1", "phone", service.OperationLogout)

	assert.ErrorIs(t, err, service.ErrDeviceNotFound)
	mockCredRepo.AssertExpectations(t)
}

// 3. Удалена хотя бы одна запись — отзыв состоялся даже в строгом контексте
func TestRevokeDevice_PartialRowsStillRevoked(t *testing.T) {
	mockCredRepo := new(MockCredentialRepository)
	svc := service.NewRevokerService(mockCredRepo)
	exec := &sqlx.DB{}

	mockCredRepo.On("DeleteDeviceCredentials", mock.Anything, exec, "u1", "phone").
		Return(false, true, nil)

	accessRevoked, refreshRevoked, err := svc.RevokeDevice(context.Background(), exec, "u1", "phone", service.OperationRefresh)

	assert.NoError(t, err)
	assert.False(t, accessRevoked)
	assert.True(t, refreshRevoked)
	mockCredRepo.AssertExpectations(t)
}

// 4. Ошибка репозитория пробрасывается
func TestRevokeDevice_RepositoryError(t *testing.T) {
	mockCredRepo := new(MockCredentialRepository)
	svc := service.NewRevokerService(mockCredRepo)
	exec := &sqlx.DB{}

	mockCredRepo.On("DeleteDeviceCredentials", mock.Anything, exec, "u1", "phone").
		Return(false, false, errors.New("db error"))

	_, _, err := svc.RevokeDevice(context.Background(), exec, "u1", "phone", service.OperationLogout)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrDeviceNotFound)
	mockCredRepo.AssertExpectations(t)
}

// 5. RevokeAllForUser: ноль refresh записей — ErrNoCredentials, коммита нет
func TestRevokeAllForUser_NoCredentials(t *testing.T) {
	mockCredRepo := new(MockCredentialRepository)
	svc := service.NewRevokerService(mockCredRepo)

	committed := false
	exec := expectTransaction(mockCredRepo, &committed)

	mockCredRepo.On("DeleteAllForUser", mock.Anything, exec, "u1").
		Return(int64(0), []string{}, nil)

	_, err := svc.RevokeAllForUser(context.Background(), "u1")

	assert.ErrorIs(t, err, service.ErrNoCredentials)
	assert.False(t, committed)
	mockCredRepo.AssertExpectations(t)
}

// 6. RevokeAllForUser: успех со списком устройств
func TestRevokeAllForUser_Success(t *testing.T) {
	mockCredRepo := new(MockCredentialRepository)
	svc := service.NewRevokerService(mockCredRepo)

	committed := false
	exec := expectTransaction(mockCredRepo, &committed)

	mockCredRepo.On("DeleteAllForUser", mock.Anything, exec, "u1").
		Return(int64(2), []string{"laptop", "phone"}, nil)

	summary, err := svc.RevokeAllForUser(context.Background(), "u1")

	assert.NoError(t, err)
	assert.True(t, committed)
	assert.Equal(t, int64(2), summary.Count)
	assert.Equal(t, []string{"laptop", "phone"}, summary.DeviceNames)
	mockCredRepo.AssertExpectations(t)
}
