package service_test

import (
	"context"
	"testing"

	"device-auth-server/config"
	"device-auth-server/internal/model"
	"device-auth-server/internal/security"
	"device-auth-server/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockVerificationService
type MockVerificationService struct {
	mock.Mock
}

func (m *MockVerificationService) SendVerification(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockVerificationService) ConfirmVerification(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockProfileImageService
type MockProfileImageService struct {
	mock.Mock
}

func (m *MockProfileImageService) PrepareUpload(ctx context.Context, userUUID string, fileName string) (string, string, error) {
	args := m.Called(ctx, userUUID, fileName)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockProfileImageService) ImageURL(ctx context.Context, imagePath string) (string, error) {
	args := m.Called(ctx, imagePath)
	return args.String(0), args.Error(1)
}

func (m *MockProfileImageService) DeleteImage(ctx context.Context, imagePath string) error {
	args := m.Called(ctx, imagePath)
	return args.Error(0)
}

func newTestUserService() (*service.UserService, *MockUserRepository, *MockRevoker, *MockVerificationService, *MockProfileImageService) {
	mockUserRepo := new(MockUserRepository)
	mockRevoker := new(MockRevoker)
	mockVerification := new(MockVerificationService)
	mockImages := new(MockProfileImageService)

	svc := service.NewUserService(mockUserRepo, mockRevoker, mockVerification, mockImages)

	return svc, mockUserRepo, mockRevoker, mockVerification, mockImages
}

func principalContext(userUUID string) context.Context {
	ctx := context.WithValue(context.Background(), "db", &config.Database{})
	principal := &security.Principal{UserUUID: userUUID, DeviceName: "phone"}
	return context.WithValue(ctx, security.PrincipalContextKey, principal)
}

// 1. Слишком длинный email
func TestRegister_EmailTooLong(t *testing.T) {
	svc, _, _, _, _ := newTestUserService()

	longLocal := make([]byte, 250)
	for i := range longLocal {
		longLocal[i] = 'a'
	}

	_, err := svc.Register(context.Background(), string(longLocal)+"@example.com", "P@ssw0rd123", "Ivan", "Petrov")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "248")
}

// 2. Некорректный адрес
func TestRegister_BadEmail(t *testing.T) {
	svc, _, _, _, _ := newTestUserService()

	_, err := svc.Register(context.Background(), "not-an-email", "P@ssw0rd123", "Ivan", "Petrov")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "некорректный email")
}

// 3. Слабый пароль
func TestRegister_WeakPassword(t *testing.T) {
	svc, _, _, _, _ := newTestUserService()

	_, err := svc.Register(context.Background(), "user@example.com", "password", "Ivan", "Petrov")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "пароль")
}

// 4. Успешная регистрация запускает отправку ссылки подтверждения
func TestRegister_Success(t *testing.T) {
	svc, mockUserRepo, _, mockVerification, _ := newTestUserService()
	ctx := context.WithValue(context.Background(), "db", &config.Database{})

	created := &model.User{UUID: "u1", Email: "user@example.com"}

	mockUserRepo.On("CreateUser", ctx, mock.Anything, mock.AnythingOfType("*model.User")).
		Return(created, nil)
	mockVerification.On("SendVerification", ctx, "user@example.com").Return(nil)

	user, err := svc.Register(ctx, "user@example.com", "P@ssw0rd123", "Ivan", "Petrov")

	assert.NoError(t, err)
	assert.Equal(t, "u1", user.UUID)
	mockUserRepo.AssertExpectations(t)
	mockVerification.AssertExpectations(t)
}

// 5. Чужой профиль недоступен
func TestGetUser_ForeignProfileForbidden(t *testing.T) {
	svc, _, _, _, _ := newTestUserService()
	ctx := principalContext("u1")

	_, err := svc.GetUser(ctx, "u2")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "доступ запрещён")
}

// 6. Удаление пользователя сперва отзывает учётные данные на всех устройствах
func TestDeleteUser_RevokesCredentialsFirst(t *testing.T) {
	svc, mockUserRepo, mockRevoker, _, _ := newTestUserService()
	ctx := principalContext("u1")

	mockRevoker.On("RevokeAllForUser", ctx, "u1").
		Return(&model.RevokedSummary{Count: 1, DeviceNames: []string{"phone"}}, nil)
	mockUserRepo.On("DeleteUser", ctx, mock.Anything, "u1").Return(nil)

	err := svc.DeleteUser(ctx, "u1")

	assert.NoError(t, err)
	mockRevoker.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
}

// 7. Отсутствие учётных данных не мешает удалению
func TestDeleteUser_NoCredentialsTolerated(t *testing.T) {
	svc, mockUserRepo, mockRevoker, _, _ := newTestUserService()
	ctx := principalContext("u1")

	mockRevoker.On("RevokeAllForUser", ctx, "u1").
		Return(nil, service.ErrNoCredentials)
	mockUserRepo.On("DeleteUser", ctx, mock.Anything, "u1").Return(nil)

	err := svc.DeleteUser(ctx, "u1")

	assert.NoError(t, err)
	mockRevoker.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
}

// 8. Подготовка изображения: старый файл удаляется, путь сохраняется
func TestPrepareProfileImage_ReplacesOldImage(t *testing.T) {
	svc, mockUserRepo, _, _, mockImages := newTestUserService()
	ctx := principalContext("u1")

	user := &model.User{UUID: "u1", ImagePath: "profile/u1/media_old.png"}

	mockUserRepo.On("FindByUUID", ctx, mock.Anything, "u1").Return(user, nil)
	mockImages.On("PrepareUpload", ctx, "u1", "avatar.png").
		Return("https://s3/put", "profile/u1/media_new.png", nil)
	mockImages.On("DeleteImage", ctx, "profile/u1/media_old.png").Return(nil)
	mockUserRepo.On("UpdateImagePath", ctx, mock.Anything, "u1", "profile/u1/media_new.png").Return(nil)

	uploadURL, imagePath, err := svc.PrepareProfileImage(ctx, "u1", "avatar.png")

	assert.NoError(t, err)
	assert.Equal(t, "https://s3/put", uploadURL)
	assert.Equal(t, "profile/u1/media_new.png", imagePath)
	mockUserRepo.AssertExpectations(t)
	mockImages.AssertExpectations(t)
}
