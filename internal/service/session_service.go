package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"device-auth-server/config"
	"device-auth-server/internal/model"
	"device-auth-server/internal/ports"
	"device-auth-server/internal/security"
	"device-auth-server/internal/util"

	"github.com/jmoiron/sqlx"
)

// SessionService — оркестратор жизненного цикла учётных данных устройства.
// Результат каждой операции собирается в одно возвращаемое значение,
// без общих полей состояния между запросами.
type SessionService struct {
	userRepository       ports.UserRepository
	credentialRepository ports.CredentialRepository
	issuer               ports.CredentialIssuer
	revoker              ports.CredentialRevoker
	clock                util.Clock
}

func NewSessionService(
	userRepository ports.UserRepository,
	credentialRepository ports.CredentialRepository,
	issuer ports.CredentialIssuer,
	revoker ports.CredentialRevoker,
	clock util.Clock,
) *SessionService {
	return &SessionService{
		userRepository:       userRepository,
		credentialRepository: credentialRepository,
		issuer:               issuer,
		revoker:              revoker,
		clock:                clock,
	}
}

// Login выполняет вход с устройства:
// проверка пароля, отзыв старых учётных данных устройства, выдача новой пары.
// Отзыв и выдача идут в одной транзакции под блокировкой устройства.
func (s *SessionService) Login(ctx context.Context, email, password, deviceName string) (*model.CredentialPair, error) {
	success := false
	defer func() { util.AuditAttempt("login", email, success) }()

	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, fmt.Errorf("[SessionService] database connection не найден в context")
	}

	user, err := s.userRepository.FindByEmail(ctx, db, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// сообщение единое с неверным паролем: перебор адресов не раскрывается
			log.Printf("[SessionService] вход: пользователь по email не найден")
			return nil, ErrInvalidCredentials
		}
		// сбой хранилища не маскируется под неверные учётные данные
		return nil, util.LogError("[SessionService] ошибка поиска пользователя по email", err)
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.rotateDeviceCredentials(ctx, user.UUID, deviceName, OperationLogin)
	if err != nil {
		return nil, err
	}

	success = true
	return pair, nil
}

// Refresh ротирует пару секретов устройства.
// Использованный refresh секрет перестаёт действовать в момент коммита,
// даже если клиент не получит новую пару.
func (s *SessionService) Refresh(ctx context.Context, refreshSecret, deviceName string) (*model.CredentialPair, error) {
	success := false
	auditEmail := ""
	defer func() { util.AuditAttempt("refresh", auditEmail, success) }()

	exec, rollback, commit, err := s.credentialRepository.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[SessionService] не удалось начать транзакцию", err)
	}
	defer rollback()

	if err := s.credentialRepository.LockDevice(ctx, exec, deviceName); err != nil {
		return nil, util.LogError("[SessionService] не удалось взять блокировку устройства", err)
	}

	stored, err := s.credentialRepository.FindRefreshByDevice(ctx, exec, deviceName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[SessionService] refresh: устройство %q неизвестно", deviceName)
			return nil, ErrInvalidRefreshToken
		}
		return nil, util.LogError("[SessionService] ошибка поиска refresh записи", err)
	}

	if !security.CheckPassword(refreshSecret, stored.SecretHash) {
		log.Printf("[SessionService] refresh: секрет не совпал с хэшем, устройство %q", deviceName)
		return nil, ErrInvalidRefreshToken
	}

	if s.clock.Now().After(stored.ExpiresAt) {
		log.Printf("[SessionService] refresh: секрет просрочен, устройство %q", deviceName)
		return nil, ErrExpiredRefreshToken
	}

	user, err := s.userRepository.FindByUUID(ctx, exec, stored.UserUUID)
	if err != nil {
		return nil, util.LogError("[SessionService] не удалось найти владельца refresh записи", err)
	}
	auditEmail = user.Email

	// действующий refresh всегда имеет что отзывать: контекст строгий
	if _, _, err := s.revoker.RevokeDevice(ctx, exec, user.UUID, deviceName, OperationRefresh); err != nil {
		return nil, err
	}

	pair, err := s.issuePair(ctx, exec, user.UUID, deviceName)
	if err != nil {
		return nil, err
	}

	if err := commit(); err != nil {
		return nil, util.LogError("[SessionService] не удалось закоммитить транзакцию", err)
	}

	success = true
	return pair, nil
}

// Logout отзывает учётные данные устройства, которым подписан запрос.
// Выход с чужого устройства этим путём невозможен: имя обязано совпадать
// с областью действия access секрета.
func (s *SessionService) Logout(ctx context.Context, principal *security.Principal, deviceName string) error {
	success := false
	auditEmail := s.emailForAudit(ctx, principal)
	defer func() { util.AuditAttempt("logout", auditEmail, success) }()

	if principal == nil {
		return ErrUnauthenticated
	}

	if deviceName != principal.DeviceName {
		log.Printf("[SessionService] logout: имя устройства %q не совпадает с областью секрета %q", deviceName, principal.DeviceName)
		return ErrDeviceNotFound
	}

	exec, rollback, commit, err := s.credentialRepository.BeginTX(ctx)
	if err != nil {
		return util.LogError("[SessionService] не удалось начать транзакцию", err)
	}
	defer rollback()

	if err := s.credentialRepository.LockDevice(ctx, exec, deviceName); err != nil {
		return util.LogError("[SessionService] не удалось взять блокировку устройства", err)
	}

	if _, _, err := s.revoker.RevokeDevice(ctx, exec, principal.UserUUID, deviceName, OperationLogout); err != nil {
		return err
	}

	if err := commit(); err != nil {
		return util.LogError("[SessionService] не удалось закоммитить транзакцию", err)
	}

	success = true
	return nil
}

// LogoutAll отзывает учётные данные на всех устройствах пользователя.
// ErrNoCredentials гасится: "уже везде разлогинен" для клиента успех
// с пустым результатом, в журнале факт фиксируется.
func (s *SessionService) LogoutAll(ctx context.Context, principal *security.Principal) (*model.RevokedSummary, error) {
	success := false
	auditEmail := s.emailForAudit(ctx, principal)
	defer func() { util.AuditAttempt("logout_all", auditEmail, success) }()

	if principal == nil {
		return nil, ErrUnauthenticated
	}

	summary, err := s.revoker.RevokeAllForUser(ctx, principal.UserUUID)
	if err != nil {
		if errors.Is(err, ErrNoCredentials) {
			log.Printf("[SessionService] logout_all: у пользователя %s нет активных учётных данных", principal.UserUUID)
			success = true
			return &model.RevokedSummary{Count: 0, DeviceNames: []string{}}, nil
		}
		return nil, err
	}

	success = true
	return summary, nil
}

// ListDevices : устройства пользователя с активной сессией
func (s *SessionService) ListDevices(ctx context.Context, principal *security.Principal) ([]string, error) {
	if principal == nil {
		return nil, ErrUnauthenticated
	}

	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, fmt.Errorf("[SessionService] database connection не найден в context")
	}

	return s.credentialRepository.ListDevices(ctx, db, principal.UserUUID)
}

// rotateDeviceCredentials : revoke-then-issue в одной транзакции
func (s *SessionService) rotateDeviceCredentials(ctx context.Context, userUUID, deviceName string, operation string) (*model.CredentialPair, error) {
	exec, rollback, commit, err := s.credentialRepository.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[SessionService] не удалось начать транзакцию", err)
	}
	defer rollback()

	if err := s.credentialRepository.LockDevice(ctx, exec, deviceName); err != nil {
		return nil, util.LogError("[SessionService] не удалось взять блокировку устройства", err)
	}

	if _, _, err := s.revoker.RevokeDevice(ctx, exec, userUUID, deviceName, operation); err != nil {
		return nil, err
	}

	pair, err := s.issuePair(ctx, exec, userUUID, deviceName)
	if err != nil {
		return nil, err
	}

	if err := commit(); err != nil {
		return nil, util.LogError("[SessionService] не удалось закоммитить транзакцию", err)
	}

	return pair, nil
}

func (s *SessionService) issuePair(ctx context.Context, exec sqlx.ExtContext, userUUID, deviceName string) (*model.CredentialPair, error) {
	accessSecret, _, err := s.issuer.IssueAccessCredential(ctx, exec, userUUID, deviceName)
	if err != nil {
		return nil, util.LogError("[SessionService] ошибка выдачи access секрета", err)
	}

	refreshSecret, _, err := s.issuer.IssueRefreshCredential(ctx, exec, userUUID, deviceName)
	if err != nil {
		return nil, util.LogError("[SessionService] ошибка выдачи refresh секрета", err)
	}

	return &model.CredentialPair{
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		ExpiresIn:     s.issuer.AccessTTLSeconds(),
		DeviceName:    deviceName,
	}, nil
}

func (s *SessionService) emailForAudit(ctx context.Context, principal *security.Principal) string {
	if principal == nil {
		return ""
	}

	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return ""
	}

	user, err := s.userRepository.FindByUUID(ctx, db, principal.UserUUID)
	if err != nil || user == nil {
		return ""
	}

	return user.Email
}
