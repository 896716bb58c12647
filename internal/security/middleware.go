package security

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"device-auth-server/config"
	"device-auth-server/internal/model"
	"device-auth-server/internal/util"

	"github.com/jmoiron/sqlx"
)

// AccessCredentialFinder : минимальный срез репозитория, нужный middleware
type AccessCredentialFinder interface {
	FindAccessByUUID(ctx context.Context, exec sqlx.ExtContext, credentialUUID string) (*model.AccessCredential, error)
}

type contextKey string

const (
	PrincipalContextKey contextKey = "principal"
)

// Principal : владелец access секрета, которым подписан запрос.
// DeviceName ограничивает область действия секрета одним устройством.
type Principal struct {
	UserUUID       string
	DeviceName     string
	CredentialUUID string
}

// AccessMiddleware аутентифицирует запрос по opaque access секрету.
// Запись всегда перечитывается из хранилища: отзыв действует немедленно,
// кэширования валидности нет.
func AccessMiddleware(credentialRepository AccessCredentialFinder, clock util.Clock) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(handleAuthentication(credentialRepository, clock, next))
	}
}

func handleAuthentication(credentialRepository AccessCredentialFinder, clock util.Clock, next http.Handler) func(writer http.ResponseWriter, request *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		authorizationHeader := request.Header.Get("Authorization")
		if !strings.HasPrefix(authorizationHeader, "Bearer ") {
			http.Error(writer, "unauthorized", http.StatusUnauthorized)
			return
		}

		composite := strings.TrimPrefix(authorizationHeader, "Bearer ")

		credentialUUID, secret, err := ParseAccessSecret(composite)
		if err != nil {
			log.Printf("невалидный access секрет: %v", err)
			http.Error(writer, "unauthorized", http.StatusUnauthorized)
			return
		}

		db, ok := request.Context().Value("db").(*config.Database)
		if !ok {
			log.Printf("database connection не найден в context")
			http.Error(writer, "internal server error", http.StatusInternalServerError)
			return
		}

		credential, err := credentialRepository.FindAccessByUUID(request.Context(), db, credentialUUID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				log.Printf("access секрет не найден: %v", err)
				http.Error(writer, "unauthorized", http.StatusUnauthorized)
				return
			}
			log.Printf("ошибка поиска access записи: %v", err)
			http.Error(writer, "internal server error", http.StatusInternalServerError)
			return
		}

		if !VerifyAccessSecret(secret, credential.SecretHash) {
			log.Printf("access секрет не совпал с хэшем")
			http.Error(writer, "unauthorized", http.StatusUnauthorized)
			return
		}

		if clock.Now().After(credential.ExpiresAt) {
			log.Printf("access секрет просрочен")
			http.Error(writer, "unauthorized", http.StatusUnauthorized)
			return
		}

		principal := &Principal{
			UserUUID:       credential.UserUUID,
			DeviceName:     credential.DeviceName,
			CredentialUUID: credential.UUID,
		}

		req := request.WithContext(context.WithValue(request.Context(), PrincipalContextKey, principal))
		next.ServeHTTP(writer, req)
	}
}

func GetPrincipalFromContext(ctx context.Context) (*Principal, error) {
	principal, ok := ctx.Value(PrincipalContextKey).(*Principal)
	if !ok || principal == nil {
		return nil, fmt.Errorf("пользователь не авторизован")
	}
	return principal, nil
}
