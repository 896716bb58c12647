package security_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"device-auth-server/config"
	"device-auth-server/internal/model"
	"device-auth-server/internal/security"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

// stubCredentialFinder : подменяет репозиторий в middleware
type stubCredentialFinder struct {
	credential *model.AccessCredential
	err        error
}

func (f *stubCredentialFinder) FindAccessByUUID(ctx context.Context, exec sqlx.ExtContext, credentialUUID string) (*model.AccessCredential, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.credential, nil
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func performAuthenticatedRequest(finder *stubCredentialFinder, authorization string, now time.Time, next http.Handler) *httptest.ResponseRecorder {
	middleware := security.AccessMiddleware(finder, fixedClock{now: now})

	request := httptest.NewRequest(http.MethodGet, "/api/v1/logged-in-devices", nil)
	request = request.WithContext(context.WithValue(request.Context(), "db", &config.Database{}))
	request.Header.Set("Authorization", authorization)

	recorder := httptest.NewRecorder()
	middleware(next).ServeHTTP(recorder, request)
	return recorder
}

// 1. Валидный секрет: запрос проходит дальше с principal в контексте
func TestAccessMiddleware_ValidSecret(t *testing.T) {
	now := time.Now()

	credentialUUID, composite, secretHash, err := security.GenerateAccessSecret()
	assert.NoError(t, err)

	finder := &stubCredentialFinder{
		credential: &model.AccessCredential{
			UUID:       credentialUUID,
			UserUUID:   "u1",
			DeviceName: "phone",
			SecretHash: secretHash,
			ExpiresAt:  now.Add(time.Hour),
		},
	}

	var principal *security.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, _ = security.GetPrincipalFromContext(r.Context())
		w.WriteHeader(200)
	})

	recorder := performAuthenticatedRequest(finder, "Bearer "+composite, now, next)

	assert.Equal(t, 200, recorder.Code)
	assert.NotNil(t, principal)
	assert.Equal(t, "u1", principal.UserUUID)
	assert.Equal(t, "phone", principal.DeviceName)
	assert.Equal(t, credentialUUID, principal.CredentialUUID)
}

// 2. Неизвестный credential UUID: отказ в доступе
func TestAccessMiddleware_UnknownCredential(t *testing.T) {
	finder := &stubCredentialFinder{
		err: fmt.Errorf("access запись не найдена: %w", sql.ErrNoRows),
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("запрос не должен пройти дальше middleware")
	})

	recorder := performAuthenticatedRequest(finder, "Bearer cred-uuid|secret", time.Now(), next)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

// 3. Сбой хранилища не выдаётся за отказ в доступе
func TestAccessMiddleware_StorageFailure(t *testing.T) {
	finder := &stubCredentialFinder{
		err: errors.New("pq: connection refused"),
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("запрос не должен пройти дальше middleware")
	})

	recorder := performAuthenticatedRequest(finder, "Bearer cred-uuid|secret", time.Now(), next)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

// 4. Просроченный access секрет отклоняется
func TestAccessMiddleware_ExpiredSecret(t *testing.T) {
	now := time.Now()

	credentialUUID, composite, secretHash, err := security.GenerateAccessSecret()
	assert.NoError(t, err)

	finder := &stubCredentialFinder{
		credential: &model.AccessCredential{
			UUID:       credentialUUID,
			UserUUID:   "u1",
			DeviceName: "phone",
			SecretHash: secretHash,
			ExpiresAt:  now.Add(-time.Minute),
		},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("запрос не должен пройти дальше middleware")
	})

	recorder := performAuthenticatedRequest(finder, "Bearer "+composite, now, next)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
