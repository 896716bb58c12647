package repository

import (
	"context"
	"time"

	"device-auth-server/config"
	"device-auth-server/internal/model"
	"device-auth-server/internal/util"

	"github.com/jmoiron/sqlx"
)

type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

// CreateUser : сохраняет нового пользователя
func (r *UserRepository) CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error) {
	query := `
	INSERT INTO users (uuid, email, password_hash, first_name, last_name)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING uuid, email, first_name, last_name, is_verified, created_at
	`

	createdUser := &model.User{}
	err := exec.QueryRowxContext(ctx, query, user.UUID, user.Email, user.PasswordHash, user.FirstName, user.LastName).
		Scan(&createdUser.UUID, &createdUser.Email, &createdUser.FirstName, &createdUser.LastName, &createdUser.IsVerified, &createdUser.CreatedAt)

	if err != nil {
		return nil, util.LogError("[UserRepo] ошибка вставки данных в БД", err)
	}

	return createdUser, nil
}

// FindByUUID : ищет пользователя по UUID
func (r *UserRepository) FindByUUID(ctx context.Context, exec sqlx.ExtContext, uuid string) (*model.User, error) {
	query := `SELECT uuid, email, password_hash, first_name, last_name, image_path, is_verified, email_verified_at, created_at
				FROM users WHERE uuid = $1`
	var user model.User
	err := sqlx.GetContext(ctx, exec, &user, query, uuid)
	if err != nil {
		return nil, util.LogError("[UserRepo] не удалось найти пользователя в БД", err)
	}
	return &user, nil
}

// FindByEmail : ищет пользователя по email
func (r *UserRepository) FindByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (*model.User, error) {
	query := `SELECT uuid, email, password_hash, first_name, last_name, image_path, is_verified, email_verified_at, created_at
				FROM users WHERE email = $1`
	var user model.User
	err := sqlx.GetContext(ctx, exec, &user, query, email)
	if err != nil {
		return nil, util.LogError("[UserRepo] не удалось найти пользователя по email", err)
	}
	return &user, nil
}

// UpdateUser : обновляет поля профиля
func (r *UserRepository) UpdateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3
		WHERE uuid = $1
	`
	_, err := exec.ExecContext(ctx, query, user.UUID, user.FirstName, user.LastName)
	if err != nil {
		return util.LogError("[UserRepo] не удалось обновить пользователя", err)
	}
	return nil
}

// UpdatePassword : меняет пароль пользователя
func (r *UserRepository) UpdatePassword(ctx context.Context, exec sqlx.ExtContext, uuid, newPasswordHash string) error {
	query := `UPDATE users SET password_hash = $2 WHERE uuid = $1`
	_, err := exec.ExecContext(ctx, query, uuid, newPasswordHash)
	if err != nil {
		return util.LogError("[UserRepo] не удалось обновить пароль", err)
	}
	return nil
}

// UpdateImagePath : сохраняет путь изображения профиля
func (r *UserRepository) UpdateImagePath(ctx context.Context, exec sqlx.ExtContext, uuid, imagePath string) error {
	query := `UPDATE users SET image_path = $2 WHERE uuid = $1`
	_, err := exec.ExecContext(ctx, query, uuid, imagePath)
	if err != nil {
		return util.LogError("[UserRepo] не удалось обновить изображение профиля", err)
	}
	return nil
}

// MarkEmailVerified : помечает email подтверждённым
func (r *UserRepository) MarkEmailVerified(ctx context.Context, exec sqlx.ExtContext, uuid string) error {
	query := `UPDATE users SET is_verified = TRUE, email_verified_at = $2 WHERE uuid = $1`
	_, err := exec.ExecContext(ctx, query, uuid, time.Now().UTC())
	if err != nil {
		return util.LogError("[UserRepo] не удалось подтвердить email", err)
	}
	return nil
}

// DeleteUser : удаляет пользователя по его UUID
func (r *UserRepository) DeleteUser(ctx context.Context, exec sqlx.ExtContext, uuid string) error {
	query := `DELETE FROM users WHERE uuid = $1`
	_, err := exec.ExecContext(ctx, query, uuid)
	if err != nil {
		return util.LogError("[UserRepo] не удалось удалить пользователя", err)
	}
	return nil
}

// Exists : проверяет, существует ли пользователь по UUID
func (r *UserRepository) Exists(ctx context.Context, exec sqlx.ExtContext, uuid string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE uuid = $1)`
	err := sqlx.GetContext(ctx, exec, &exists, query, uuid)
	if err != nil {
		return false, util.LogError("[UserRepo] ошибка проверки существования пользователя", err)
	}
	return exists, nil
}
