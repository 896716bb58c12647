package ports

import (
	"context"

	"device-auth-server/internal/model"

	"github.com/jmoiron/sqlx"
)

type UserRepository interface {
	CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error)
	FindByUUID(ctx context.Context, exec sqlx.ExtContext, uuid string) (*model.User, error)
	FindByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (*model.User, error)
	UpdateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) error
	UpdatePassword(ctx context.Context, exec sqlx.ExtContext, uuid, newPasswordHash string) error
	UpdateImagePath(ctx context.Context, exec sqlx.ExtContext, uuid, imagePath string) error
	MarkEmailVerified(ctx context.Context, exec sqlx.ExtContext, uuid string) error
	DeleteUser(ctx context.Context, exec sqlx.ExtContext, uuid string) error
	Exists(ctx context.Context, exec sqlx.ExtContext, uuid string) (bool, error)
}

type UserService interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (*model.User, error)
	GetUser(ctx context.Context, uuid string) (*model.User, error)
	UpdateUser(ctx context.Context, updatedUser *model.User) error
	UpdatePassword(ctx context.Context, uuid string, newPassword string) error
	DeleteUser(ctx context.Context, uuid string) error
	PrepareProfileImage(ctx context.Context, uuid string, fileName string) (uploadURL string, imagePath string, err error)
}
