package ports

import (
	"context"
	"time"
)

// S3Storage : для S3
type S3Storage interface {
	GeneratePresignedGetURL(ctx context.Context, key string, expire time.Duration) (string, error)
	GeneratePresignedPutURL(ctx context.Context, key string, expire time.Duration) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

// ProfileImageService : загрузка и выдача изображений профиля
type ProfileImageService interface {
	PrepareUpload(ctx context.Context, userUUID string, fileName string) (uploadURL string, imagePath string, err error)
	ImageURL(ctx context.Context, imagePath string) (string, error)
	DeleteImage(ctx context.Context, imagePath string) error
}
