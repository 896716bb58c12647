package service

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"device-auth-server/config"
	"device-auth-server/internal/util"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ProfileImageService хранит изображения профиля в S3.
// Клиент загружает файл сам по pre-signed PUT, сервер хранит только путь.
type ProfileImageService struct {
	client   *s3.Client
	bucket   string
	psClient *s3.PresignClient
	urlTTL   time.Duration
}

func NewProfileImageService(ctx context.Context, cfg *config.S3Config) (*ProfileImageService, error) {
	var client *s3.Client

	if cfg.Local {
		client = s3.New(s3.Options{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				"minioadmin",
				"minioadmin",
				"",
			),
			BaseEndpoint: aws.String(cfg.Endpoint),
			UsePathStyle: true,
		})

		if err := createBucketIfNotExists(ctx, client, cfg.Bucket); err != nil {
			return nil, util.LogError("[ProfileImageService] ошибка создания бакета", err)
		}
	} else {
		awsCfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, util.LogError("[ProfileImageService] ошибка загрузки AWS config", err)
		}
		client = s3.NewFromConfig(awsCfg)
	}

	psClient := s3.NewPresignClient(client)

	return &ProfileImageService{
		client:   client,
		psClient: psClient,
		bucket:   cfg.Bucket,
		urlTTL:   15 * time.Minute,
	}, nil
}

// createBucketIfNotExists создает бакет если он не существует
func createBucketIfNotExists(ctx context.Context, client *s3.Client, bucket string) error {
	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})

	if err == nil {
		return nil // Бакет уже существует
	}

	_, err = client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	})

	if err != nil {
		return util.LogError("[ProfileImageService] ошибка создания бакета", err)
	}

	log.Printf("[ProfileImageService] бакет %s успешно создан", bucket)
	return nil
}

// PrepareUpload : pre-signed PUT ссылка и путь будущего изображения профиля
func (s *ProfileImageService) PrepareUpload(ctx context.Context, userUUID string, fileName string) (string, string, error) {
	ext := filepath.Ext(fileName)
	switch ext {
	case ".jpg", ".jpeg", ".png":
	default:
		return "", "", fmt.Errorf("[ProfileImageService] недопустимое расширение изображения: %s", ext)
	}

	imagePath := fmt.Sprintf("profile/%s/media_%s%s", userUUID, uuid.New().String(), ext)

	uploadURL, err := s.GeneratePresignedPutURL(ctx, imagePath, s.urlTTL)
	if err != nil {
		return "", "", err
	}

	return uploadURL, imagePath, nil
}

// ImageURL : pre-signed GET ссылка на изображение профиля
func (s *ProfileImageService) ImageURL(ctx context.Context, imagePath string) (string, error) {
	if imagePath == "" {
		return "", nil
	}
	return s.GeneratePresignedGetURL(ctx, imagePath, s.urlTTL)
}

// DeleteImage удаляет старое изображение профиля
func (s *ProfileImageService) DeleteImage(ctx context.Context, imagePath string) error {
	if imagePath == "" {
		return nil
	}
	return s.DeleteObject(ctx, imagePath)
}

// GeneratePresignedGetURL : генерация pre-signed URL для GET
func (s *ProfileImageService) GeneratePresignedGetURL(ctx context.Context, key string, expire time.Duration) (string, error) {
	req, err := s.psClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expire
	})
	if err != nil {
		return "", util.LogError("[ProfileImageService] не удалось сгенерировать presigned GET URL", err)
	}

	return req.URL, nil
}

// GeneratePresignedPutURL : генерация pre-signed URL для PUT
func (s *ProfileImageService) GeneratePresignedPutURL(ctx context.Context, key string, expire time.Duration) (string, error) {
	req, err := s.psClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expire
	})
	if err != nil {
		return "", util.LogError("[ProfileImageService] не удалось сгенерировать presigned PUT URL", err)
	}
	return req.URL, nil
}

// DeleteObject : удаление объекта
func (s *ProfileImageService) DeleteObject(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return util.LogError("[ProfileImageService] не удалось удалить объект", err)
	}
	return nil
}
