package config

import "github.com/aws/aws-sdk-go-v2/service/s3"

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Client   *s3.Client
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	Local    bool   `yaml:"local"`
}

// CredentialConfig задаёт время жизни учётных данных устройства.
// Access выдается на короткий срок (по умолчанию 1 час),
// refresh — на длинный (по умолчанию 30 дней).
type CredentialConfig struct {
	AccessTTL  string `yaml:"access_ttl"`
	RefreshTTL string `yaml:"refresh_ttl"`
}

// RateLimitConfig : окно и лимит попыток входа (по умолчанию 6 в минуту)
type RateLimitConfig struct {
	MaxAttempts int    `yaml:"max_attempts"`
	Window      string `yaml:"window"`
}

type VerificationConfig struct {
	SecretKey string `yaml:"secret_key"`
	TokenTTL  string `yaml:"token_ttl"`
}

type WebhookConfig struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}
