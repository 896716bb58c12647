package repository

import (
	"context"
	"fmt"
	"time"

	"device-auth-server/config"
	"device-auth-server/internal/util"
)

// RateLimitRepository : фиксированное окно попыток входа в Redis.
// Ключ — IP клиента, по умолчанию 6 попыток в минуту.
type RateLimitRepository struct {
	client      *config.RedisClient
	maxAttempts int
	window      time.Duration
}

func NewRateLimitRepository(rdb *config.RedisClient, maxAttempts int, window time.Duration) *RateLimitRepository {
	if maxAttempts <= 0 {
		maxAttempts = 6
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimitRepository{rdb, maxAttempts, window}
}

// Allow инкрементирует счётчик окна и сообщает, не превышен ли лимит.
// TTL выставляется только первому инкременту окна.
func (r *RateLimitRepository) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := r.key(key)

	count, err := r.client.Client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, util.LogError("ошибка инкремента счётчика в Redis", err)
	}

	if count == 1 {
		if err := r.client.Client.Expire(ctx, redisKey, r.window).Err(); err != nil {
			return false, util.LogError("ошибка установки TTL счётчика в Redis", err)
		}
	}

	return count <= int64(r.maxAttempts), nil
}

func (r *RateLimitRepository) key(key string) string {
	return fmt.Sprintf("login_attempts:%s", key)
}
