package repository

import (
	"AuthSessionService/internal"
	"context"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"strconv"
	"strings"
)

// BlacklistRepository хранит последний отозванный access токен
// каждого пользователя. На пользователя хранится ровно одна запись:
// новый отзыв перезаписывает предыдущий
type BlacklistRepository struct {
	*internal.RedisClient
}

func NewBlacklistRepository(redisClient *internal.RedisClient) *BlacklistRepository {
	return &BlacklistRepository{redisClient}
}

func (repository *BlacklistRepository) Set(ctx context.Context, userId int64, accessToken string) error {
	accessToken = strings.TrimPrefix(accessToken, "Bearer ")

	err := repository.Client.Set(ctx, strconv.FormatInt(userId, 10), accessToken, 0).Err()
	if err != nil {
		return fmt.Errorf("ошибка записи в блеклист: %w", err)
	}

	return nil
}

// Get возвращает пустую строку, если для пользователя нет отозванного токена
func (repository *BlacklistRepository) Get(ctx context.Context, userId int64) (string, error) {
	revokedToken, err := repository.Client.Get(ctx, strconv.FormatInt(userId, 10)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("ошибка чтения блеклиста: %w", err)
	}

	return revokedToken, nil
}
