package internal

import (
	"context"
	"fmt"
	"github.com/redis/go-redis/v9"
	"log"
	"time"
)

type RedisClient struct {
	*redis.Client
}

func NewRedisConnection(address string, password string, database int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ошибка пинга redis: %w", err)
	}

	log.Println("Подключение к redis успешно выполнено")
	return &RedisClient{
		client,
	}, nil
}

func (client *RedisClient) Close() error {
	err := client.Client.Close()
	if err != nil {
		return fmt.Errorf("ошибка закрытия соединения с redis: %w", err)
	}

	return nil
}
