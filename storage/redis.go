package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ConnectRedis создаёт клиент Redis и проверяет соединение
func ConnectRedis(addr string, log zerolog.Logger) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // Без пароля по умолчанию
		DB:       0,  // БД по умолчанию
	})

	// Проверим соединение
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("❌ Redis недоступен")
	}

	log.Info().Msg("✅ Подключение к Redis успешно")
	return rdb
}
