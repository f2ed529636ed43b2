package storage

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

// ConnectPostgres устанавливает соединение с PostgreSQL
func ConnectPostgres(dsn string, log zerolog.Logger) *sql.DB {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Ошибка подключения к PostgreSQL")
	}

	// Настройка пула соединений
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	// Проверка соединения
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("❌ PostgreSQL не отвечает")
	}

	log.Info().Msg("✅ Подключение к PostgreSQL успешно")
	return db
}
