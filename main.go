package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"groobee/config"
	"groobee/dashboard"
	"groobee/dialog"
	"groobee/handlers"
	"groobee/jobs"
	"groobee/middleware"
	"groobee/puzzle"
	"groobee/storage"
)

func main() {
	logger := zerolog.New(zerolog.NewConsoleWriter()).
		With().
		Timestamp().
		Logger()

	logger.Info().Msg("🚀 Запуск игрового бота...")

	cfg := config.LoadConfig()
	logger.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("🔧 Конфигурация загружена")

	db := storage.ConnectPostgres(cfg.PostgresDSN, logger)
	rdb := storage.ConnectRedis(cfg.RedisAddr, logger)

	st := storage.NewPostgresStorage(db, logger.With().Str("component", "storage").Logger())
	if err := st.Migrate(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("❌ Ошибка миграции схемы")
	}

	quizGame := puzzle.New(logger.With().Str("component", "puzzle").Logger())
	manager := dialog.NewManager(st, quizGame, cfg.AdminSecret,
		logger.With().Str("component", "dialog").Logger())
	publisher := jobs.NewPublisher(rdb, logger.With().Str("component", "jobs").Logger())
	worker := jobs.NewWorker(rdb, cfg.TelegramToken, logger.With().Str("component", "jobs").Logger())

	workerCtx, stopWorker := context.WithCancel(context.Background())
	go worker.Run(workerCtx)

	mux := http.NewServeMux()

	// Telegram webhook endpoint
	telegramHandler := handlers.NewTelegramHandler(manager, publisher,
		logger.With().Str("component", "handlers").Logger())
	mux.Handle("/telegram", middleware.Auth(cfg.WebhookKey, telegramHandler))

	mux.Handle("/status", dashboard.New(manager, quizGame))

	// Тестовый health check
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("✅ Игровой бот запущен"))
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("🌐 Сервер запущен")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("❌ Ошибка сервера")
		}
	}()

	<-stop
	logger.Info().Msg("⏳ Завершение работы...")
	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("❌ Ошибка завершения")
	}

	logger.Info().Msg("✅ Завершение успешно.")
}
