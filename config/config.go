package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

// Config — структура для хранения конфигурации приложения
type Config struct {
	Env           string
	Port          string
	PostgresDSN   string
	RedisAddr     string
	TelegramToken string
	// WebhookKey — Bearer-токен для входящих запросов на вебхук.
	// Пустое значение отключает проверку.
	WebhookKey string
	// AdminSecret — общий ключ для служебных команд бота
	// (/clearpuzzles, /clearcurrent, /setpuzzle). Это не аутентификация:
	// ключ один на всех и передаётся открытым текстом. Пустое значение
	// отключает служебные команды целиком.
	AdminSecret string
}

var (
	cfg  *Config
	once sync.Once
)

// LoadConfig загружает конфигурацию только один раз (singleton)
func LoadConfig() *Config {
	once.Do(func() {
		// Попробуем загрузить .env из разных мест
		envPaths := []string{".env", "../.env", "../../.env"}
		for _, path := range envPaths {
			if err := godotenv.Load(path); err == nil {
				break
			}
		}

		cfg = &Config{
			Env:           getEnv("APP_ENV", "development"),
			Port:          getEnv("PORT", "8080"),
			PostgresDSN:   mustHave("POSTGRES_DSN"),
			RedisAddr:     getRedisAddr(),
			TelegramToken: mustHave("TELEGRAM_TOKEN"),
			WebhookKey:    getEnv("WEBHOOK_KEY", ""),
			AdminSecret:   getEnv("ADMIN_SECRET", ""),
		}
	})
	return cfg
}

// getEnv — возвращает значение или дефолт
func getEnv(key string, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// mustHave — проверяет наличие обязательной переменной
func mustHave(key string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	log.Fatalf("❌ Обязательная переменная окружения %s не установлена", key)
	return ""
}

// getRedisAddr — извлекает адрес Redis из REDIS_URL или REDIS_ADDR
func getRedisAddr() string {
	if redisURL, ok := os.LookupEnv("REDIS_URL"); ok && redisURL != "" {
		// Парсим redis://localhost:6379/0 -> localhost:6379
		if redisURL == "redis://localhost:6379/0" {
			return "localhost:6379"
		}
		return redisURL
	}
	if redisAddr, ok := os.LookupEnv("REDIS_ADDR"); ok && redisAddr != "" {
		return redisAddr
	}
	log.Fatalf("❌ Не установлена переменная REDIS_URL или REDIS_ADDR")
	return ""
}
