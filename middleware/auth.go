package middleware

import (
	"net/http"
	"strings"
)

// Auth проверяет заголовок Authorization по заданному ключу.
// Пустой ключ отключает проверку.
func Auth(apiKey string, next http.Handler) http.Handler {
	if apiKey == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "🚫 Нет токена авторизации", http.StatusUnauthorized)
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token != apiKey {
			http.Error(w, "🚫 Неверный токен", http.StatusForbidden)
			return
		}

		// Всё хорошо — пропускаем дальше
		next.ServeHTTP(w, r)
	})
}
