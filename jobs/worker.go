package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Worker читает исходящие сообщения из Redis-очереди и доставляет их
// через Telegram Bot API.
type Worker struct {
	rdb   *redis.Client
	token string
	httpc *http.Client
	log   zerolog.Logger
}

func NewWorker(rdb *redis.Client, token string, log zerolog.Logger) *Worker {
	return &Worker{
		rdb:   rdb,
		token: token,
		httpc: &http.Client{Timeout: 10 * time.Second},
		log:   log,
	}
}

// Run крутит цикл доставки до отмены контекста.
func (w *Worker) Run(ctx context.Context) {
	w.log.Info().Msg("🛠 Воркер доставки запущен")
	for {
		res, err := w.rdb.BRPop(ctx, 5*time.Second, queueOutgoing).Result()
		if err != nil {
			if ctx.Err() != nil {
				w.log.Info().Msg("🛠 Воркер доставки остановлен")
				return
			}
			if errors.Is(err, redis.Nil) {
				continue
			}
			w.log.Error().Err(err).Msg("❌ Ошибка чтения очереди")
			time.Sleep(time.Second)
			continue
		}

		var msg OutgoingMessage
		if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
			w.log.Error().Err(err).Msg("❌ Некорректное сообщение в очереди")
			continue
		}

		if err := w.send(ctx, msg); err != nil {
			w.log.Error().Err(err).Str("chat_id", msg.ChatID).Msg("❌ Ошибка отправки сообщения")
		}
	}
}

// send доставляет одно сообщение методом sendMessage Telegram Bot API.
// Быстрые ответы превращаются в reply-клавиатуру, по две кнопки в ряд.
func (w *Worker) send(ctx context.Context, msg OutgoingMessage) error {
	body := map[string]any{
		"chat_id": msg.ChatID,
		"text":    msg.Text,
	}
	if len(msg.QuickReplies) > 0 {
		var rows [][]string
		for i := 0; i < len(msg.QuickReplies); i += 2 {
			end := i + 2
			if end > len(msg.QuickReplies) {
				end = len(msg.QuickReplies)
			}
			rows = append(rows, msg.QuickReplies[i:end])
		}
		body["reply_markup"] = map[string]any{
			"keyboard":        rows,
			"resize_keyboard": true,
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("ошибка сериализации запроса: %w", err)
	}

	url := "https://api.telegram.org/bot" + w.token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка вызова Telegram API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API вернул статус %d", resp.StatusCode)
	}
	return nil
}
