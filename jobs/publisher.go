package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// queueOutgoing — Redis-очередь исходящих сообщений.
const queueOutgoing = "queue:outgoing"

// OutgoingMessage — исходящее сообщение для отправки в чат.
type OutgoingMessage struct {
	ChatID       string   `json:"chat_id"`
	Text         string   `json:"text"`
	QuickReplies []string `json:"quick_replies,omitempty"`
}

// Publisher кладёт исходящие сообщения в Redis-очередь.
type Publisher struct {
	rdb *redis.Client
	log zerolog.Logger
}

func NewPublisher(rdb *redis.Client, log zerolog.Logger) *Publisher {
	return &Publisher{rdb: rdb, log: log}
}

// PublishReply отправляет сообщение в очередь на доставку.
func (p *Publisher) PublishReply(ctx context.Context, msg OutgoingMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("ошибка сериализации сообщения: %w", err)
	}

	if err := p.rdb.LPush(ctx, queueOutgoing, payload).Err(); err != nil {
		return fmt.Errorf("ошибка отправки в очередь: %w", err)
	}

	p.log.Debug().Str("chat_id", msg.ChatID).Msg("📨 сообщение поставлено в очередь")
	return nil
}
