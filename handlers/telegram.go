package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"groobee/dialog"
	"groobee/jobs"
	"groobee/security"
)

// TelegramUpdate — структура запроса от Telegram. Боту нужны только
// текстовые сообщения и идентификатор чата.
type TelegramUpdate struct {
	Message struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// TelegramHandler — HTTP-хендлер для Telegram webhook: разбирает апдейт,
// передаёт текст менеджеру диалога и ставит ответ в очередь на доставку.
type TelegramHandler struct {
	manager   dialog.DialogManager
	publisher *jobs.Publisher
	log       zerolog.Logger
}

func NewTelegramHandler(manager dialog.DialogManager, publisher *jobs.Publisher, log zerolog.Logger) *TelegramHandler {
	return &TelegramHandler{manager: manager, publisher: publisher, log: log}
}

func (h *TelegramHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte("Метод не поддерживается"))
		return
	}

	var update TelegramUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.log.Error().Err(err).Msg("❌ Ошибка разбора запроса Telegram")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	text := security.SanitizeText(update.Message.Text)
	if text == "" {
		// Не текстовый апдейт — подтверждаем и пропускаем.
		w.WriteHeader(http.StatusOK)
		return
	}

	chatID := strconv.FormatInt(update.Message.Chat.ID, 10)
	reply, err := h.manager.HandleMessage(chatID, text)
	if err != nil {
		h.log.Error().Err(err).Str("chat_id", chatID).Msg("❌ Ошибка обработки сообщения")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	msg := jobs.OutgoingMessage{
		ChatID:       chatID,
		Text:         reply,
		QuickReplies: h.manager.QuickReplies(chatID),
	}
	if err := h.publisher.PublishReply(r.Context(), msg); err != nil {
		h.log.Error().Err(err).Str("chat_id", chatID).Msg("❌ Ошибка постановки ответа в очередь")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
