package dialog

import (
	"context"
	"crypto/subtle"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"groobee/puzzle"
	"groobee/storage"
)

// DialogManager описывает интерфейс управления диалогом
type DialogManager interface {
	HandleMessage(userID string, input string) (string, error)
	// QuickReplies возвращает подписи быстрых ответов, уместные для чата
	// прямо сейчас. Отрисовка кнопок — забота транспорта.
	QuickReplies(userID string) []string
}

const (
	cancelCommand = "/cancel"

	cancelledMsg    = "Действие отменено."
	storeFailureMsg = "Произошла ошибка при обращении к базе данных. Попробуйте позже."
	accessDeniedMsg = "Доступ запрещен."

	helpMsg = "Привет, я игровой бот. Вот что я умею:\n" +
		"/get — случайная цитата\n" +
		"/addgame — добавить пройденную игру\n" +
		"/getplayed — список пройденных игр\n" +
		"/clearplayed — очистить список пройденных игр\n" +
		"/getbyauthor — игры по издателю\n" +
		"/getbyyear — игры по году выхода\n" +
		"/removegame — удалить игру из списка\n" +
		"/editgame — отредактировать игру\n" +
		"/getbyrating — игры по среднему рейтингу\n" +
		"/playpuzzle — игра в загадки\n" +
		"/cancel — отменить текущее действие"
)

// genreReplies — ответы на кнопки жанров.
var genreReplies = map[string]string{
	"Научная фантастика": "Прочитайте 'Автостопом по галактике', 'Время жить и время умирать' или 'Война миров'",
	"Фэнтези":            "Прочитайте 'Хоббит', 'Игра престолов' или 'Гарри Поттер'",
	"Романтика":          "Прочитайте 'Великий Гетсби', 'Триумфальная арка' или 'Поющие в терновнике'",
	"Детектив":           "Прочитайте 'Убийство в восточном экспрессе', 'Снеговик' или 'Собака Баскервилей'",
}

// Manager — маршрутизатор сообщений. Для каждого чата сначала проверяется
// незавершённый диалог, затем режим загадок, затем таблица команд; всё
// остальное возвращается без изменений.
type Manager struct {
	mu    sync.Mutex
	convs map[string]*conversation

	storage storage.GameStorage
	quiz    *puzzle.Game
	// adminSecret включает служебные команды. Пустая строка — команды
	// выключены. Это не аутентификация: один общий ключ на всех.
	adminSecret string
	log         zerolog.Logger
}

var _ DialogManager = (*Manager)(nil)

// NewManager — фабрика для создания менеджера
func NewManager(st storage.GameStorage, quiz *puzzle.Game, adminSecret string, log zerolog.Logger) *Manager {
	return &Manager{
		convs:       make(map[string]*conversation),
		storage:     st,
		quiz:        quiz,
		adminSecret: adminSecret,
		log:         log,
	}
}

// HandleMessage — обработка входящего сообщения
func (m *Manager) HandleMessage(userID string, input string) (string, error) {
	conv := m.conv(userID)
	conv.mu.Lock()
	defer conv.mu.Unlock()

	m.log.Debug().Str("chat_id", userID).Str("text", input).Msg("📨 входящее сообщение")

	ctx := context.Background()

	// Незавершённый диалог перехватывает любой текст: команда, набранная
	// посреди диалога, трактуется как ответ на текущий вопрос. Исключение
	// одно — /cancel, он проверяется до разбора шага.
	if conv.flow != FlowNone {
		if input == cancelCommand {
			conv.resetFlow()
			return cancelledMsg, nil
		}
		return m.handleFlowStep(ctx, userID, conv, input), nil
	}

	if conv.quiz {
		return m.handleQuizMode(userID, conv, input), nil
	}

	return m.handleDefaultMode(ctx, userID, conv, input), nil
}

// handleQuizMode обрабатывает сообщения чата в режиме загадок.
func (m *Manager) handleQuizMode(userID string, conv *conversation, input string) string {
	switch input {
	case "/gethint":
		return m.quiz.Hint()
	case "/anotheriddle":
		return m.quiz.Next(userID)
	case "/getanswer":
		return m.quiz.Reveal(userID)
	case "/restart":
		return m.quiz.Restart(userID)
	case "/statistic":
		return m.quiz.Statistics(userID)
	case "/stoppuzzle":
		conv.quiz = false
		return "Игра в загадки завершена.\n" + m.quiz.Statistics(userID)
	default:
		// Любой другой текст — попытка ответить на загадку.
		return m.quiz.CheckAnswer(userID, input)
	}
}

// handleDefaultMode обрабатывает команды вне диалогов и режима загадок.
func (m *Manager) handleDefaultMode(ctx context.Context, userID string, conv *conversation, input string) string {
	switch {
	case input == "/start" || input == "/help":
		return helpMsg

	case input == "/get":
		return "Цитата: " + m.storage.RandQuote()

	case input == "/addgame":
		conv.flow = FlowAddGame
		conv.step = StepTitle
		return "Введите название игры:"

	case input == "/getplayed":
		games, err := m.storage.PlayedGames(ctx, userID)
		if err != nil {
			return m.storeFailure(userID, err)
		}
		if len(games) == 0 {
			return "Список пройденных игр пуст."
		}
		return "Пройденные игры:\n" + formatGameList(games)

	case input == "/clearplayed":
		if err := m.storage.ClearPlayedGames(ctx, userID); err != nil {
			return m.storeFailure(userID, err)
		}
		return "Список пройденных игр очищен!"

	case input == "/getbyauthor":
		conv.flow = FlowByAuthor
		conv.step = StepAuthor
		return "Введите издателя:"

	case input == "/getbyyear":
		conv.flow = FlowByYear
		conv.step = StepYear
		return "Введите год выхода:"

	case input == "/removegame":
		return m.enterIndexFlow(ctx, userID, conv, FlowRemoveGame,
			"Введите номер игры для удаления:")

	case input == "/editgame":
		return m.enterIndexFlow(ctx, userID, conv, FlowEditGame,
			"Введите номер игры для редактирования:")

	case input == "/getbyrating":
		rated, err := m.storage.GamesByAverageRating(ctx, userID)
		if err != nil {
			return m.storeFailure(userID, err)
		}
		if len(rated) == 0 {
			return "Нет данных о среднем рейтинге игр."
		}
		return "Список игр по среднему рейтингу:\n" + formatRatedList(rated)

	case input == "/playpuzzle":
		conv.quiz = true
		return m.quiz.Start(userID)

	case input == cancelCommand:
		return "Нет активного действия."

	case strings.HasPrefix(input, "/clearpuzzles") ||
		strings.HasPrefix(input, "/clearcurrent") ||
		strings.HasPrefix(input, "/setpuzzle"):
		if reply, ok := m.handleAdmin(input); ok {
			return reply
		}
		// Служебные команды выключены — текст падает в общий эхо-ответ.
		return input

	default:
		if reply, ok := genreReplies[input]; ok {
			return reply
		}
		// Неизвестный текст возвращается как есть.
		return input
	}
}

// enterIndexFlow открывает диалог удаления или редактирования: снимает список
// игр, запоминает его как снимок и показывает пользователю с номерами.
func (m *Manager) enterIndexFlow(ctx context.Context, userID string, conv *conversation, flow Flow, prompt string) string {
	games, err := m.storage.PlayedGames(ctx, userID)
	if err != nil {
		return m.storeFailure(userID, err)
	}
	if len(games) == 0 {
		return "Список пройденных игр пуст."
	}
	conv.flow = flow
	conv.step = StepIndex
	conv.snapshot = games
	return "Пройденные игры:\n" + formatGameList(games) + prompt
}

// handleAdmin выполняет служебные команды. Возвращает ok=false, если команды
// выключены конфигурацией.
func (m *Manager) handleAdmin(input string) (string, bool) {
	if m.adminSecret == "" {
		return "", false
	}

	lines := strings.Split(input, "\n")
	fields := strings.Fields(lines[0])
	command := fields[0]
	secret := ""
	if len(fields) > 1 {
		secret = fields[1]
	}
	// Сравнение за постоянное время: ответ не должен подсказывать, какая
	// часть ключа не совпала.
	if subtle.ConstantTimeCompare([]byte(secret), []byte(m.adminSecret)) != 1 {
		return accessDeniedMsg, true
	}

	switch command {
	case "/clearpuzzles":
		m.quiz.ClearPool()
		return "Пул загадок очищен.", true
	case "/clearcurrent":
		m.quiz.ClearCurrent()
		return "Текущая загадка сброшена.", true
	case "/setpuzzle":
		if len(lines) != 4 {
			return "Некорректный формат ввода. Используйте:\n/setpuzzle <ключ>\nВопрос\nОтвет\nПодсказка", true
		}
		m.quiz.SetPuzzle(puzzle.Puzzle{
			Question: strings.TrimSpace(lines[1]),
			Answer:   strings.TrimSpace(lines[2]),
			Hint:     strings.TrimSpace(lines[3]),
		})
		return "Загадка добавлена.", true
	}
	return accessDeniedMsg, true
}

// QuickReplies возвращает актуальные подписи кнопок для чата.
func (m *Manager) QuickReplies(userID string) []string {
	conv := m.conv(userID)
	conv.mu.Lock()
	defer conv.mu.Unlock()

	switch {
	case conv.flow != FlowNone && conv.step == StepRating:
		return []string{"1", "2", "3", "4", "5", cancelCommand}
	case conv.flow != FlowNone:
		return []string{cancelCommand}
	case conv.quiz:
		return []string{"/gethint", "/anotheriddle", "/getanswer", "/statistic", "/stoppuzzle"}
	default:
		return []string{"Детектив", "Романтика", "Фэнтези", "Научная фантастика"}
	}
}

// ActiveDialogs возвращает число чатов с незавершённым диалогом или
// включённым режимом загадок.
func (m *Manager) ActiveDialogs() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	active := 0
	for _, conv := range m.convs {
		conv.mu.Lock()
		if conv.flow != FlowNone || conv.quiz {
			active++
		}
		conv.mu.Unlock()
	}
	return active
}

// conv возвращает состояние чата, создавая его при первом обращении.
func (m *Manager) conv(userID string) *conversation {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.convs[userID]
	if !ok {
		c = &conversation{}
		m.convs[userID] = c
	}
	return c
}

// storeFailure логирует ошибку хранилища и возвращает общий ответ об ошибке.
// Состояние диалога при этом не меняется.
func (m *Manager) storeFailure(userID string, err error) string {
	m.log.Error().Err(err).Str("chat_id", userID).Msg("❌ ошибка хранилища")
	return storeFailureMsg
}
