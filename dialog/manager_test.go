package dialog

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"groobee/puzzle"
	"groobee/storage"
)

const chatID = "12345"

// MockStorage — мок хранилища для тестов диалога.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) RandQuote() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockStorage) PlayedGames(ctx context.Context, chatID string) ([]storage.Game, error) {
	args := m.Called(ctx, chatID)
	return args.Get(0).([]storage.Game), args.Error(1)
}

func (m *MockStorage) AddPlayedGame(ctx context.Context, game storage.Game, chatID string) error {
	args := m.Called(ctx, game, chatID)
	return args.Error(0)
}

func (m *MockStorage) GameExists(ctx context.Context, title, author string, year int, chatID string) (bool, error) {
	args := m.Called(ctx, title, author, year, chatID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) ClearPlayedGames(ctx context.Context, chatID string) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

func (m *MockStorage) GamesByAuthor(ctx context.Context, author, chatID string) ([]storage.Game, error) {
	args := m.Called(ctx, author, chatID)
	return args.Get(0).([]storage.Game), args.Error(1)
}

func (m *MockStorage) GamesByYear(ctx context.Context, year int, chatID string) ([]storage.Game, error) {
	args := m.Called(ctx, year, chatID)
	return args.Get(0).([]storage.Game), args.Error(1)
}

func (m *MockStorage) EditPlayedGame(ctx context.Context, old storage.GameKey, updated storage.Game, chatID string) error {
	args := m.Called(ctx, old, updated, chatID)
	return args.Error(0)
}

func (m *MockStorage) UpdatePlayedGames(ctx context.Context, chatID string, games []storage.Game) error {
	args := m.Called(ctx, chatID, games)
	return args.Error(0)
}

func (m *MockStorage) GamesByAverageRating(ctx context.Context, chatID string) ([]storage.RatedGame, error) {
	args := m.Called(ctx, chatID)
	return args.Get(0).([]storage.RatedGame), args.Error(1)
}

func newTestManager(st storage.GameStorage) *Manager {
	return NewManager(st, puzzle.New(zerolog.Nop()), "", zerolog.Nop())
}

// send прогоняет сообщение через менеджер и возвращает ответ.
func send(t *testing.T, m *Manager, text string) string {
	t.Helper()
	reply, err := m.HandleMessage(chatID, text)
	require.NoError(t, err)
	return reply
}

func TestUnknownMessageIsEchoed(t *testing.T) {
	m := newTestManager(new(MockStorage))

	assert.Equal(t, "Привет", send(t, m, "Привет"))
	assert.Equal(t, "что ты умеешь?", send(t, m, "что ты умеешь?"))
}

func TestHelpCommand(t *testing.T) {
	m := newTestManager(new(MockStorage))

	reply := send(t, m, "/help")
	assert.Contains(t, reply, "/addgame")
	assert.Contains(t, reply, "/playpuzzle")
	assert.Equal(t, reply, send(t, m, "/start"))
}

func TestQuoteCommand(t *testing.T) {
	st := new(MockStorage)
	st.On("RandQuote").Return("80% успеха - это появиться в нужном месте в нужное время.\n\nВуди Аллен")
	m := newTestManager(st)

	reply := send(t, m, "/get")
	assert.Equal(t, "Цитата: 80% успеха - это появиться в нужном месте в нужное время.\n\nВуди Аллен", reply)
}

func TestGenreButton(t *testing.T) {
	m := newTestManager(new(MockStorage))

	reply := send(t, m, "Фэнтези")
	assert.Contains(t, reply, "Хоббит")
}

func TestAddGameFlow(t *testing.T) {
	st := new(MockStorage)
	st.On("GameExists", mock.Anything, "T", "A", 2001, chatID).Return(false, nil)
	st.On("AddPlayedGame", mock.Anything, storage.Game{Title: "T", Author: "A", Year: 2001, Rating: 4}, chatID).Return(nil)
	m := newTestManager(st)

	assert.Equal(t, "Введите название игры:", send(t, m, "/addgame"))
	assert.Equal(t, "Введите издателя:", send(t, m, "T"))
	assert.Equal(t, "Введите год выхода:", send(t, m, "A"))
	assert.Equal(t, "Игра 'T' издателя A (2001) успешно добавлена!\nОцените игру от 1 до 5:", send(t, m, "2001"))
	assert.Equal(t, "Отзыв 4⭐ оставлен. Игра 'T' издателя A (2001) сохранена в списке пройденных.", send(t, m, "4"))

	st.AssertNumberOfCalls(t, "AddPlayedGame", 1)

	// Диалог завершён, незнакомый текст снова уходит эхом.
	assert.Equal(t, "готово", send(t, m, "готово"))
}

func TestAddGameDuplicateReturnsToTitleStep(t *testing.T) {
	st := new(MockStorage)
	st.On("GameExists", mock.Anything, "T", "A", 2001, chatID).Return(true, nil)
	m := newTestManager(st)

	send(t, m, "/addgame")
	send(t, m, "T")
	send(t, m, "A")
	reply := send(t, m, "2001")
	assert.Equal(t, "Игра с указанным названием, издателем и годом выхода уже существует в базе данных.\nВведите название игры:", reply)

	// Снова шаг названия, а не оценка.
	assert.Equal(t, "Введите издателя:", send(t, m, "Другая игра"))
	st.AssertNotCalled(t, "AddPlayedGame", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddGameYearValidation(t *testing.T) {
	st := new(MockStorage)
	st.On("GameExists", mock.Anything, "T", "A", 1999, chatID).Return(false, nil)
	m := newTestManager(st)

	send(t, m, "/addgame")
	send(t, m, "T")
	send(t, m, "A")

	assert.Equal(t, "Некорректный формат года выхода.", send(t, m, "abcd"))
	assert.Equal(t, "Некорректный формат года выхода.", send(t, m, "199"))
	assert.Equal(t, "Некорректный формат года выхода.", send(t, m, "19x9"))
	assert.Equal(t, "Некорректный формат года выхода.", send(t, m, "20011"))

	// Шаг не сдвинулся: корректный год всё ещё принимается.
	assert.Contains(t, send(t, m, "1999"), "Оцените игру от 1 до 5:")
}

func TestAddGameTitleValidation(t *testing.T) {
	m := newTestManager(new(MockStorage))

	send(t, m, "/addgame")
	reply := send(t, m, "Плохое  название")
	assert.Equal(t, badTitleMsg, reply)
	// Повтор на том же шаге.
	assert.Equal(t, "Введите издателя:", send(t, m, "Хорошее название"))
}

func TestAddGameRatingValidation(t *testing.T) {
	st := new(MockStorage)
	st.On("GameExists", mock.Anything, "T", "A", 2001, chatID).Return(false, nil)
	st.On("AddPlayedGame", mock.Anything, mock.Anything, chatID).Return(nil)
	m := newTestManager(st)

	send(t, m, "/addgame")
	send(t, m, "T")
	send(t, m, "A")
	send(t, m, "2001")

	assert.Equal(t, "Некорректный формат оценки. Пожалуйста, введите числовое значение от 1 до 5.", send(t, m, "abc"))
	assert.Equal(t, "Пожалуйста, введите оценку от 1 до 5.", send(t, m, "6"))
	assert.Equal(t, "Пожалуйста, введите оценку от 1 до 5.", send(t, m, "0"))
	assert.Contains(t, send(t, m, "5"), "Отзыв 5⭐ оставлен.")
}

func TestCancelInsideFlow(t *testing.T) {
	m := newTestManager(new(MockStorage))

	send(t, m, "/addgame")
	send(t, m, "T")
	assert.Equal(t, cancelledMsg, send(t, m, "/cancel"))

	// Состояние очищено: текст снова уходит эхом.
	assert.Equal(t, "T2", send(t, m, "T2"))
}

func TestCommandTextDuringFlowIsTreatedAsInput(t *testing.T) {
	st := new(MockStorage)
	m := newTestManager(st)

	send(t, m, "/addgame")
	// Команда посреди диалога — это ответ на текущий вопрос, а не команда.
	assert.Equal(t, "Введите издателя:", send(t, m, "/getplayed"))
	st.AssertNotCalled(t, "PlayedGames", mock.Anything, mock.Anything)
}

func TestRemoveGameFlow(t *testing.T) {
	snapshot := []storage.Game{
		{Title: "Game 1", Author: "A", Year: 2001, Rating: 3},
		{Title: "Game 2", Author: "B", Year: 2002, Rating: 4},
	}
	st := new(MockStorage)
	st.On("PlayedGames", mock.Anything, chatID).Return(snapshot, nil)
	st.On("UpdatePlayedGames", mock.Anything, chatID, []storage.Game{snapshot[1]}).Return(nil)
	m := newTestManager(st)

	reply := send(t, m, "/removegame")
	assert.Contains(t, reply, "1. Game 1")
	assert.Contains(t, reply, "2. Game 2")
	assert.Contains(t, reply, "Введите номер игры для удаления:")

	assert.Equal(t, "Игра Game 1 успешно удалена из списка пройденных!", send(t, m, "1"))
	st.AssertNumberOfCalls(t, "UpdatePlayedGames", 1)
}

func TestRemoveGameIndexOutOfRange(t *testing.T) {
	snapshot := []storage.Game{
		{Title: "Game 1", Author: "A", Year: 2001},
		{Title: "Game 2", Author: "B", Year: 2002},
	}
	st := new(MockStorage)
	st.On("PlayedGames", mock.Anything, chatID).Return(snapshot, nil)
	m := newTestManager(st)

	send(t, m, "/removegame")
	assert.Equal(t, "Указанный номер игры не существует.", send(t, m, "3"))
	assert.Equal(t, "Указанный номер игры не существует.", send(t, m, "0"))
	st.AssertNotCalled(t, "UpdatePlayedGames", mock.Anything, mock.Anything, mock.Anything)
}

func TestRemoveGameIndexBadFormat(t *testing.T) {
	snapshot := []storage.Game{{Title: "Game 1", Author: "A", Year: 2001}}
	st := new(MockStorage)
	st.On("PlayedGames", mock.Anything, chatID).Return(snapshot, nil)
	m := newTestManager(st)

	send(t, m, "/removegame")
	assert.Equal(t, "Некорректный формат номера игры", send(t, m, "InvalidNumber"))
	st.AssertNotCalled(t, "UpdatePlayedGames", mock.Anything, mock.Anything, mock.Anything)
}

func TestRemoveGameEmptyList(t *testing.T) {
	st := new(MockStorage)
	st.On("PlayedGames", mock.Anything, chatID).Return([]storage.Game{}, nil)
	m := newTestManager(st)

	assert.Equal(t, "Список пройденных игр пуст.", send(t, m, "/removegame"))
	// Диалог не открыт.
	assert.Equal(t, "1", send(t, m, "1"))
}

func TestEditGameFlow(t *testing.T) {
	snapshot := []storage.Game{{Title: "Old Game", Author: "Old Author", Year: 2022, Rating: 3}}
	st := new(MockStorage)
	st.On("PlayedGames", mock.Anything, chatID).Return(snapshot, nil)
	st.On("GameExists", mock.Anything, "New Game", "New Author", 2023, chatID).Return(false, nil)
	st.On("EditPlayedGame", mock.Anything,
		storage.GameKey{Title: "Old Game", Author: "Old Author", Year: 2022},
		storage.Game{Title: "New Game", Author: "New Author", Year: 2023},
		chatID).Return(nil)
	m := newTestManager(st)

	reply := send(t, m, "/editgame")
	assert.Contains(t, reply, "Введите номер игры для редактирования:")

	assert.Equal(t, "Введите новое название игры:", send(t, m, "1"))
	assert.Equal(t, "Введите нового издателя:", send(t, m, "New Game"))
	assert.Equal(t, "Введите новый год выхода:", send(t, m, "New Author"))
	assert.Equal(t,
		"Игра 'Old Game' успешно заменена на игру 'New Game' от издателя New Author (2023) в списке пройденных!",
		send(t, m, "2023"))

	st.AssertNumberOfCalls(t, "EditPlayedGame", 1)
}

func TestEditGameInvalidIndex(t *testing.T) {
	snapshot := []storage.Game{{Title: "Old Game", Author: "Old Author", Year: 2022}}
	st := new(MockStorage)
	st.On("PlayedGames", mock.Anything, chatID).Return(snapshot, nil)
	m := newTestManager(st)

	send(t, m, "/editgame")
	assert.Equal(t, "Указанный уникальный номер игры не существует в списке пройденных игр.", send(t, m, "3"))
	st.AssertNotCalled(t, "EditPlayedGame",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEditGameDuplicateReturnsToTitleStep(t *testing.T) {
	snapshot := []storage.Game{{Title: "Old Game", Author: "Old Author", Year: 2022}}
	st := new(MockStorage)
	st.On("PlayedGames", mock.Anything, chatID).Return(snapshot, nil)
	st.On("GameExists", mock.Anything, "New Game", "New Author", 2023, chatID).Return(true, nil)
	m := newTestManager(st)

	send(t, m, "/editgame")
	send(t, m, "1")
	send(t, m, "New Game")
	send(t, m, "New Author")
	reply := send(t, m, "2023")
	assert.Contains(t, reply, duplicateMsg)
	assert.Contains(t, reply, "Введите новое название игры:")
	st.AssertNotCalled(t, "EditPlayedGame",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLookupByAuthorFlow(t *testing.T) {
	st := new(MockStorage)
	st.On("GamesByAuthor", mock.Anything, "John Doe", chatID).Return([]storage.Game{
		{Title: "Game 1", Author: "John Doe", Year: 2001},
		{Title: "Game 2", Author: "John Doe", Year: 2002},
	}, nil)
	m := newTestManager(st)

	assert.Equal(t, "Введите издателя:", send(t, m, "/getbyauthor"))
	assert.Equal(t, "Игры издателя John Doe:\nGame 1\nGame 2", send(t, m, "John Doe"))
}

func TestLookupByAuthorNoGames(t *testing.T) {
	st := new(MockStorage)
	st.On("GamesByAuthor", mock.Anything, "Nonexistent Author", chatID).Return([]storage.Game{}, nil)
	m := newTestManager(st)

	send(t, m, "/getbyauthor")
	assert.Equal(t, "Нет пройденных игр этого издателя.", send(t, m, "Nonexistent Author"))
}

func TestLookupByYearFlow(t *testing.T) {
	st := new(MockStorage)
	st.On("GamesByYear", mock.Anything, 2020, chatID).Return([]storage.Game{
		{Title: "Game 1", Year: 2020},
		{Title: "Game 2", Year: 2020},
	}, nil)
	m := newTestManager(st)

	assert.Equal(t, "Введите год выхода:", send(t, m, "/getbyyear"))
	assert.Equal(t, "Игры 2020 года:\nGame 1\nGame 2", send(t, m, "2020"))
}

func TestLookupByYearValidation(t *testing.T) {
	st := new(MockStorage)
	st.On("GamesByYear", mock.Anything, 1112, chatID).Return([]storage.Game{}, nil)
	m := newTestManager(st)

	send(t, m, "/getbyyear")
	assert.Equal(t, "Некорректный формат года выхода.", send(t, m, "Invalid"))
	assert.Equal(t, "Нет пройденных игр в этого года.", send(t, m, "1112"))
}

func TestGetPlayedGames(t *testing.T) {
	st := new(MockStorage)
	st.On("PlayedGames", mock.Anything, chatID).Return([]storage.Game{
		{Title: "Game 1"},
		{Title: "Game 2"},
	}, nil)
	m := newTestManager(st)

	assert.Equal(t, "Пройденные игры:\n1. Game 1\n2. Game 2\n", send(t, m, "/getplayed"))
}

func TestGetPlayedGamesEmpty(t *testing.T) {
	st := new(MockStorage)
	st.On("PlayedGames", mock.Anything, chatID).Return([]storage.Game{}, nil)
	m := newTestManager(st)

	assert.Equal(t, "Список пройденных игр пуст.", send(t, m, "/getplayed"))
}

func TestClearPlayedGames(t *testing.T) {
	st := new(MockStorage)
	st.On("ClearPlayedGames", mock.Anything, chatID).Return(nil)
	m := newTestManager(st)

	assert.Equal(t, "Список пройденных игр очищен!", send(t, m, "/clearplayed"))
	st.AssertNumberOfCalls(t, "ClearPlayedGames", 1)
}

func TestGetByRating(t *testing.T) {
	st := new(MockStorage)
	st.On("GamesByAverageRating", mock.Anything, chatID).Return([]storage.RatedGame{
		{Title: "Game 1", AvgRating: 3.0},
		{Title: "Game 2", AvgRating: 2.0},
	}, nil)
	m := newTestManager(st)

	assert.Equal(t, "Список игр по среднему рейтингу:\n1. Game 1: 3.0⭐\n2. Game 2: 2.0⭐", send(t, m, "/getbyrating"))
}

func TestGetByRatingEmpty(t *testing.T) {
	st := new(MockStorage)
	st.On("GamesByAverageRating", mock.Anything, chatID).Return([]storage.RatedGame{}, nil)
	m := newTestManager(st)

	assert.Equal(t, "Нет данных о среднем рейтинге игр.", send(t, m, "/getbyrating"))
}

func TestStoreFailureKeepsFlowState(t *testing.T) {
	st := new(MockStorage)
	st.On("GameExists", mock.Anything, "T", "A", 2001, chatID).
		Return(false, assert.AnError).Once()
	st.On("GameExists", mock.Anything, "T", "A", 2001, chatID).
		Return(false, nil)
	m := newTestManager(st)

	send(t, m, "/addgame")
	send(t, m, "T")
	send(t, m, "A")

	assert.Equal(t, storeFailureMsg, send(t, m, "2001"))
	// Шаг не потерян: повторный ввод года продолжает диалог.
	assert.Contains(t, send(t, m, "2001"), "Оцените игру от 1 до 5:")
}

func TestQuizModeRouting(t *testing.T) {
	quiz := puzzle.New(zerolog.Nop())
	quiz.ClearPool()
	quiz.SetPuzzle(puzzle.Puzzle{Question: "Без рук, без ног, а всегда идут", Answer: "Часы", Hint: "Показывает время"})
	m := NewManager(new(MockStorage), quiz, "", zerolog.Nop())

	reply := send(t, m, "/playpuzzle")
	assert.Equal(t, "Добро пожаловать в игру в загадки! Начнем.\nЗагадка: Без рук, без ног, а всегда идут", reply)

	assert.Equal(t, "Подсказка: Показывает время", send(t, m, "/gethint"))
	assert.Equal(t, "Неверно! Попробуйте еще раз.", send(t, m, "МУСОР"))

	// Ответ без учёта регистра.
	reply = send(t, m, "часы")
	assert.Contains(t, reply, "Поздравляю, вы решили все загадки!")
}

func TestStopPuzzleExitsQuizMode(t *testing.T) {
	m := newTestManager(new(MockStorage))

	send(t, m, "/playpuzzle")
	reply := send(t, m, "/stoppuzzle")
	assert.Contains(t, reply, "Игра в загадки завершена.")
	assert.Contains(t, reply, "Правильных ответов: 0")

	// Режим выключен: текст снова уходит эхом.
	assert.Equal(t, "Часы", send(t, m, "Часы"))
}

func TestQuizModeIsPerConversation(t *testing.T) {
	m := newTestManager(new(MockStorage))

	_, err := m.HandleMessage("alice", "/playpuzzle")
	require.NoError(t, err)

	// Второй чат не в режиме загадок.
	reply, err := m.HandleMessage("bob", "Часы")
	require.NoError(t, err)
	assert.Equal(t, "Часы", reply)
}

func TestAdminCommands(t *testing.T) {
	quiz := puzzle.New(zerolog.Nop())
	m := NewManager(new(MockStorage), quiz, "s3cret", zerolog.Nop())

	assert.Equal(t, "Пул загадок очищен.", send(t, m, "/clearpuzzles s3cret"))
	assert.Equal(t, 0, quiz.Remaining())

	assert.Equal(t, "Загадка добавлена.", send(t, m, "/setpuzzle s3cret\nВопрос\nОтвет\nПодсказка"))
	assert.Equal(t, 1, quiz.Remaining())

	assert.Equal(t, "Текущая загадка сброшена.", send(t, m, "/clearcurrent s3cret"))
}

func TestAdminCommandsWrongSecret(t *testing.T) {
	quiz := puzzle.New(zerolog.Nop())
	m := NewManager(new(MockStorage), quiz, "s3cret", zerolog.Nop())

	assert.Equal(t, accessDeniedMsg, send(t, m, "/clearpuzzles wrong"))
	assert.Equal(t, accessDeniedMsg, send(t, m, "/clearpuzzles"))
	assert.Equal(t, 20, quiz.Remaining())
}

func TestAdminCommandsDisabledWithoutSecret(t *testing.T) {
	m := newTestManager(new(MockStorage))

	// Без настроенного ключа команды не существуют — текст уходит эхом.
	assert.Equal(t, "/clearpuzzles s3cret", send(t, m, "/clearpuzzles s3cret"))
}

func TestQuickReplies(t *testing.T) {
	st := new(MockStorage)
	st.On("GameExists", mock.Anything, "T", "A", 2001, chatID).Return(false, nil)
	m := newTestManager(st)

	assert.Equal(t, []string{"Детектив", "Романтика", "Фэнтези", "Научная фантастика"}, m.QuickReplies(chatID))

	send(t, m, "/addgame")
	assert.Equal(t, []string{"/cancel"}, m.QuickReplies(chatID))

	send(t, m, "T")
	send(t, m, "A")
	send(t, m, "2001")
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "/cancel"}, m.QuickReplies(chatID))

	send(t, m, "/cancel")
	send(t, m, "/playpuzzle")
	assert.Contains(t, m.QuickReplies(chatID), "/stoppuzzle")
}
