package dialog

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"groobee/storage"
)

var yearRe = regexp.MustCompile(`^[0-9]{4}$`)

const (
	badTitleMsg  = "Название не должно содержать перенос строки или двойные пробелы. Введите название еще раз:"
	badAuthorMsg = "Издатель не должен содержать перенос строки или двойные пробелы. Введите издателя еще раз:"
	badYearMsg   = "Некорректный формат года выхода."
	duplicateMsg = "Игра с указанным названием, издателем и годом выхода уже существует в базе данных."
)

// validText проверяет название и издателя: без переноса строки и без двух
// пробелов подряд.
func validText(s string) bool {
	return s != "" && !strings.Contains(s, "\n") && !strings.Contains(s, "  ")
}

// parseYear принимает ровно четыре цифры.
func parseYear(s string) (int, bool) {
	if !yearRe.MatchString(s) {
		return 0, false
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return year, true
}

// handleFlowStep разбирает ответ пользователя на текущий шаг диалога.
// Ошибка валидации оставляет диалог на том же шаге.
func (m *Manager) handleFlowStep(ctx context.Context, userID string, conv *conversation, input string) string {
	switch conv.flow {
	case FlowAddGame:
		return m.stepAddGame(ctx, userID, conv, input)
	case FlowEditGame:
		return m.stepEditGame(ctx, userID, conv, input)
	case FlowRemoveGame:
		return m.stepRemoveGame(ctx, userID, conv, input)
	case FlowByAuthor:
		return m.stepByAuthor(ctx, userID, conv, input)
	case FlowByYear:
		return m.stepByYear(ctx, userID, conv, input)
	default:
		// Недостижимо: flow проверен вызывающим.
		conv.resetFlow()
		return cancelledMsg
	}
}

// stepAddGame: название → издатель → год → проверка дубликата → оценка.
// Игра записывается в хранилище только после корректной оценки.
func (m *Manager) stepAddGame(ctx context.Context, userID string, conv *conversation, input string) string {
	switch conv.step {
	case StepTitle:
		if !validText(input) {
			return badTitleMsg
		}
		conv.title = input
		conv.step = StepAuthor
		return "Введите издателя:"

	case StepAuthor:
		if !validText(input) {
			return badAuthorMsg
		}
		conv.author = input
		conv.step = StepYear
		return "Введите год выхода:"

	case StepYear:
		year, ok := parseYear(input)
		if !ok {
			return badYearMsg
		}
		exists, err := m.storage.GameExists(ctx, conv.title, conv.author, year, userID)
		if err != nil {
			return m.storeFailure(userID, err)
		}
		if exists {
			// Дубликат возвращает диалог на шаг названия.
			conv.title = ""
			conv.author = ""
			conv.step = StepTitle
			return duplicateMsg + "\nВведите название игры:"
		}
		conv.year = year
		conv.step = StepRating
		return fmt.Sprintf("Игра '%s' издателя %s (%d) успешно добавлена!\nОцените игру от 1 до 5:",
			conv.title, conv.author, conv.year)

	case StepRating:
		rating, err := strconv.Atoi(input)
		if err != nil {
			return "Некорректный формат оценки. Пожалуйста, введите числовое значение от 1 до 5."
		}
		if rating < 1 || rating > 5 {
			return "Пожалуйста, введите оценку от 1 до 5."
		}
		game := storage.Game{Title: conv.title, Author: conv.author, Year: conv.year, Rating: rating}
		if err := m.storage.AddPlayedGame(ctx, game, userID); err != nil {
			return m.storeFailure(userID, err)
		}
		reply := fmt.Sprintf("Отзыв %d⭐ оставлен. Игра '%s' издателя %s (%d) сохранена в списке пройденных.",
			rating, conv.title, conv.author, conv.year)
		conv.resetFlow()
		return reply
	}
	conv.resetFlow()
	return cancelledMsg
}

// stepEditGame: номер в снимке → новое название → издатель → год →
// повторная проверка дубликата → замена по старому ключу.
func (m *Manager) stepEditGame(ctx context.Context, userID string, conv *conversation, input string) string {
	switch conv.step {
	case StepIndex:
		idx, err := strconv.Atoi(input)
		if err != nil {
			return "Некорректный формат номера игры"
		}
		if idx < 1 || idx > len(conv.snapshot) {
			return "Указанный уникальный номер игры не существует в списке пройденных игр."
		}
		conv.oldKey = conv.snapshot[idx-1].Key()
		conv.step = StepTitle
		return "Введите новое название игры:"

	case StepTitle:
		if !validText(input) {
			return badTitleMsg
		}
		conv.title = input
		conv.step = StepAuthor
		return "Введите нового издателя:"

	case StepAuthor:
		if !validText(input) {
			return badAuthorMsg
		}
		conv.author = input
		conv.step = StepYear
		return "Введите новый год выхода:"

	case StepYear:
		year, ok := parseYear(input)
		if !ok {
			return badYearMsg
		}
		exists, err := m.storage.GameExists(ctx, conv.title, conv.author, year, userID)
		if err != nil {
			return m.storeFailure(userID, err)
		}
		if exists {
			conv.title = ""
			conv.author = ""
			conv.step = StepTitle
			return duplicateMsg + "\nВведите новое название игры:"
		}
		updated := storage.Game{Title: conv.title, Author: conv.author, Year: year}
		if err := m.storage.EditPlayedGame(ctx, conv.oldKey, updated, userID); err != nil {
			return m.storeFailure(userID, err)
		}
		reply := fmt.Sprintf("Игра '%s' успешно заменена на игру '%s' от издателя %s (%d) в списке пройденных!",
			conv.oldKey.Title, updated.Title, updated.Author, updated.Year)
		conv.resetFlow()
		return reply
	}
	conv.resetFlow()
	return cancelledMsg
}

// stepRemoveGame: номер в снимке → перезапись списка без удалённой игры.
// Перезаписывается именно показанный пользователю снимок.
func (m *Manager) stepRemoveGame(ctx context.Context, userID string, conv *conversation, input string) string {
	idx, err := strconv.Atoi(input)
	if err != nil {
		return "Некорректный формат номера игры"
	}
	if idx < 1 || idx > len(conv.snapshot) {
		return "Указанный номер игры не существует."
	}

	removed := conv.snapshot[idx-1]
	rest := make([]storage.Game, 0, len(conv.snapshot)-1)
	rest = append(rest, conv.snapshot[:idx-1]...)
	rest = append(rest, conv.snapshot[idx:]...)

	if err := m.storage.UpdatePlayedGames(ctx, userID, rest); err != nil {
		return m.storeFailure(userID, err)
	}
	conv.resetFlow()
	return fmt.Sprintf("Игра %s успешно удалена из списка пройденных!", removed.Title)
}

// stepByAuthor: единственный шаг — имя издателя.
func (m *Manager) stepByAuthor(ctx context.Context, userID string, conv *conversation, input string) string {
	if !validText(input) {
		return badAuthorMsg
	}
	games, err := m.storage.GamesByAuthor(ctx, input, userID)
	if err != nil {
		return m.storeFailure(userID, err)
	}
	conv.resetFlow()
	if len(games) == 0 {
		return "Нет пройденных игр этого издателя."
	}
	return fmt.Sprintf("Игры издателя %s:\n%s", input, joinTitles(games))
}

// stepByYear: единственный шаг — год выхода.
func (m *Manager) stepByYear(ctx context.Context, userID string, conv *conversation, input string) string {
	year, ok := parseYear(input)
	if !ok {
		return badYearMsg
	}
	games, err := m.storage.GamesByYear(ctx, year, userID)
	if err != nil {
		return m.storeFailure(userID, err)
	}
	conv.resetFlow()
	if len(games) == 0 {
		return "Нет пройденных игр в этого года."
	}
	return fmt.Sprintf("Игры %d года:\n%s", year, joinTitles(games))
}

// formatGameList нумерует список игр, каждая на своей строке,
// с завершающим переносом.
func formatGameList(games []storage.Game) string {
	var b strings.Builder
	for i, g := range games {
		fmt.Fprintf(&b, "%d. %s\n", i+1, g.Title)
	}
	return b.String()
}

// formatRatedList нумерует игры со средним рейтингом.
func formatRatedList(rated []storage.RatedGame) string {
	lines := make([]string, 0, len(rated))
	for i, r := range rated {
		lines = append(lines, fmt.Sprintf("%d. %s: %.1f⭐", i+1, r.Title, r.AvgRating))
	}
	return strings.Join(lines, "\n")
}

func joinTitles(games []storage.Game) string {
	titles := make([]string, 0, len(games))
	for _, g := range games {
		titles = append(titles, g.Title)
	}
	return strings.Join(titles, "\n")
}
