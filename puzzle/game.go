package puzzle

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

const allSolvedMsg = "Поздравляю, вы решили все загадки! Пожалуйста, нажмите /stoppuzzle, чтобы завершить игру и посмотреть статистику, либо /restart, чтобы начать заново"

// Game — игра в загадки. Пул загадок и текущая загадка общие для всех чатов
// и меняются любым игроком; доступ к ним сериализуется одним мьютексом.
// Счётчики правильных ответов ведутся отдельно на каждый чат.
type Game struct {
	mu      sync.Mutex
	puzzles map[string]Puzzle
	current *Puzzle
	correct map[string]int
	// total — размер стартового набора, знаменатель статистики.
	total int
	log   zerolog.Logger
}

// New создаёт игру со стартовым набором загадок.
func New(log zerolog.Logger) *Game {
	seed := seedPuzzles()
	return &Game{
		puzzles: seed,
		correct: make(map[string]int),
		total:   len(seed),
		log:     log,
	}
}

// Start начинает игру: выбирает случайную загадку из оставшихся.
func (g *Game) Start(chatID string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.puzzles) == 0 {
		return "Все загадки решены!"
	}

	p := g.randomPuzzle()
	g.current = &p
	g.log.Debug().Str("chat_id", chatID).Str("question", p.Question).Msg("🧩 новая загадка")
	return "Добро пожаловать в игру в загадки! Начнем.\nЗагадка: " + p.Question
}

// CheckAnswer сверяет ответ пользователя с текущей загадкой без учёта регистра.
// Правильный ответ убирает загадку из пула и выбирает следующую.
func (g *Game) CheckAnswer(chatID, userAnswer string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.current == nil {
		return "Нет текущей загадки."
	}

	if !strings.EqualFold(userAnswer, g.current.Answer) {
		return "Неверно! Попробуйте еще раз."
	}

	g.correct[chatID]++
	delete(g.puzzles, g.current.Question)
	if len(g.puzzles) == 0 {
		g.current = nil
		return allSolvedMsg
	}
	p := g.randomPuzzle()
	g.current = &p
	return "Верно! Следующая загадка: " + p.Question
}

// Hint возвращает подсказку к текущей загадке.
func (g *Game) Hint() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.current == nil {
		return "Нет текущей загадки."
	}
	return "Подсказка: " + g.current.Hint
}

// Next пропускает текущую загадку: она убирается из пула без зачёта,
// взамен выбирается следующая.
func (g *Game) Next(chatID string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.current == nil {
		return "Нет текущей загадки."
	}

	delete(g.puzzles, g.current.Question)
	if len(g.puzzles) == 0 {
		g.current = nil
		return "Все загадки решены! Пожалуйста, нажмите /stoppuzzle, чтобы завершить игру и посмотреть статистику, либо /restart, чтобы начать заново"
	}
	p := g.randomPuzzle()
	g.current = &p
	return "Следующая загадка: " + p.Question
}

// Reveal показывает ответ на текущую загадку и пропускает её без зачёта.
func (g *Game) Reveal(chatID string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.current == nil {
		return "Нет текущей загадки."
	}

	answer := "Ответ на загадку '" + g.current.Question + "' : " + g.current.Answer
	delete(g.puzzles, g.current.Question)
	if len(g.puzzles) == 0 {
		g.current = nil
		return answer + "\nПоздравляю, вы решили все загадки! Пожалуйста, нажмите /stoppuzzle"
	}
	p := g.randomPuzzle()
	g.current = &p
	return answer + "\nСледующая загадка: " + p.Question
}

// Restart восстанавливает стартовый набор, сбрасывает счётчик чата
// и начинает игру заново.
func (g *Game) Restart(chatID string) string {
	g.mu.Lock()
	g.puzzles = seedPuzzles()
	g.current = nil
	delete(g.correct, chatID)
	g.mu.Unlock()

	return "Игра в загадки начата заново.\n" + g.Start(chatID)
}

// Statistics возвращает статистику чата. Знаменатель — размер стартового
// набора, а не число попыток.
func (g *Game) Statistics(chatID string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	correct := g.correct[chatID]
	percentage := float64(correct*100) / float64(g.total)
	return fmt.Sprintf("Правильных ответов: %d\nНеправильных ответов: %d\nПроцент правильных ответов: %.1f%%",
		correct, g.total-correct, percentage)
}

// Remaining возвращает число загадок, оставшихся в пуле.
func (g *Game) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.puzzles)
}

// ClearPool — служебная операция: убирает все загадки из пула.
func (g *Game) ClearPool() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.puzzles = make(map[string]Puzzle)
	g.current = nil
}

// ClearCurrent — служебная операция: сбрасывает текущую загадку.
func (g *Game) ClearCurrent() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current = nil
}

// SetPuzzle — служебная операция: кладёт загадку в пул и делает её текущей.
func (g *Game) SetPuzzle(p Puzzle) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.puzzles[p.Question] = p
	g.current = &p
}

// randomPuzzle выбирает случайную загадку из пула. Вызывается под мьютексом,
// пул не должен быть пустым.
func (g *Game) randomPuzzle() Puzzle {
	keys := make([]string, 0, len(g.puzzles))
	for q := range g.puzzles {
		keys = append(keys, q)
	}
	return g.puzzles[keys[rand.Intn(len(keys))]]
}
