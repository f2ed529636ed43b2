package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// Game — пройденная игра в списке пользователя.
type Game struct {
	Title  string
	Author string // издатель
	Year   int
	Rating int
}

// Key возвращает уникальный ключ игры в рамках одного чата.
func (g Game) Key() GameKey {
	return GameKey{Title: g.Title, Author: g.Author, Year: g.Year}
}

// GameKey — тройка (название, издатель, год), по которой игра ищется при замене.
type GameKey struct {
	Title  string
	Author string
	Year   int
}

// RatedGame — игра со средним рейтингом по всем чатам.
type RatedGame struct {
	Title     string
	AvgRating float64
}

// GameStorage описывает интерфейс хранилища пройденных игр и цитат.
// Все операции со списком игр ограничены одним чатом.
type GameStorage interface {
	// RandQuote возвращает случайную цитату.
	RandQuote() string

	// PlayedGames возвращает список пройденных игр чата в порядке добавления.
	PlayedGames(ctx context.Context, chatID string) ([]Game, error)

	// AddPlayedGame добавляет игру с оценкой в список пройденных.
	AddPlayedGame(ctx context.Context, game Game, chatID string) error

	// GameExists проверяет, есть ли игра с такой тройкой (название, издатель, год).
	GameExists(ctx context.Context, title, author string, year int, chatID string) (bool, error)

	// ClearPlayedGames полностью очищает список пройденных игр чата.
	ClearPlayedGames(ctx context.Context, chatID string) error

	// GamesByAuthor возвращает игры указанного издателя.
	GamesByAuthor(ctx context.Context, author, chatID string) ([]Game, error)

	// GamesByYear возвращает игры указанного года выхода.
	GamesByYear(ctx context.Context, year int, chatID string) ([]Game, error)

	// EditPlayedGame заменяет игру, найденную по старому ключу, новыми данными.
	EditPlayedGame(ctx context.Context, old GameKey, updated Game, chatID string) error

	// UpdatePlayedGames перезаписывает список пройденных игр чата целиком.
	UpdatePlayedGames(ctx context.Context, chatID string, games []Game) error

	// GamesByAverageRating возвращает игры чата по убыванию среднего рейтинга.
	GamesByAverageRating(ctx context.Context, chatID string) ([]RatedGame, error)
}

// PostgresStorage — реализация GameStorage поверх PostgreSQL.
type PostgresStorage struct {
	db  *sql.DB
	log zerolog.Logger
}

var _ GameStorage = (*PostgresStorage)(nil)

// NewPostgresStorage создаёт хранилище поверх готового пула соединений.
func NewPostgresStorage(db *sql.DB, log zerolog.Logger) *PostgresStorage {
	return &PostgresStorage{db: db, log: log}
}

// Migrate создаёт таблицу пройденных игр, если её ещё нет.
func (s *PostgresStorage) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS played_games (
			id      SERIAL PRIMARY KEY,
			chat_id TEXT NOT NULL,
			title   TEXT NOT NULL,
			author  TEXT NOT NULL,
			year    INT  NOT NULL,
			rating  INT  NOT NULL DEFAULT 0
		)`)
	if err != nil {
		return fmt.Errorf("ошибка создания таблицы played_games: %w", err)
	}
	return nil
}

func (s *PostgresStorage) PlayedGames(ctx context.Context, chatID string) ([]Game, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, author, year, rating FROM played_games WHERE chat_id = $1 ORDER BY id`,
		chatID)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки пройденных игр: %w", err)
	}
	defer rows.Close()
	return scanGames(rows)
}

func (s *PostgresStorage) AddPlayedGame(ctx context.Context, game Game, chatID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO played_games (chat_id, title, author, year, rating) VALUES ($1, $2, $3, $4, $5)`,
		chatID, game.Title, game.Author, game.Year, game.Rating)
	if err != nil {
		return fmt.Errorf("ошибка добавления игры: %w", err)
	}
	return nil
}

func (s *PostgresStorage) GameExists(ctx context.Context, title, author string, year int, chatID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM played_games WHERE chat_id = $1 AND title = $2 AND author = $3 AND year = $4)`,
		chatID, title, author, year).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки существования игры: %w", err)
	}
	return exists, nil
}

func (s *PostgresStorage) ClearPlayedGames(ctx context.Context, chatID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM played_games WHERE chat_id = $1`, chatID)
	if err != nil {
		return fmt.Errorf("ошибка очистки списка игр: %w", err)
	}
	return nil
}

func (s *PostgresStorage) GamesByAuthor(ctx context.Context, author, chatID string) ([]Game, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, author, year, rating FROM played_games WHERE chat_id = $1 AND author = $2 ORDER BY id`,
		chatID, author)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки игр по издателю: %w", err)
	}
	defer rows.Close()
	return scanGames(rows)
}

func (s *PostgresStorage) GamesByYear(ctx context.Context, year int, chatID string) ([]Game, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, author, year, rating FROM played_games WHERE chat_id = $1 AND year = $2 ORDER BY id`,
		chatID, year)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки игр по году: %w", err)
	}
	defer rows.Close()
	return scanGames(rows)
}

func (s *PostgresStorage) EditPlayedGame(ctx context.Context, old GameKey, updated Game, chatID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE played_games SET title = $1, author = $2, year = $3
		 WHERE chat_id = $4 AND title = $5 AND author = $6 AND year = $7`,
		updated.Title, updated.Author, updated.Year,
		chatID, old.Title, old.Author, old.Year)
	if err != nil {
		return fmt.Errorf("ошибка редактирования игры: %w", err)
	}
	return nil
}

// UpdatePlayedGames выполняется в транзакции: старый список удаляется и
// записывается переданный снимок целиком.
func (s *PostgresStorage) UpdatePlayedGames(ctx context.Context, chatID string, games []Game) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка открытия транзакции: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM played_games WHERE chat_id = $1`, chatID); err != nil {
		return fmt.Errorf("ошибка перезаписи списка игр: %w", err)
	}
	for _, g := range games {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO played_games (chat_id, title, author, year, rating) VALUES ($1, $2, $3, $4, $5)`,
			chatID, g.Title, g.Author, g.Year, g.Rating)
		if err != nil {
			return fmt.Errorf("ошибка перезаписи списка игр: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return nil
}

func (s *PostgresStorage) GamesByAverageRating(ctx context.Context, chatID string) ([]RatedGame, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, AVG(rating) FROM played_games
		 WHERE chat_id = $1 AND rating > 0
		 GROUP BY title ORDER BY AVG(rating) DESC, title`,
		chatID)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки среднего рейтинга: %w", err)
	}
	defer rows.Close()

	var rated []RatedGame
	for rows.Next() {
		var r RatedGame
		if err := rows.Scan(&r.Title, &r.AvgRating); err != nil {
			return nil, fmt.Errorf("ошибка чтения строки рейтинга: %w", err)
		}
		rated = append(rated, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обхода строк рейтинга: %w", err)
	}
	return rated, nil
}

func scanGames(rows *sql.Rows) ([]Game, error) {
	var games []Game
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.Title, &g.Author, &g.Year, &g.Rating); err != nil {
			return nil, fmt.Errorf("ошибка чтения строки игры: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обхода строк: %w", err)
	}
	return games, nil
}
