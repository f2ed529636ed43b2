package dashboard

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"groobee/dialog"
	"groobee/puzzle"
)

// Status содержит краткую информацию о сервисе
type Status struct {
	Uptime        string `json:"uptime"`
	Goroutines    int    `json:"goroutines"`
	ActiveDialogs int    `json:"active_dialogs"`
	RiddlesLeft   int    `json:"riddles_left"`
	Status        string `json:"status"`
}

// Dashboard отдаёт текущий статус сервиса.
type Dashboard struct {
	manager   *dialog.Manager
	quiz      *puzzle.Game
	startedAt time.Time
}

func New(manager *dialog.Manager, quiz *puzzle.Game) *Dashboard {
	return &Dashboard{manager: manager, quiz: quiz, startedAt: time.Now()}
}

func (d *Dashboard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := Status{
		Uptime:        time.Since(d.startedAt).String(),
		Goroutines:    runtime.NumGoroutine(),
		ActiveDialogs: d.manager.ActiveDialogs(),
		RiddlesLeft:   d.quiz.Remaining(),
		Status:        "ok",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}
