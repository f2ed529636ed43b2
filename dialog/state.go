package dialog

import (
	"sync"

	"groobee/storage"
)

// Flow — тип многошагового диалога.
type Flow int

const (
	FlowNone Flow = iota
	FlowAddGame
	FlowEditGame
	FlowRemoveGame
	FlowByAuthor
	FlowByYear
)

// Step — текущий шаг внутри диалога. Имеет смысл только при Flow != FlowNone.
type Step int

const (
	StepNone Step = iota
	StepIndex
	StepTitle
	StepAuthor
	StepYear
	StepRating
)

// conversation — всё состояние одного чата: текущий диалог, накопленные поля
// и флаг режима загадок. Обработка сообщений чата сериализуется mu, чтобы два
// сообщения одного пользователя не перемешали шаги.
type conversation struct {
	mu sync.Mutex

	flow Flow
	step Step
	quiz bool

	title  string
	author string
	year   int
	oldKey storage.GameKey

	// snapshot — список игр, показанный пользователю при входе в диалог
	// удаления или редактирования. Номер из ответа пользователя и
	// перезапись списка считаются именно по нему, а не по свежей выборке.
	snapshot []storage.Game
}

// resetFlow очищает диалог и накопленные поля. Режим загадок не трогает.
func (c *conversation) resetFlow() {
	c.flow = FlowNone
	c.step = StepNone
	c.title = ""
	c.author = ""
	c.year = 0
	c.oldKey = storage.GameKey{}
	c.snapshot = nil
}
