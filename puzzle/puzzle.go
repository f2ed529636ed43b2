package puzzle

// Puzzle — одна загадка: вопрос, ответ и подсказка.
// После загрузки в пул загадка не меняется.
type Puzzle struct {
	Question string
	Answer   string
	Hint     string
}

// seedPuzzles возвращает свежую копию стартового набора загадок,
// ключ — текст вопроса.
func seedPuzzles() map[string]Puzzle {
	list := []Puzzle{
		{"Часто висит головой вниз, к небу стремится всегда, но полететь не может", "Капля", "Это падает с неба во время дождя"},
		{"Имеет корни, но не растет. Не видит, но слышит", "Дерево", "Это большое растение в парке"},
		{"Без рук, без ног, а всегда идут", "Часы", "Показывает время"},
		{"Без окон, дверей и крыши, но внутри есть золото", "Арахис", "Это еда и часто используется для приготовления масла"},
		{"Чем больше берешь, тем меньше остается", "Время", "Это уходит, когда вы его не замечаете"},
		{"Что можно увидеть с закрытыми глазами?", "Сон", "Это происходит, когда вы спите"},
		{"Белый, пушистый, летает без крыльев", "Снег", "Это падает с неба зимой и покрывает землю"},
		{"Имеет ключ, но не открывает замок", "Карта", "Это помогает вам найти путь"},
		{"Может быть легким как перышко, но сам не поднимется в воздух", "Ветер", "Это движется вокруг нас, но невидимо"},
		{"Имеет ушко, но не слышит", "Игла", "Используется для шитья"},
		{"Бежит и не может уйти вперед", "Река", "Это течет от гор к океанам"},
		{"Висит в воздухе и греет нас своим светом", "Солнце", "Это небесное тело светит днем"},
		{"Имеет зубы, но не кусает", "Гребешок", "Это находится у морских животных"},
		{"Может быть горячим или холодным, но никогда не теплым", "Огонь", "Это используется для приготовления пищи и обогрева"},
		{"Стоит на кончике ног, но не упадет", "Тень", "Это образуется, когда что-то загораживает свет"},
		{"Серое, большое, и все внутри", "Облако", "Это плавает в небе и приносит дождь"},
		{"Маленький как бутылка, светится внутри, но не является источником света", "Лампочка", "Это используется для освещения комнаты"},
		{"Может стоять в одной точке, но всегда стремится вверх", "Дым", "Это образуется, когда что-то горит"},
		{"Что можно сломать, даже если ни разу не касался?", "Обещание", "Это слово, которое вы должны держать"},
		{"Быстрый как стрела, он летит без перьев", "Свет", "Это движется со скоростью 299 792 458 метров в секунду"},
	}

	puzzles := make(map[string]Puzzle, len(list))
	for _, p := range list {
		puzzles[p.Question] = p
	}
	return puzzles
}
