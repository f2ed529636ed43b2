package storage

import "math/rand"

// quoteList — постоянный набор цитат, раздаётся по команде /get.
var quoteList = []string{
	"Начинать всегда стоит с того, что сеет сомнения. \n\nБорис Стругацкий.",
	"80% успеха - это появиться в нужном месте в нужное время.\n\nВуди Аллен",
	"Мы должны признать очевидное: понимают лишь те,кто хочет понять.\n\nБернар Вербер",
}

// RandQuote возвращает случайную цитату из quoteList.
func (s *PostgresStorage) RandQuote() string {
	return quoteList[rand.Intn(len(quoteList))]
}
