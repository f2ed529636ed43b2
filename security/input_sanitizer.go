package security

import (
	"strings"
	"unicode"
)

// SanitizeText убирает управляющие символы из входящего текста.
// Перенос строки и табуляция сохраняются, видимый текст не меняется:
// ответ-эхо должен совпадать с тем, что набрал пользователь.
func SanitizeText(input string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)
}
