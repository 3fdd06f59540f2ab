// Package plate реализует нормализацию автомобильных номеров.
//
// Детектор и база могут хранить один и тот же номер по-разному: в разном
// регистре и с национальным префиксом "1-" или без него. Normalize приводит
// номер к канонической форме для сравнения, CandidateForms возвращает обе
// возможные формы хранения.
package plate

import "strings"

// Prefix — национальный префикс формата номера, который может присутствовать
// как в показаниях детектора, так и в сохранённом номере.
const Prefix = "1-"

// Normalize приводит номер к канонической форме сравнения: верхний регистр,
// без ведущего префикса "1-". Префикс снимается до неподвижной точки, поэтому
// преобразование идемпотентно: Normalize(Normalize(p)) == Normalize(p).
// Вход не валидируется.
func Normalize(raw string) string {
	normalized := strings.ToUpper(raw)
	for strings.HasPrefix(normalized, Prefix) {
		normalized = strings.TrimPrefix(normalized, Prefix)
	}
	return normalized
}

// CandidateForms возвращает обе формы, в которых номер может храниться в базе:
// каноническую и с префиксом "1-". Сравнение с базой выполняется без учёта
// регистра по обеим формам.
func CandidateForms(raw string) (plain, prefixed string) {
	plain = Normalize(raw)
	return plain, Prefix + plain
}
