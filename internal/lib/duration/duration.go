// Package duration разбирает составную длительность тарифного плана.
//
// План хранит длительность одной строкой вида "3 Month": числовое значение
// и единица Day/Month/Year. Parse валидирует строку, AddTo прибавляет
// длительность к дате для вычисления subscription_end_date.
package duration

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Единицы длительности тарифного плана.
const (
	UnitDay   = "Day"
	UnitMonth = "Month"
	UnitYear  = "Year"
)

// Duration — разобранная длительность плана.
type Duration struct {
	Value int    // Числовое значение (>0)
	Unit  string // Day, Month или Year
}

// Parse разбирает строку вида "3 Month". Возвращает ошибку, если значение
// не положительное или единица не входит в Day/Month/Year.
func Parse(s string) (Duration, error) {
	const op = "duration.Parse"
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Duration{}, fmt.Errorf("%s: expected \"<value> <unit>\", got %q", op, s)
	}
	value, err := strconv.Atoi(fields[0])
	if err != nil {
		return Duration{}, fmt.Errorf("%s: %w", op, err)
	}
	if value <= 0 {
		return Duration{}, fmt.Errorf("%s: value must be positive, got %d", op, value)
	}
	unit := fields[1]
	switch unit {
	case UnitDay, UnitMonth, UnitYear:
	default:
		return Duration{}, fmt.Errorf("%s: unknown unit %q", op, unit)
	}
	return Duration{Value: value, Unit: unit}, nil
}

// String возвращает каноническую строковую форму длительности.
func (d Duration) String() string {
	return fmt.Sprintf("%d %s", d.Value, d.Unit)
}

// AddTo прибавляет длительность к дате.
func (d Duration) AddTo(t time.Time) time.Time {
	switch d.Unit {
	case UnitDay:
		return t.AddDate(0, 0, d.Value)
	case UnitMonth:
		return t.AddDate(0, d.Value, 0)
	case UnitYear:
		return t.AddDate(d.Value, 0, 0)
	}
	return t
}
