// Package models содержит доменные структуры, описывающие тарифный план
// парковки, а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Subscription представляет тарифный план, который администратор создаёт
// в консоли и на который ссылаются пользователи через type_subscription.
// Duration хранится составной строкой вида "3 Month" (значение + единица).
type Subscription struct {
	ID        int       `json:"id"`       // Идентификатор плана
	Name      string    `json:"name"`     // Название плана
	Duration  string    `json:"time"`     // Длительность, например "3 Month"
	Price     float64   `json:"price"`    // Цена в EUR
	CreatedAt time.Time `json:"created_at"`
}

// DummySubscription используется для приёма данных из JSON-запроса на
// создание плана, прежде чем конвертировать их в Subscription.
// Длительность приходит строкой, чтобы её можно было валидировать и
// парсить вручную.
type DummySubscription struct {
	Name  string  `json:"name" validate:"required"`     // Название плана
	Time  string  `json:"time" validate:"required"`     // Длительность в формате "3 Month"
	Price float64 `json:"price" validate:"required,gt=0"` // Цена (>0)
}
