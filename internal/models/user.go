// Package models содержит доменную модель пользователя системы — владельца
// зарегистрированного автомобиля, включая учётные данные, номер машины и
// текущее парковочное состояние. Структура используется в бизнес‑логике и при
// работе с хранилищем.
package models

import "time"

// Роли пользователей системы.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DefaultParkingID — значение parking_id для машины вне парковки.
const DefaultParkingID = "0"

// User представляет зарегистрированного владельца автомобиля.
//
// PasswordHash никогда не сериализуется в ответы API. Поле Version ведёт
// счётчик ревизий записи для оптимистичной блокировки при обновлении
// парковочного состояния.
type User struct {
	UID                       string     `json:"uid"`                             // Уникальный идентификатор пользователя
	Name                      string     `json:"name"`                            // Фамилия
	Firstname                 *string    `json:"firstname,omitempty"`             // Имя (опционально)
	Email                     string     `json:"email"`                           // Электронная почта (уникальная)
	PasswordHash              string     `json:"-"`                               // bcrypt-хэш пароля
	Role                      string     `json:"role"`                            // Роль пользователя, admin или user
	Blocked                   bool       `json:"blocked"`                         // Признак блокировки аккаунта
	ProfileImageName          *string    `json:"profile_image_name,omitempty"`    // Имя файла аватара
	Plate                     string     `json:"plate"`                           // Номер машины в исходном виде, как ввёл пользователь
	Telephone                 int64      `json:"telephone"`                       // Телефон
	ParkingID                 string     `json:"parking_id"`                      // Идентификатор занятого места, "0" — вне парковки
	TypeSubscription          *int       `json:"type_subscription,omitempty"`     // Ссылка на тарифный план
	SubscriptionEndDate       *time.Time `json:"subscription_end_date,omitempty"` // Дата окончания подписки
	ArrivalTime               *time.Time `json:"arrival_time,omitempty"`          // Время въезда
	ExitTime                  *time.Time `json:"exit_time,omitempty"`             // Время выезда
	RequiresAccessibleParking bool       `json:"requires_accessible_parking"`     // Нужно ли место для людей с инвалидностью
	Version                   int        `json:"-"`                               // Счётчик ревизий для optimistic lock
	CreatedAt                 time.Time  `json:"created_at"`
	UpdatedAt                 time.Time  `json:"updated_at"`
}

// IsBlocked возвращает текущий признак блокировки пользователя.
func (u *User) IsBlocked() bool {
	return u.Blocked
}

// IsParked сообщает, находится ли машина пользователя на парковке.
func (u *User) IsParked() bool {
	return u.ParkingID != DefaultParkingID
}
