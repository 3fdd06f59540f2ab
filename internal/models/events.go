package models

import "time"

// EntryEvent — событие въезда машины на парковку, публикуемое в очередь
// после успешной проверки номера.
type EntryEvent struct {
	EventID     string    `json:"event_id"`
	UserUID     string    `json:"user_uid"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Plate       string    `json:"plate"`
	ParkingID   string    `json:"parking_id"`
	ArrivalTime time.Time `json:"arrival_time"`
}

// ExpiryInfo — данные для письма-напоминания об окончании подписки.
type ExpiryInfo struct {
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	PlanName string    `json:"plan_name"`
	EndDate  time.Time `json:"end_date"`
}
