// Package metrics описывает прометеевские метрики сервиса.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Результаты проверки номера для метки result.
const (
	ResultOK             = "ok"
	ResultNotFound       = "not_found"
	ResultInvalidRequest = "invalid_request"
	ResultError          = "error"
)

// PlateChecks считает обращения детектора к проверке номера по исходу.
var PlateChecks = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "plate_checks_total",
	Help: "Total number of plate check requests by result.",
}, []string{"result"})
