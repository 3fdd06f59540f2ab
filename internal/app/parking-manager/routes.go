// Package parkingmanager предоставляет маршруты для основного приложения.
package parkingmanager

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/parking-manager/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/parking-manager/internal/http/handlers/auth/register"
	platecheck "github.com/magabrotheeeer/parking-manager/internal/http/handlers/plate/check"
	platerelease "github.com/magabrotheeeer/parking-manager/internal/http/handlers/plate/release"
	subcreate "github.com/magabrotheeeer/parking-manager/internal/http/handlers/subscription/create"
	sublist "github.com/magabrotheeeer/parking-manager/internal/http/handlers/subscription/list"
	subremove "github.com/magabrotheeeer/parking-manager/internal/http/handlers/subscription/remove"
	subupdateprice "github.com/magabrotheeeer/parking-manager/internal/http/handlers/subscription/updateprice"
	userassign "github.com/magabrotheeeer/parking-manager/internal/http/handlers/user/assign"
	userblock "github.com/magabrotheeeer/parking-manager/internal/http/handlers/user/block"
	userlist "github.com/magabrotheeeer/parking-manager/internal/http/handlers/user/list"
	userupdate "github.com/magabrotheeeer/parking-manager/internal/http/handlers/user/update"
	"github.com/magabrotheeeer/parking-manager/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/parking-manager/internal/services/auth"
	parkingservice "github.com/magabrotheeeer/parking-manager/internal/services/parking"
	subservice "github.com/magabrotheeeer/parking-manager/internal/services/subscription"
	userservice "github.com/magabrotheeeer/parking-manager/internal/services/user"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	authService *authservice.AuthService,
	parkingService *parkingservice.ParkingService,
	subscriptionService *subservice.SubscriptionService,
	userService *userservice.UserService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки: детектор номеров и учетные записи
		r.Post("/check-plate", platecheck.New(logger, parkingService).ServeHTTP)
		r.Post("/release-plate", platerelease.New(logger, parkingService).ServeHTTP)
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Put("/users/profile", userupdate.New(logger, userService).ServeHTTP)

			// Административная консоль
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Post("/subscriptions", subcreate.New(logger, subscriptionService).ServeHTTP)
				r.Get("/subscriptions", sublist.New(logger, subscriptionService).ServeHTTP)
				r.Put("/subscriptions/{id}", subupdateprice.New(logger, subscriptionService).ServeHTTP)
				r.Delete("/subscriptions/{id}", subremove.New(logger, subscriptionService).ServeHTTP)
				r.Get("/users", userlist.New(logger, userService).ServeHTTP)
				r.Put("/users/{uid}/block", userblock.New(logger, userService).ServeHTTP)
				r.Put("/users/{uid}/subscription", userassign.New(logger, userService).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
