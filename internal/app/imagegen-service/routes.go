// Package imagegenservice предоставляет маршруты для основного приложения.
package imagegenservice

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/imagegen-service/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/imagegen-service/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/imagegen-service/internal/http/handlers/image/generate"
	"github.com/magabrotheeeer/imagegen-service/internal/http/handlers/payment/paymentcreate"
	"github.com/magabrotheeeer/imagegen-service/internal/http/handlers/payment/paymentverify"
	"github.com/magabrotheeeer/imagegen-service/internal/http/handlers/user/credits"
	"github.com/magabrotheeeer/imagegen-service/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/imagegen-service/internal/services/auth"
	generationservice "github.com/magabrotheeeer/imagegen-service/internal/services/generation"
	paymentservice "github.com/magabrotheeeer/imagegen-service/internal/services/payment"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	authService *authservice.Service,
	generationService *generationservice.Service,
	paymentService *paymentservice.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/user/register", register.New(logger, authService).ServeHTTP)
		r.Post("/user/login", login.New(logger, authService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/user/credits", credits.New(logger, generationService).ServeHTTP)
			r.Post("/image/generate-image", generate.New(logger, generationService).ServeHTTP)
			r.Post("/user/pay", paymentcreate.New(logger, paymentService).ServeHTTP)
			r.Post("/user/verify", paymentverify.New(logger, paymentService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
