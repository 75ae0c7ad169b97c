// Package imagegenservice собирает основное приложение: хранилище, кэш,
// клиенты внешних API, брокер сообщений и HTTP-сервер.
package imagegenservice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/imagegen-service/internal/cache"
	"github.com/magabrotheeeer/imagegen-service/internal/config"
	"github.com/magabrotheeeer/imagegen-service/internal/imageprovider"
	"github.com/magabrotheeeer/imagegen-service/internal/lib/jwt"
	"github.com/magabrotheeeer/imagegen-service/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/imagegen-service/internal/migrations"
	"github.com/magabrotheeeer/imagegen-service/internal/paymentprovider"
	authservice "github.com/magabrotheeeer/imagegen-service/internal/services/auth"
	generationservice "github.com/magabrotheeeer/imagegen-service/internal/services/generation"
	paymentservice "github.com/magabrotheeeer/imagegen-service/internal/services/payment"
	"github.com/magabrotheeeer/imagegen-service/internal/storage"
)

// App основное приложение сервиса генерации изображений.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New создает приложение и все его зависимости.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}
	if err = storage.CheckDatabaseReady(db); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(ch)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	imageClient := imageprovider.NewClient(cfg.ImageAPIURL, cfg.ImageAPIKey)
	gatewayClient := paymentprovider.NewClient(cfg.GatewayURL, cfg.GatewayKeyID, cfg.GatewayKeySecret)

	authService := authservice.New(db, jwtMaker)
	generationService := generationservice.New(db, imageClient, cacheRedis, logger)
	paymentService := paymentservice.New(db, gatewayClient, publisher, cacheRedis, cfg.Currency, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService, generationService, paymentService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.ch.Close(); closeErr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", closeErr))
		}
		if closeErr := a.conn.Close(); closeErr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", closeErr))
		}
		a.db.DB.Close()
		return err
	}
}
