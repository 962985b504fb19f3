package digitalstore

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/digital-store/internal/cache"
	"github.com/magabrotheeeer/digital-store/internal/config"
	"github.com/magabrotheeeer/digital-store/internal/lib/jwt"
	"github.com/magabrotheeeer/digital-store/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/digital-store/internal/lib/sl"
	"github.com/magabrotheeeer/digital-store/internal/migrations"
	authservice "github.com/magabrotheeeer/digital-store/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/digital-store/internal/services/catalog"
	inventoryservice "github.com/magabrotheeeer/digital-store/internal/services/inventory"
	purchaseservice "github.com/magabrotheeeer/digital-store/internal/services/purchase"
	"github.com/magabrotheeeer/digital-store/internal/storage/media"
	"github.com/magabrotheeeer/digital-store/internal/storage/repository"
)

// App — собранное приложение магазина.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	rabbit *amqp.Connection
}

// New создает приложение: подключает Postgres, применяет миграции, поднимает
// Redis и RabbitMQ, собирает сервисы и маршруты. Недоступный RabbitMQ не
// останавливает запуск — события покупок просто не публикуются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	mediaStore, err := media.New(cfg.MediaRoot, cfg.MediaURL)
	if err != nil {
		return nil, err
	}

	var rabbitConn *amqp.Connection
	var publisher purchaseservice.EventPublisher
	conn, err := rabbitmq.Connect(cfg.AddressRabbitMQ, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		logger.Warn("rabbitmq unavailable, purchase events disabled", sl.Err(err))
	} else {
		pub, err := rabbitmq.NewPublisher(conn)
		if err != nil {
			logger.Warn("failed to init rabbitmq publisher, purchase events disabled", sl.Err(err))
			_ = conn.Close()
		} else {
			rabbitConn = conn
			publisher = pub
		}
	}

	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL, cfg.RefreshTTL)

	authService := authservice.New(db, jwtMaker)
	inventoryService := inventoryservice.New(db, mediaStore, cacheRedis, logger)
	catalogService := catalogservice.New(db, mediaStore, cacheRedis, cfg.BaseURL, logger)
	purchaseService := purchaseservice.New(db, publisher, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService, inventoryService, catalogService, purchaseService, mediaStore.Root())

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
		rabbit: rabbitConn,
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
		if a.rabbit != nil {
			_ = a.rabbit.Close()
		}
		_ = a.db.DB.Close()
		return err
	}
}
