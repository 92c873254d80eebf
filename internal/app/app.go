package app

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"chargehub/internal/config"
	"chargehub/internal/db"
	httpserver "chargehub/internal/http"
	"chargehub/internal/http/handlers"
	redisstore "chargehub/internal/redis"
	"chargehub/internal/repository"
	"chargehub/internal/service"
)

// App wires transactions-api dependencies.
type App struct {
	server      *httpserver.Server
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := db.NewPostgres(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	var (
		redisClient *redis.Client
		statusStore service.StatusStore
	)
	if cfg.Redis.Addr != "" {
		redisClient, err = redisstore.NewClient(cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		statusStore = redisstore.NewStatusStore(redisClient)
	} else {
		logger.Info("redis disabled, connector statuses served from database")
	}

	repo := repository.NewTransactionRepository(sqlDB)
	transactionsService := service.NewTransactionsService(repo, statusStore, logger)
	transactionsHandler := handlers.NewTransactionsHandler(transactionsService, logger)

	router := httpserver.NewRouter(transactionsHandler, handlers.NewHealthHandler())
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts HTTP server.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
