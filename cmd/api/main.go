package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-webinar-management/internal/api/handler"
	"github.com/sanosuguru/go-webinar-management/internal/api/middleware"
	"github.com/sanosuguru/go-webinar-management/internal/api/router"
	"github.com/sanosuguru/go-webinar-management/internal/application"
	"github.com/sanosuguru/go-webinar-management/internal/config"
	"github.com/sanosuguru/go-webinar-management/internal/domain/user"
	"github.com/sanosuguru/go-webinar-management/internal/domain/webinar"
	kafkainfra "github.com/sanosuguru/go-webinar-management/internal/infrastructure/kafka"
	"github.com/sanosuguru/go-webinar-management/internal/infrastructure/memory"
	"github.com/sanosuguru/go-webinar-management/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-webinar-management/internal/infrastructure/redis"
	"github.com/sanosuguru/go-webinar-management/internal/pkg/logger"
	"github.com/sanosuguru/go-webinar-management/internal/pkg/metrics"
)

func main() {
	cfg := config.Load()

	logger.Set(logger.NewLogger(cfg.App.Env))
	defer logger.Sync()

	m := metrics.Init()
	healthChecks := map[string]handler.HealthCheck{}

	// ストレージ
	webinarRepo, userRepo, closeStorage, err := setupStorage(cfg, healthChecks)
	if err != nil {
		logger.Fatal("ストレージ初期化エラー", zap.Error(err))
	}
	defer closeStorage()

	// Redis（未起動時はロック・キャッシュなしで動作）
	var (
		lockManager redisinfra.LockManagerInterface
		cache       redisinfra.WebinarCacheInterface
	)
	redisClient, err := redisinfra.NewClient(&redisinfra.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Warn("Redisに接続できないため分散ロックとキャッシュを無効化します", zap.Error(err))
	} else {
		defer redisClient.Close()
		lockManager = redisinfra.NewLockManager(redisClient)
		cache = redisinfra.NewWebinarCache(redisClient)
		healthChecks["redis"] = func(ctx context.Context) error { return redisinfra.Ping(ctx, redisClient) }
	}

	// Kafka（ブローカー未設定時はイベント送信なし）
	var publisher application.SeatsChangedPublisher
	if cfg.Kafka.Enabled() {
		p := kafkainfra.NewSeatsChangedPublisher(kafkainfra.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		defer func() {
			if err := p.Close(); err != nil {
				logger.Warn("Kafkaライターのクローズに失敗", zap.Error(err))
			}
		}()
		publisher = p
		logger.Info("座席数変更イベントを送信します", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	webinarService := application.NewWebinarService(webinarRepo, lockManager, cache, publisher, m, application.WebinarOptions{
		LockTTL:  cfg.Webinar.LockTTL,
		CacheTTL: cfg.Webinar.CacheTTL,
	})
	userService := application.NewUserService(userRepo)

	e := router.New(router.Options{
		WebinarService: webinarService,
		UserService:    userService,
		HealthChecks:   healthChecks,
		Metrics:        m,
		MetricsAuth:    middleware.LoadMetricsConfig(),
	})
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	// Graceful shutdown
	go func() {
		logger.Info("サーバーを起動します", zap.String("port", cfg.Server.Port), zap.String("storage", cfg.App.Storage))
		if err := e.Start(fmt.Sprintf(":%s", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("サーバーシャットダウンエラー", zap.Error(err))
		return
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}

// setupStorage は STORAGE 設定に応じてリポジトリを作成する
func setupStorage(cfg *config.Config, healthChecks map[string]handler.HealthCheck) (webinar.Repository, user.Repository, func(), error) {
	switch cfg.App.Storage {
	case "memory":
		users := memory.NewUserRepository()
		for _, u := range memory.SeedUsers() {
			if err := users.Add(u); err != nil {
				return nil, nil, nil, err
			}
		}
		return memory.NewWebinarRepository(), users, func() {}, nil

	case "postgres":
		db, err := postgres.NewConnection(&cfg.Database)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := postgres.RunMigrations(db.DB, cfg.App.MigrationsPath); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		healthChecks["postgres"] = func(ctx context.Context) error { return postgres.Ping(ctx, db) }
		return postgres.NewWebinarRepository(db), postgres.NewUserRepository(db), closeDB(db), nil

	default:
		return nil, nil, nil, fmt.Errorf("未対応のストレージです: %s", cfg.App.Storage)
	}
}

func closeDB(db *sqlx.DB) func() {
	return func() {
		if err := db.Close(); err != nil {
			logger.Warn("DBクローズエラー", zap.Error(err))
		}
	}
}
