package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/socialnet/config"
	"github.com/d60-Lab/socialnet/internal/api"
	"github.com/d60-Lab/socialnet/internal/api/handler"
	"github.com/d60-Lab/socialnet/internal/api/middleware"
	"github.com/d60-Lab/socialnet/internal/cache"
	"github.com/d60-Lab/socialnet/internal/events"
	"github.com/d60-Lab/socialnet/internal/media"
	"github.com/d60-Lab/socialnet/internal/repository"
	"github.com/d60-Lab/socialnet/internal/service"
	"github.com/d60-Lab/socialnet/pkg/database"
	"github.com/d60-Lab/socialnet/pkg/logger"
	"github.com/d60-Lab/socialnet/pkg/tracing"
)

//go:generate swag init -d ../.. -g cmd/server/main.go -o ../../docs

// @title socialnet API
// @version 1.0
// @description 社交网络后端：关注、发帖、点赞、评论与通知
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Error("server exited", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()
	gin.SetMode(cfg.Server.Mode)

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: cfg.Sentry.Environment}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		defer rdb.Close()
	} else {
		logger.Warn("redis not configured, user cache disabled")
	}

	relay := media.Disabled()
	if cfg.Media.Enabled() {
		client, err := media.NewS3Client(ctx, cfg.Media)
		if err != nil {
			return fmt.Errorf("init media relay: %w", err)
		}
		relay = media.NewS3Relay(client, cfg.Media)
	} else {
		logger.Warn("media bucket not configured, image uploads disabled")
	}
	janitor := media.NewJanitor(relay, cfg.Media.JanitorQueue)
	stopJanitor := janitor.Start(cfg.Media.JanitorWorkers)

	repos := repository.NewRepositories(db)
	users := cache.NewUserCache(repos.Users, rdb, cfg.Redis.TTL)
	notes := service.NewNotificationService(repos.Notifications, repos.Outbox, users, cfg.Kafka.Enabled())
	auth := service.NewAuthService(repos, users, cfg.JWT.Secret, cfg.JWT.TTL)

	stopRelay := func(context.Context) error { return nil }
	if cfg.Kafka.Enabled() {
		producer := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		stopRelay = service.NewOutboxRelay(repos.Outbox, producer, cfg.Kafka.RelayBatch, cfg.Kafka.RelayInterval).Start()
		logger.Info("notification events enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	h := handler.New(
		auth,
		service.NewRelationshipService(db, repos, users, notes),
		service.NewPostService(db, repos, users, relay, janitor, notes),
		service.NewProfileService(repos, users, relay, janitor),
		notes,
		handler.SessionConfig{CookieName: cfg.JWT.CookieName, TTL: cfg.JWT.TTL, Secure: !cfg.IsDebug()},
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	router := api.NewRouter(cfg, api.Options{
		Handler:  h,
		Verifier: auth,
		Metrics:  middleware.NewMetrics(reg),
		Gatherer: reg,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		// 图片以 base64 放在请求体里
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.Int("port", cfg.Server.Port), zap.String("mode", cfg.Server.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", zap.Error(err))
	}
	if err := stopRelay(shutdownCtx); err != nil {
		logger.Warn("outbox relay stop timed out", zap.Error(err))
	}
	if err := stopJanitor(shutdownCtx); err != nil {
		logger.Warn("media janitor stop timed out", zap.Error(err), zap.Int("pending", janitor.QueueLen()))
	}
	logger.Info("server stopped")
	return nil
}
