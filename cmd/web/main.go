// Package main is the entry point for the web frontend server
package main

import (
	"context"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"
	"go.uber.org/zap"

	advisorapp "github.com/healyfit/healy/internal/application/advisor"
	userapp "github.com/healyfit/healy/internal/application/user"
	"github.com/healyfit/healy/internal/application/upload"
	"github.com/healyfit/healy/internal/infrastructure/ai/openai"
	"github.com/healyfit/healy/internal/infrastructure/cache"
	"github.com/healyfit/healy/internal/infrastructure/config"
	"github.com/healyfit/healy/internal/infrastructure/http/webserver"
	"github.com/healyfit/healy/internal/infrastructure/monitoring"
	mongostore "github.com/healyfit/healy/internal/infrastructure/persistence/mongo"
	"github.com/healyfit/healy/internal/ports/outbound"
	"github.com/healyfit/healy/pkg/healthcheck"
	"github.com/healyfit/healy/pkg/logger"
)

func main() {
	app := fx.New(
		// Configuration
		fx.Provide(func() (*config.Config, error) {
			return config.Load(os.Getenv("HEALY_CONFIG_PATH"))
		}),

		// Logger
		fx.Provide(func(cfg *config.Config) (*zap.Logger, error) {
			return logger.New(logger.Config{
				Level:       cfg.App.LogLevel,
				Format:      cfg.App.LogFormat,
				Development: cfg.IsDevelopment(),
			})
		}),

		// Metrics
		fx.Provide(monitoring.NewMetrics),

		// Document store
		fx.Provide(func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*mongo.Database, error) {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
			defer cancel()

			db, err := mongostore.Connect(ctx, cfg, log)
			if err != nil {
				return nil, err
			}

			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					return mongostore.Disconnect(ctx, db)
				},
			})

			return db, nil
		}),
		fx.Provide(mongostore.NewUserRepository),
		fx.Provide(mongostore.NewConversationRepository),

		// Session cache
		fx.Provide(func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*cache.RedisClient, error) {
			client, err := cache.NewRedisClient(cfg, log)
			if err != nil {
				return nil, err
			}

			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					return client.Close()
				},
			})

			return client, nil
		}),
		fx.Provide(func(client *cache.RedisClient) outbound.CacheRepository {
			return client
		}),

		// AI client
		fx.Provide(func(cfg *config.Config, log *zap.Logger, metrics *monitoring.Metrics) outbound.AIService {
			return openai.NewClient(cfg, log, metrics)
		}),

		// Application services
		fx.Provide(func(repo outbound.UserRepository, cfg *config.Config, log *zap.Logger, metrics *monitoring.Metrics) *userapp.Service {
			return userapp.NewService(repo, cfg.Auth.JWTSecret, cfg.Auth.JWTExpiration, log, metrics)
		}),
		fx.Provide(func(repo outbound.ConversationRepository, ai outbound.AIService, cfg *config.Config, log *zap.Logger, metrics *monitoring.Metrics) *advisorapp.Service {
			return advisorapp.NewService(repo, ai, cfg.AI.HistoryWindow, log, metrics)
		}),
		fx.Provide(upload.NewSummarizer),

		// Web server infrastructure
		fx.Provide(func(cacheRepo outbound.CacheRepository, cfg *config.Config, log *zap.Logger) *webserver.SessionStore {
			return webserver.NewSessionStore(cacheRepo, cfg.Auth.SessionMaxAge, log)
		}),
		fx.Provide(newHealthCheck),
		fx.Provide(webserver.NewWebServer),

		// Start the server
		fx.Invoke(registerServer),
	)

	app.Run()
}

func newHealthCheck(cfg *config.Config, log *zap.Logger, db *mongo.Database, redis *cache.RedisClient) *healthcheck.HealthCheck {
	hc := healthcheck.New(cfg.App.Version, log)

	hc.Register("mongodb", healthcheck.NewPingChecker("mongodb", func(ctx context.Context) error {
		return db.Client().Ping(ctx, nil)
	}))
	hc.Register("redis", healthcheck.NewPingChecker("redis", func(ctx context.Context) error {
		return redis.Ping(ctx)
	}))
	// The completion endpoint is not pinged to avoid burning quota; a
	// missing credential is the one condition checkable from here.
	hc.Register("ai", healthcheck.CheckerFunc(func(ctx context.Context) healthcheck.Check {
		check := healthcheck.Check{
			Name:        "ai",
			Status:      healthcheck.StatusHealthy,
			LastChecked: time.Now(),
		}
		if cfg.AI.APIKey == "" {
			check.Status = healthcheck.StatusDegraded
			check.Message = "completion endpoint credential not configured"
		}
		return check
	}))

	return hc
}

func registerServer(lc fx.Lifecycle, server *webserver.WebServer, cfg *config.Config, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting application",
				zap.String("name", cfg.App.Name),
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			go func() {
				if err := server.Start(); err != nil {
					log.Error("Web server stopped", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
			defer cancel()

			return server.Shutdown(shutdownCtx)
		},
	})
}
