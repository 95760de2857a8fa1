package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	"github.com/focusnest/webhook-service/internal/config"
	"github.com/focusnest/webhook-service/internal/httpapi"
	"github.com/focusnest/webhook-service/internal/metrics"
	sharedauth "github.com/focusnest/webhook-service/internal/shared/auth"
	"github.com/focusnest/webhook-service/internal/shared/logging"
	"github.com/focusnest/webhook-service/internal/shared/pubsub"
	sharedserver "github.com/focusnest/webhook-service/internal/shared/server"
	"github.com/focusnest/webhook-service/internal/user"
	"github.com/focusnest/webhook-service/internal/webhook"
)

const serviceName = "webhook-service"

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config error: %w", err))
	}

	logger := logging.NewLogger(serviceName, cfg.LogLevel)

	repo, closeRepo, err := newRepository(ctx, cfg)
	if err != nil {
		panic(fmt.Errorf("repository init error: %w", err))
	}
	defer closeRepo()

	publisher, closePublisher, err := newPublisher(ctx, cfg, logger)
	if err != nil {
		panic(fmt.Errorf("publisher init error: %w", err))
	}
	defer closePublisher()

	userService := user.NewService(repo, publisher, user.NewSystemClock(), logger)

	var recorder metrics.Recorder = metrics.Nop{}
	registry := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder = metrics.NewCollector(registry)
	}

	webhookHandler := webhook.NewHandler(webhook.Config{
		Secret:       cfg.Webhook.ClerkSecret,
		MaxBodyBytes: cfg.Webhook.MaxBodyBytes,
	}, userService, logger, recorder)
	if err := webhookHandler.Err(); err != nil {
		logger.Error("clerk webhook route will reject deliveries", slog.Any("error", err))
	}

	verifier, err := sharedauth.NewVerifier(sharedauth.Config{
		Mode:     cfg.Auth.Mode,
		JWKSURL:  cfg.Auth.JWKSURL,
		Audience: cfg.Auth.Audience,
		Issuer:   cfg.Auth.Issuer,
	})
	if err != nil {
		panic(fmt.Errorf("auth verifier error: %w", err))
	}

	router := sharedserver.NewRouter(serviceName, func(r chi.Router) {
		webhook.RegisterRoutes(r, webhookHandler)
		httpapi.RegisterRoutes(r, userService, verifier, logger)
		if cfg.Metrics.Enabled {
			r.Method(http.MethodGet, "/metrics", metrics.Handler(registry))
		}
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if err := sharedserver.Run(ctx, srv, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}

func newRepository(ctx context.Context, cfg config.Config) (user.Repository, func(), error) {
	switch cfg.DataStore {
	case config.DataStoreFirestore:
		if cfg.Firestore.EmulatorHost != "" {
			if err := os.Setenv("FIRESTORE_EMULATOR_HOST", cfg.Firestore.EmulatorHost); err != nil {
				return nil, nil, fmt.Errorf("set FIRESTORE_EMULATOR_HOST: %w", err)
			}
		}

		var opts []option.ClientOption
		if cfg.Firestore.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.Firestore.CredentialsFile))
		}

		client, err := firestore.NewClient(ctx, cfg.GCPProjectID, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("firestore client: %w", err)
		}
		return user.NewFirestoreRepository(client), func() { _ = client.Close() }, nil
	default:
		return user.NewMemoryRepository(), func() {}, nil
	}
}

func newPublisher(ctx context.Context, cfg config.Config, logger *slog.Logger) (pubsub.Publisher, func(), error) {
	switch cfg.Events.Publisher {
	case config.PublisherRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Events.RedisAddr,
			Password: cfg.Events.RedisPassword,
			DB:       cfg.Events.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.Events.RedisAddr, err)
		}
		return pubsub.NewRedisPublisher(client), func() { _ = client.Close() }, nil
	case config.PublisherLog:
		return pubsub.LogPublisher{Logger: logger}, func() {}, nil
	default:
		return pubsub.NoopPublisher{}, func() {}, nil
	}
}
