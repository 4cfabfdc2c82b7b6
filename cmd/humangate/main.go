package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/humangate/adapters/events"
	"github.com/layer-3/humangate/adapters/store"
	"github.com/layer-3/humangate/adapters/tokenizer"
	"github.com/layer-3/humangate/config"
	"github.com/layer-3/humangate/ports"
	"github.com/layer-3/humangate/service"
	httpapi "github.com/layer-3/humangate/transport/http"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "humangate: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	pflag.StringVar(&configPath, "config", "", "path to YAML config file")
	pflag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Environment)
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	signKey, err := loadSigningKey(cfg.SigningKeyFile)
	if err != nil {
		return err
	}
	if cfg.SigningKeyFile == "" {
		logger.Warn("no signing key configured, credentials will not survive a restart")
	}

	wmLogger := watermill.NewSlogLogger(logger)
	clk := clock.New()

	var (
		st        ports.Store
		publisher message.Publisher
		memStore  *store.MemoryStore
	)

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to reach Redis: %w", err)
		}

		publisher, err = redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: redisClient,
			},
			wmLogger,
		)
		if err != nil {
			return fmt.Errorf("failed to create Redis publisher: %w", err)
		}
		st = store.NewRedisStore(redisClient)
		logger.Info("using Redis store", "addr", opts.Addr)
	} else {
		memStore = store.NewMemoryStore()
		if cfg.SnapshotPath != "" {
			if err := memStore.LoadSnapshot(cfg.SnapshotPath); err != nil {
				return err
			}
			logger.Info("restored snapshot", "path", cfg.SnapshotPath)
		}
		publisher = gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		st = memStore
		logger.Info("using in-memory store")
	}
	defer publisher.Close()

	eventPub := events.NewWatermillPublisher(publisher, cfg.EventsTopicPrefix)
	tok := tokenizer.NewJWTTokenizer(signKey, clk)

	opts := []service.Option{
		service.WithClock(clk),
		service.WithLogger(logger),
		service.WithLocks(service.NewIdentityLocks()),
		service.WithSingleUseChallenges(cfg.SingleUseChallenges),
	}
	verification := service.NewVerificationService(st, tok, eventPub, opts...)
	posts := service.NewPostService(st, eventPub, opts...)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.SetupRouter(verification, posts, logger),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}

	if memStore != nil && cfg.SnapshotPath != "" {
		if err := memStore.SaveSnapshot(cfg.SnapshotPath); err != nil {
			return err
		}
		logger.Info("saved snapshot", "path", cfg.SnapshotPath)
	}

	return nil
}

func newLogger(env config.Environment) *slog.Logger {
	if env == config.Production {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// loadSigningKey reads a PEM encoded EC key, or generates one when path is empty
func loadSigningKey(path string) (*ecdsa.PrivateKey, error) {
	if path == "" {
		return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read signing key: %w", err)
	}
	key, err := jwt.ParseECPrivateKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signing key: %w", err)
	}
	if key.Curve != elliptic.P256() {
		return nil, errors.New("signing key must be on the P-256 curve")
	}
	return key, nil
}
