package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/quickly-estimate/cliparse"
	"github.com/danielhkuo/quickly-estimate/db"
	"github.com/danielhkuo/quickly-estimate/kv"
	"github.com/danielhkuo/quickly-estimate/middleware"
	"github.com/danielhkuo/quickly-estimate/notify"
	"github.com/danielhkuo/quickly-estimate/poker"
	"github.com/danielhkuo/quickly-estimate/router"
	"github.com/danielhkuo/quickly-estimate/store"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the session store
	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("session store unavailable", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer closeStore()
	slog.Info("Session store ready", "backend", cfg.StoreBackend, "ttl", cfg.SessionTTL)

	// Wire change notifications
	hub := notify.NewHub()
	opts := []poker.Option{
		poker.WithTTL(cfg.SessionTTL),
		poker.WithCreatorEnforcement(cfg.EnforceCreator),
	}
	switch cfg.NotifyBackend {
	case cliparse.BackendMemory:
		opts = append(opts, poker.WithPublisher(hub))
	case cliparse.BackendRedis:
		client, err := kv.Connect(ctx, cfg.RedisURL)
		if err != nil {
			slog.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		defer client.Close()

		broker := notify.NewRedisBroker(client, hub)
		go func() {
			if err := broker.Run(ctx, nil); err != nil {
				slog.Error("session update relay stopped", "error", err)
			}
		}()
		opts = append(opts, poker.WithPublisher(broker))
	}

	svc := poker.NewService(st, opts...)

	// Create router
	mux := router.NewRouter(svc, hub, cfg)

	// Create server
	server := http.Server{
		Handler: middleware.RequestID(middleware.CORS(mux)),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		cancel()
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

// openStore returns the configured backend and its close func.
func openStore(ctx context.Context, cfg cliparse.Config) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case cliparse.BackendSQL:
		sqlStore, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if cfg.SweepInterval > 0 {
			go sweep(ctx, sqlStore, cfg.SweepInterval)
		}
		return sqlStore, func() { sqlStore.Close() }, nil

	case cliparse.BackendRedis:
		kvStore, err := kv.Open(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return kvStore, func() { kvStore.Close() }, nil

	default:
		return store.NewMemory(), func() {}, nil
	}
}

// sweep deletes expired rows every interval until ctx is done.
func sweep(ctx context.Context, s *db.Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.DeleteExpired(ctx)
			if err != nil {
				slog.Warn("expired session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("expired sessions removed", "count", n)
			}
		}
	}
}
