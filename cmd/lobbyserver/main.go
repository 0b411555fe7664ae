// Command lobbyserver is the executable entry point: it validates
// configuration, wires the registries and server harness, and serves
// WebSocket connections until signalled to stop.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/splkm97/lobbyserver/internal/config"
	"github.com/splkm97/lobbyserver/internal/roomreg"
	"github.com/splkm97/lobbyserver/internal/server"
	"github.com/splkm97/lobbyserver/internal/store"
	"github.com/splkm97/lobbyserver/internal/userreg"
)

func setupLogging(devMode bool) {
	level := slog.LevelInfo
	if devMode {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func main() {
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		// logging isn't configured yet if Load itself failed
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	setupLogging(cfg.DevMode)

	var backing store.UserStore
	if cfg.RedisEnabled {
		redisStore := store.NewRedisUserStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisStore.Open(context.Background()); err != nil {
			slog.Error("failed to connect to redis, falling back to memory store", "err", err)
			backing = store.NewMemoryStore()
		} else {
			slog.Info("connected to redis", "addr", cfg.RedisAddr)
			backing = redisStore
		}
	} else {
		backing = store.NewMemoryStore()
	}

	users := userreg.New(backing)
	rooms := roomreg.New()
	srv := server.New(cfg, users, rooms)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("lobby server starting", "addr", cfg.BindAddr)
	if err := srv.Run(ctx); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
	slog.Info("lobby server stopped")
}
