package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/korrin/meago/internal/blaze"
	"github.com/korrin/meago/internal/config"
	"github.com/korrin/meago/internal/db"
	"github.com/korrin/meago/internal/game"
	"github.com/korrin/meago/internal/handlers"
	"github.com/korrin/meago/internal/missions"
	"github.com/korrin/meago/internal/token"
)

const ConfigPath = "config/meago.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Configure slog
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))
	log := slog.Default()

	slog.Info("meago server starting")

	// Load config
	cfgPath := ConfigPath
	if p := os.Getenv("MEAGO_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	slog.Info("config loaded", "bind", cfg.BindAddress, "port", cfg.Port)

	// Connect to database
	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()
	slog.Info("database connected")

	// Run migrations
	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// Token signing key
	tokens, err := token.Load(cfg.TokenKeyPath)
	if err != nil {
		return fmt.Errorf("loading token key: %w", err)
	}

	// Game registry + matchmaking
	games := game.NewRegistry(log)
	matchmaker := game.NewMatchmaker(games, cfg.MatchmakingFitScore, log)

	// Blaze router with every component handler
	router := blaze.NewRouter()
	handlers.Register(router, handlers.Deps{
		Pool:       database.Pool(),
		Users:      db.NewUserRepository(database.Pool()),
		Sessions:   blaze.NewSessionRegistry(),
		Tokens:     tokens,
		Games:      games,
		Matchmaker: matchmaker,
		Redirect: handlers.RedirectTarget{
			Host: cfg.RedirectHost,
			IP:   hostIPv4(cfg.RedirectHost),
			Port: uint16(cfg.RedirectPort),
		},
		Log: log,
	})

	server := blaze.NewServer(cfg.Addr(), router, blaze.SessionOptions{
		KeepAliveTimeout: cfg.KeepAliveTimeout,
		WriteTimeout:     cfg.WriteTimeout,
		SendQueueSize:    cfg.SendQueueSize,
	}, log)

	scheduler := missions.NewScheduler(database.Pool(), log)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting blaze server")
		if err := server.Run(gctx); err != nil {
			return fmt.Errorf("blaze server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("starting mission scheduler")
		if err := scheduler.Run(gctx); err != nil && gctx.Err() == nil {
			return fmt.Errorf("mission scheduler: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// hostIPv4 packs a dotted-quad host into the u32 form the redirector
// payload carries; non-IP hosts are resolved by name on the client side.
func hostIPv4(host string) uint32 {
	ip := net.ParseIP(host)
	if ip == nil {
		return 0
	}
	v4 := ip.To4()
	if v4 == nil {
		return 0
	}
	return binary.BigEndian.Uint32(v4)
}
