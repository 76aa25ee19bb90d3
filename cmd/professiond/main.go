package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/emberforge/professions/internal/config"
	"github.com/emberforge/professions/internal/data"
	"github.com/emberforge/professions/internal/db"
	"github.com/emberforge/professions/internal/game/progression"
	"github.com/emberforge/professions/internal/model"
)

const ConfigPath = "config/professions.yaml"

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

	if err := run(ctx); err != nil && err != context.Canceled {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("PROFESSIONS_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadProgression(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("professions daemon starting", "log_level", cfg.LogLevel)

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

	// Level curve: config override or built-in table
	var curve model.LevelCurve
	if len(cfg.CurveThresholds) > 0 {
		curve = model.NewTableCurve(cfg.CurveThresholds)
		slog.Info("using config curve", "levels", len(cfg.CurveThresholds)-1)
	} else {
		curve = data.DefaultCurve()
		slog.Info("using built-in curve", "maxLevel", data.MaxProfessionLevel)
	}

	coord := progression.NewCoordinator(progression.Settings{
		PenaltyBase:                cfg.Penalty.Base,
		PenaltyProgressiveIncrease: cfg.Penalty.ProgressiveIncrease,
		PenaltyMax:                 cfg.Penalty.Max,
		MercyReduction:             cfg.Penalty.MercyReduction,
		MercyThreshold:             cfg.Penalty.MercyThreshold,
		DecayRatePerHour:           cfg.DecayRatePerHour,
	}, curve, &logListener{})

	repo := db.NewProgressionRepository(database.Pool())
	sessions := progression.NewSessionManager(coord, repo)
	_ = sessions // handed to the hosting event layer alongside coord

	g, gctx := errgroup.WithContext(ctx)

	decay := progression.NewDecayLoop(coord, cfg.DecayTickInterval())
	g.Go(func() error {
		if err := decay.Run(gctx); err != nil {
			return fmt.Errorf("decay loop: %w", err)
		}
		return nil
	})

	slog.Info("professions daemon started", "decay_tick", cfg.DecayTickInterval())
	return g.Wait()
}

// logListener reports level-ups to the log. The hosting game server replaces
// it with a HUD/chat notifier.
type logListener struct{}

func (logListener) OnLevelUp(playerID int64, prof model.Profession, oldLevel, newLevel int32) {
	slog.Info("level up",
		"playerID", playerID,
		"profession", prof,
		"oldLevel", oldLevel,
		"newLevel", newLevel)
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
