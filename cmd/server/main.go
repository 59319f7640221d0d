package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sandsofduat/duat-server/internal/config"
	"github.com/sandsofduat/duat-server/internal/content"
	"github.com/sandsofduat/duat-server/internal/game"
	"github.com/sandsofduat/duat-server/internal/repository"
	"github.com/sandsofduat/duat-server/internal/server"
	"github.com/sandsofduat/duat-server/internal/session"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting duat server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Encounter reports are optional: without a database URL the server
	// runs fully in memory and only logs results.
	var reports repository.EncounterReportRepository
	if cfg.Database.URL != "" {
		db, dbErr := repository.NewDB(ctx, cfg.Database, logger)
		if dbErr != nil {
			logger.Fatal("failed to connect to database", zap.Error(dbErr))
		}
		defer db.Close()

		stats := db.Stats()
		logger.Info("database connection pool initialized",
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("idle_conns", stats.IdleConns()),
		)
		reports = repository.NewEncounterReportRepository(db)
	} else {
		logger.Info("database disabled; encounter reports will not be persisted")
	}

	catalog := loadCatalog(cfg.Content, logger)
	logger.Info("content catalog loaded",
		zap.Int("cards", len(catalog.Cards)),
		zap.Int("enemies", len(catalog.Enemies)),
	)

	opts := game.Options{
		SandCapacity:       cfg.Combat.SandCapacity,
		SandInterval:       cfg.Combat.SandInterval,
		PlayerStartingSand: cfg.Combat.PlayerStartingSand,
		EnemyStartingSand:  cfg.Combat.EnemyStartingSand,
		LowHealthThreshold: cfg.Combat.LowHealthThreshold,
		DefensiveBonus:     cfg.Combat.DefensiveBonus,
		AggressiveBonus:    cfg.Combat.AggressiveBonus,
	}

	sessionMgr := session.NewManager(catalog, opts, reports, logger.Named("session"))
	go sessionMgr.Run(ctx, cfg.Server.TickRate)
	logger.Info("session manager initialized",
		zap.Duration("tick_rate", cfg.Server.TickRate),
	)

	srv := server.New(cfg.Server, sessionMgr, logger.Named("server"))
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Run(ctx)
	}()

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			logger.Error("server error", zap.Error(err))
		}
	}

	logger.Info("shutting down gracefully...")
	cancel()

	logger.Info("duat server stopped")
}

// loadCatalog reads the external content directory, falling back to the
// compiled-in starter set when none is configured or present.
func loadCatalog(cfg config.ContentConfig, logger *zap.Logger) *content.Catalog {
	if cfg.Dir != "" {
		if _, err := os.Stat(cfg.Dir); err == nil {
			catalog, loadErr := content.Load(cfg.Dir)
			if loadErr != nil {
				logger.Fatal("failed to load content catalog",
					zap.String("dir", cfg.Dir),
					zap.Error(loadErr),
				)
			}
			return catalog
		}
	}
	logger.Info("using built-in starter content")
	return content.Starter()
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
