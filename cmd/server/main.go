package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/meletis/driftguard/internal/clientdata"
	"github.com/meletis/driftguard/internal/clients/coingecko"
	"github.com/meletis/driftguard/internal/clients/recall"
	"github.com/meletis/driftguard/internal/config"
	"github.com/meletis/driftguard/internal/database"
	"github.com/meletis/driftguard/internal/modules/allocation"
	"github.com/meletis/driftguard/internal/modules/portfolio"
	"github.com/meletis/driftguard/internal/modules/rebalancing"
	"github.com/meletis/driftguard/internal/modules/risk"
	"github.com/meletis/driftguard/internal/modules/trading"
	"github.com/meletis/driftguard/internal/modules/universe"
	"github.com/meletis/driftguard/internal/scheduler"
	"github.com/meletis/driftguard/internal/server"
	"github.com/meletis/driftguard/pkg/logger"
)

func main() {
	// Load configuration first so the logger honors LOG_LEVEL
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{Level: "info", Pretty: true})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting Driftguard")

	// Open databases. Each concern gets its own file and durability profile.
	configDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "config.db"),
		Profile: database.ProfileStandard,
		Name:    "config",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open config database")
	}
	defer configDB.Close()

	ledgerDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "ledger.db"),
		Profile: database.ProfileLedger,
		Name:    "ledger",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger database")
	}
	defer ledgerDB.Close()

	riskDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "risk.db"),
		Profile: database.ProfileStandard,
		Name:    "risk",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open risk database")
	}
	defer riskDB.Close()

	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	for _, db := range []*database.DB{configDB, ledgerDB, riskDB, cacheDB} {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("db", db.Name()).Msg("Failed to run migrations")
		}
	}

	// Repositories
	allocationRepo := allocation.NewRepository(configDB.Conn(), log)
	tradeRepo := trading.NewTradeRepository(ledgerDB.Conn(), log)
	riskRepo := risk.NewRepository(riskDB.Conn(), log)
	cacheRepo := clientdata.NewRepository(cacheDB.Conn())

	// Risk state survives restarts: cooldowns and daily loss caps are
	// replayed from the risk database.
	riskState, err := riskRepo.RestoreState()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to restore risk state")
	}

	// Domain services
	registry := universe.New()
	riskEngine := risk.NewEngine(cfg.StopLoss, riskState, log)
	builder := rebalancing.NewBuilder(registry, riskEngine, log)

	// External clients
	marketData := coingecko.NewClient(cfg.CoinGeckoAPIKey, registry, cacheRepo, log)
	venue := recall.NewClient(cfg.RecallAPIURL, cfg.RecallAPIKey, log)

	tradingService := trading.NewService(venue, registry, tradeRepo, log)
	rebalancingService := rebalancing.NewService(builder, allocationRepo, marketData, venue, tradingService, log)
	portfolioService := portfolio.NewService(registry, riskEngine, log)

	// Scheduler
	sched := scheduler.New(log)
	rebalanceJob := scheduler.NewRebalanceCycleJob(rebalancingService, log)
	if err := sched.AddJob(cfg.RebalanceSchedule, rebalanceJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register rebalance job")
	}
	// Daily run on top of the recurring cadence; the job skips if one is
	// already in flight.
	if err := sched.AddJob(cfg.DailySchedule, rebalanceJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register daily rebalance job")
	}
	maintenanceJob := scheduler.NewMaintenanceJob(cacheRepo, riskRepo, log)
	if err := sched.AddJob(cfg.MaintenanceSchedule, maintenanceJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register maintenance job")
	}
	sched.Start()
	defer sched.Stop()

	// HTTP server
	srv := server.New(server.Config{
		Port:        cfg.Port,
		Log:         log,
		DevMode:     cfg.DevMode,
		Rebalancing: rebalancingService,
		Portfolio:   portfolioService,
		Allocation:  allocationRepo,
		Trades:      tradeRepo,
		RiskState:   riskState,
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
