package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"fieldops/internal/bot"
	"fieldops/internal/config"
	"fieldops/internal/database"
	"fieldops/internal/dialog"
	"fieldops/internal/ledger"
	"fieldops/internal/logger"
	"fieldops/internal/repository"
	"fieldops/internal/service"
	"fieldops/internal/state"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "fieldops")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting fieldops bot")

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.EnsureSchema(db); err != nil {
		log.Fatal("Failed to ensure schema", zap.Error(err))
	}

	users := repository.NewUserRepository(db, log)
	workTypes := repository.NewWorkTypeRepository(db, log)
	settings := repository.NewSettingRepository(db, log)
	sessions := repository.NewSessionRepository(db, log)
	reports := repository.NewReportRepository(db, log)
	problems := repository.NewProblemRepository(db, log)

	if err := workTypes.SeedDefaults(); err != nil {
		log.Fatal("Failed to seed work types", zap.Error(err))
	}
	if err := settings.SeedDefaults(); err != nil {
		log.Fatal("Failed to seed settings", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	dialogs := dialog.NewStore(state.NewRedisKVStore(redisClient))

	client := bot.NewClient(cfg.Telegram.APIBaseURL, cfg.Telegram.Token, cfg.Telegram.PollTimeout, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sheets service.Ledger
	if cfg.Sheets.Enabled {
		api := ledger.NewSheetsClient(cfg.Sheets.APIBaseURL, cfg.Sheets.SpreadsheetID, cfg.Sheets.AccessToken, log)
		projector := ledger.NewProjector(api, ledger.Tabs{
			Reports:  cfg.Sheets.ReportsSheet,
			Problems: cfg.Sheets.ProblemsSheet,
			Edits:    cfg.Sheets.EditsSheet,
			Statuses: cfg.Sheets.StatusSheet,
		}, log)
		if err := projector.EnsureSheets(ctx); err != nil {
			log.Fatal("Failed to prepare spreadsheet", zap.Error(err))
		}
		sheets = projector
		log.Info("Spreadsheet ledger enabled", zap.String("spreadsheet_id", cfg.Sheets.SpreadsheetID))
	} else {
		log.Info("Spreadsheet ledger disabled")
	}

	svc := service.New(service.Deps{
		Users:     users,
		WorkTypes: workTypes,
		Settings:  settings,
		Sessions:  sessions,
		Reports:   reports,
		Problems:  problems,
		Dialogs:   dialogs,
		Gateway:   client,
		Ledger:    sheets,
		AdminIDs:  cfg.AdminIDs,
		Logger:    log,
	})

	poller := bot.NewPoller(client, svc, log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	poller.Run(ctx)

	log.Info("Service stopped")
}
