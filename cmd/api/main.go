package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"watercare/internal/config"
	"watercare/internal/handler"
	"watercare/internal/logger"
	"watercare/internal/queue"
	"watercare/internal/repository"
	"watercare/internal/service"
	"watercare/internal/store"
)

const version = "1.0.0"

func main() {
	// Load .env file (ignore error in production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Logger level is unknown until config loads
		bootstrap := logger.New("production", "info")
		bootstrap.Fatal().Err(err).Msg("Failed to load config")
	}

	log := logger.New(cfg.Env, cfg.LogLevel)

	client, err := repository.NewAPIClient(cfg.API.BaseURL, cfg.API.Timeout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create API client")
	}
	repo := repository.NewWaterTestRepository(client)

	records := store.NewRecordStore(repo, log)
	initCtx, cancel := context.WithTimeout(context.Background(), cfg.API.Timeout)
	if err := records.Refresh(initCtx); err != nil {
		log.Warn().Err(err).Msg("Initial record load failed, serving empty store")
	} else {
		log.Info().Int("records", records.Len()).Msg("Records loaded")
	}
	cancel()

	if err := records.StartAutoRefresh(cfg.Ledger.AutoRefreshSchedule, cfg.API.Timeout); err != nil {
		log.Fatal().Err(err).Msg("Invalid AUTO_REFRESH_SCHEDULE")
	}
	defer records.Stop()

	var queuePinger, dbPinger service.Pinger

	dispatcher, closeDispatcher := buildDispatcher(cfg, client, log)
	defer closeDispatcher()
	if cfg.Notify.Mode == config.NotifyModeQueue {
		url := cfg.GetRabbitMQURL()
		queuePinger = service.PingerFunc(func(ctx context.Context) error { return queue.Ping(url) })
	}

	handlers := handler.Handlers{}

	if cfg.HasDatabase() {
		db, err := sql.Open("postgres", cfg.GetDatabaseDSN())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open database")
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			log.Warn().Err(err).Msg("Dispatch log database unreachable")
		} else {
			log.Info().Msg("Connected to database")
		}

		history := service.NewNotificationHistory(repository.NewDispatchRepository(db))
		handlers.Notifications = handler.NewNotificationHandler(history, log)
		dbPinger = service.PingerFunc(db.PingContext)
	}

	loc := cfg.Location()
	dashboard := service.NewDashboardService(records, loc, log)
	ledger := service.NewLedgerService(repo, records, cfg.Ledger.RefreshPolicy, loc, log)
	intake := service.NewIntakeService(repo, records, dispatcher, log)
	health := service.NewHealthService(repo, queuePinger, dbPinger, records, version)

	handlers.Health = handler.NewHealthHandler(health)
	handlers.Customers = handler.NewCustomerHandler(dashboard, ledger, records, log)
	handlers.Entries = handler.NewEntryHandler(intake, log)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler.NewRouter(handlers, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().
			Str("port", cfg.Server.Port).
			Str("api_url", cfg.API.BaseURL).
			Str("notify_mode", cfg.Notify.Mode).
			Str("refresh_policy", cfg.Ledger.RefreshPolicy).
			Msg("API server starting")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("Shutting down gracefully...")

	ctx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	log.Info().Msg("API server stopped")
}

// buildDispatcher selects the notification path named by NOTIFY_MODE
func buildDispatcher(cfg *config.Config, client *repository.APIClient, log zerolog.Logger) (service.Dispatcher, func()) {
	switch cfg.Notify.Mode {
	case config.NotifyModeQueue:
		conn, err := queue.NewConnection(cfg.GetRabbitMQURL(), log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
		}
		publisher, err := queue.NewPublisher(conn, cfg.Notify.QueueName)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create publisher")
		}
		log.Info().Str("queue", cfg.Notify.QueueName).Msg("Notifications will be queued")
		return service.NewQueueDispatcher(publisher), func() { conn.Close() }

	case config.NotifyModeTwilio:
		dispatcher, err := newTwilioDispatcher(cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to configure Twilio delivery")
		}
		log.Info().Msg("Notifications will be sent through Twilio")
		return dispatcher, func() {}

	default:
		return service.NewAPIDispatcher(repository.NewNotificationGateway(client)), func() {}
	}
}

func newTwilioDispatcher(cfg *config.Config, log zerolog.Logger) (*service.TwilioDispatcher, error) {
	templates, err := service.NewTemplateService(cfg.Notify.Template)
	if err != nil {
		return nil, err
	}
	sender := repository.NewTwilioGateway(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.WhatsAppNumber)
	return service.NewTwilioDispatcher(sender, templates, cfg.Twilio.AdminNumber, log), nil
}
