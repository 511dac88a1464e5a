package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"watercare/internal/config"
	"watercare/internal/logger"
	"watercare/internal/queue"
	"watercare/internal/repository"
	"watercare/internal/service"
)

func main() {
	// Load .env file (ignore error in production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootstrap := logger.New("production", "info")
		bootstrap.Fatal().Err(err).Msg("Failed to load config")
	}

	log := logger.New(cfg.Env, cfg.LogLevel).With().Str("component", "worker").Logger()

	var dispatches repository.DispatchRepository
	if cfg.HasDatabase() {
		db, err := sql.Open("postgres", cfg.GetDatabaseDSN())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open database")
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("Failed to ping database")
		}
		dispatches = repository.NewDispatchRepository(db)
		log.Info().Msg("Connected to database, dispatch log enabled")
	}

	delivery, err := buildDelivery(cfg, dispatches, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure delivery")
	}

	conn, err := queue.NewConnection(cfg.GetRabbitMQURL(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
	}
	defer conn.Close()

	consumer, err := queue.NewConsumer(conn, cfg.Notify.QueueName, delivery.Handle, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create consumer")
	}

	if err := consumer.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start consumer")
	}
	log.Info().
		Str("queue", cfg.Notify.QueueName).
		Str("delivery", cfg.Notify.WorkerDelivery).
		Msg("Worker started")

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("Shutting down gracefully...")
	consumer.Stop()
	log.Info().Msg("Worker stopped")
}

// buildDelivery selects the delivery path named by WORKER_DELIVERY
func buildDelivery(cfg *config.Config, dispatches repository.DispatchRepository, log zerolog.Logger) (*service.DeliveryService, error) {
	if cfg.Notify.WorkerDelivery == config.NotifyModeTwilio {
		templates, err := service.NewTemplateService(cfg.Notify.Template)
		if err != nil {
			return nil, err
		}
		sender := repository.NewTwilioGateway(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.WhatsAppNumber)
		dispatcher := service.NewTwilioDispatcher(sender, templates, cfg.Twilio.AdminNumber, log)
		return service.NewTwilioDelivery(dispatcher, dispatches, log), nil
	}

	client, err := repository.NewAPIClient(cfg.API.BaseURL, cfg.API.Timeout)
	if err != nil {
		return nil, err
	}
	return service.NewAPIDelivery(repository.NewNotificationGateway(client), dispatches, log), nil
}
