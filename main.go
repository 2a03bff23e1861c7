package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/joho/godotenv"

	"defect-classify-pipeline/config"
	"defect-classify-pipeline/database"
	"defect-classify-pipeline/handlers"
	"defect-classify-pipeline/metrics"
	"defect-classify-pipeline/rabbitmq"
	"defect-classify-pipeline/service"
)

func main() {
	// Load .env file if present (ignore error in production).
	_ = godotenv.Load()

	cfg := config.Load()
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	metrics.Register()

	log.Info("starting defect classify pipeline service...")

	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if err := db.CreateTables(); err != nil {
		log.WithError(err).Fatal("failed to create tables")
	}

	svc := service.New(cfg, db)

	scheduler, err := svc.StartBackfillScheduler()
	if err != nil {
		log.WithError(err).Fatal("invalid backfill schedule")
	}
	defer scheduler.Stop()

	var subscriber *rabbitmq.Subscriber
	if cfg.RabbitMQEnabled {
		subscriber = rabbitmq.NewSubscriber(cfg, svc)
		go subscriber.Start()
		defer subscriber.Stop()
	} else {
		log.Info("rabbitmq subscriber disabled")
	}

	router := handlers.NewHandlers(db, svc).SetupRouter()
	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := router.Run(":" + cfg.Port); err != nil {
			log.WithError(err).Fatal("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down defect classify pipeline service")
}
