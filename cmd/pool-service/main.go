package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ride-pool/internal/carpool/feed"
	"ride-pool/internal/carpool/handlers"
	"ride-pool/internal/carpool/infrastructure/messaging"
	"ride-pool/internal/carpool/infrastructure/repository"
	"ride-pool/internal/carpool/service"
	"ride-pool/pkg/auth"
	"ride-pool/pkg/config"
	"ride-pool/pkg/db"
	"ride-pool/pkg/logger"
	"ride-pool/pkg/rabbitmq"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		cfg, _ = config.LoadConfig("")
	}

	// Initialize logger
	log := logger.NewLogger("pool-service")
	log.Info("service_starting", fmt.Sprintf("Pool Service starting on port %d", cfg.HTTP.Port))

	// Connect to database
	dbConn, err := db.NewConnection(cfg, log)
	if err != nil {
		log.Error("db_connect_failed", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Connect to RabbitMQ
	rabbit, err := rabbitmq.NewConnection(cfg, log)
	if err != nil {
		log.Error("rabbitmq_connect_failed", err)
		os.Exit(1)
	}
	defer rabbit.Close()

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, time.Duration(cfg.JWT.TokenHours)*time.Hour)

	// Repositories
	rideRepo := repository.NewPostgresRideRepository(dbConn)
	requestRepo := repository.NewPostgresRequestRepository(dbConn)
	messageRepo := repository.NewPostgresMessageRepository(dbConn)
	blockRepo := repository.NewPostgresBlockRepository(dbConn)

	// Messaging
	reportSink := messaging.NewAMQPReportSink(rabbit)
	messageEvents := messaging.NewAMQPMessageEvents(rabbit)

	// Feed pipeline
	broker := feed.NewBroker()
	policy := feed.NewPolicy()

	// Services
	directory := service.NewDirectory(rideRepo, log)
	lifecycle := service.NewLifecycle(rideRepo, requestRepo, log)
	blocks := service.NewBlocks(blockRepo, reportSink, log)
	chat := service.NewChat(rideRepo, messageRepo, reportSink, broker, messageEvents, log)
	projector := feed.NewProjector(messageRepo, blocks, policy, broker, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Message events from other instances feed the local broker
	consumer := messaging.NewMessageEventConsumer(rabbit, broker, log)
	go consumer.Run(ctx)

	// HTTP
	handler := handlers.New(directory, lifecycle, blocks, chat, projector, log)
	router := handlers.NewRouter(handler, jwtManager, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // feed websockets stay open indefinitely
	}

	go func() {
		log.Info("http_listening", fmt.Sprintf("Listening on %s", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http_server_failed", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("service_stopping", "Shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http_shutdown_failed", err)
	}
}
