package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkarelin/sales-commission-service/internal/app/background"
	"github.com/mkarelin/sales-commission-service/internal/config"
	"github.com/mkarelin/sales-commission-service/internal/delivery/http/handlers"
	"github.com/mkarelin/sales-commission-service/internal/infrastructure/collaborator"
	"github.com/mkarelin/sales-commission-service/internal/infrastructure/kafka"
	"github.com/mkarelin/sales-commission-service/internal/infrastructure/logger"
	"github.com/mkarelin/sales-commission-service/internal/infrastructure/metrics"
	"github.com/mkarelin/sales-commission-service/internal/infrastructure/migrate"
	"github.com/mkarelin/sales-commission-service/internal/infrastructure/postgres"
	"github.com/mkarelin/sales-commission-service/internal/infrastructure/postgres/repository"
	orderusecase "github.com/mkarelin/sales-commission-service/internal/usecase/order"
	"github.com/mkarelin/sales-commission-service/internal/usecase/settlement"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	// Init database
	db := postgres.MustInitDB(cfg)
	if cfg.CommissionDB.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.CommissionDB.MigrationsPath); err != nil {
			log.Fatalf("failed to apply migrations: %v", err)
		}
	}

	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}

	orderEventsPublisher, err := kafka.NewKafkaPublisher(kafka.KafkaConfig{
		Brokers:    brokers,
		Topic:      cfg.KafkaService.OrderTopic,
		Username:   cfg.KafkaService.Username,
		Password:   cfg.KafkaService.Password,
		Mechanism:  cfg.KafkaService.Mechanism,
		TLSEnabled: cfg.KafkaService.TLSEnabled,
	})
	if err != nil {
		log.Fatalf("failed to init kafka order publisher: %v", err)
	}
	settlementEventsPublisher, err := kafka.NewKafkaPublisher(kafka.KafkaConfig{
		Brokers:    brokers,
		Topic:      cfg.KafkaService.SettlementTopic,
		Username:   cfg.KafkaService.Username,
		Password:   cfg.KafkaService.Password,
		Mechanism:  cfg.KafkaService.Mechanism,
		TLSEnabled: cfg.KafkaService.TLSEnabled,
	})
	if err != nil {
		log.Fatalf("failed to init kafka settlement publisher: %v", err)
	}
	eventPublisher := kafka.NewEventPublisher(orderEventsPublisher, settlementEventsPublisher)
	subscriber := kafka.NewDefaultKafkaSubscriber(brokers)

	// Init repositories
	orderRepo := repository.NewDefaultOrderRepository(db)
	settlementRepo := repository.NewDefaultSettlementRepository(db)

	// Init metrics
	commissionMetrics := metrics.NewCommissionMetrics()

	// Init collaborator clients
	documentClient := collaborator.NewHTTPDocumentClient(
		fmt.Sprintf("http://%s:%s", cfg.DocumentService.Host, cfg.DocumentService.Port))
	ledgerClient := collaborator.NewHTTPLedgerClient(
		fmt.Sprintf("http://%s:%s", cfg.LedgerService.Host, cfg.LedgerService.Port),
		time.Duration(cfg.LedgerService.TimeoutSeconds)*time.Second,
		cfg.LedgerService.MaxAttempts,
		time.Duration(cfg.LedgerService.BackoffBaseMs)*time.Millisecond,
		commissionMetrics,
	)

	// Init transition audit log
	auditLog := logger.NewPGTransitionLogger(db)

	// Init settlement usecase
	settlementUsecase, err := settlement.NewDefaultSettlementUsecase(
		settlementRepo,
		orderRepo,
		ledgerClient,
		eventPublisher,
		commissionMetrics,
		cfg.Settlement.AutoConfirm,
	)
	if err != nil {
		log.Fatalf("failed to init settlement usecase: %v", err)
	}

	// Init order usecase
	orderUsecase := orderusecase.NewDefaultOrderUsecase(
		orderRepo,
		documentClient,
		settlementUsecase,
		eventPublisher,
		auditLog,
		commissionMetrics,
		cfg.DefaultRules,
	)

	// HTTP API
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	orderHandler := handlers.NewOrderHandler(orderUsecase)
	orderHandler.RegisterRoutes(e)
	settlementHandler := handlers.NewSettlementHandler(settlementUsecase)
	settlementHandler.RegisterRoutes(e)

	// Metrics endpoint
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		addr := fmt.Sprintf("%s:%s", cfg.Metrics.Host, cfg.Metrics.Port)
		log.Printf("metrics server started on %s\n", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("metrics server stopped: %v", err)
		}
	}()

	// Watcher + reconciliation backstop
	tasks := background.NewBackgroundTasks(
		settlementUsecase,
		subscriber,
		cfg.KafkaService.FulfillmentTopic,
		cfg.KafkaService.ConsumerGroup,
		time.Duration(cfg.Settlement.ReconcileIntervalSeconds)*time.Second,
		cfg.Settlement.ReconcileBatchSize,
	)
	tasks.StartAll(context.Background())

	addr := fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
	log.Printf("commission service started on %s\n", addr)
	if err := e.Start(addr); err != nil {
		log.Fatalf("failed to serve: %v\n", err)
	}
}
