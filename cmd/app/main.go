package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aerodesk/flightbooking/config"
	"github.com/aerodesk/flightbooking/internal/bootstrap"
	"github.com/aerodesk/flightbooking/internal/cache"
	"github.com/aerodesk/flightbooking/internal/client"
	"github.com/aerodesk/flightbooking/internal/kafka"
	"github.com/aerodesk/flightbooking/internal/logger"
	"github.com/aerodesk/flightbooking/internal/repository"
	"github.com/aerodesk/flightbooking/internal/service/booking"
	"github.com/aerodesk/flightbooking/internal/service/inventory"
	"github.com/aerodesk/flightbooking/internal/service/ticket"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		zlog.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.SearchCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	scheduleRepo := repository.NewScheduleRepository(pool)
	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	inventorySvc := inventory.NewService(
		scheduleRepo,
		flightRepo,
		redisCache,
		time.Duration(cfg.Booking.SeatHoldTTLSeconds)*time.Second,
		zlog.Named("inventory"),
	)
	ticketSvc := ticket.NewTicketService(ticketRepo, zlog.Named("ticket"))

	// The orchestrator reaches the ledger in-process by default; "http"
	// mode points it at a separately deployed inventory service.
	var seatInventory booking.SeatInventory = inventorySvc
	if cfg.Inventory.Mode == "http" {
		seatInventory = client.NewInventoryClient(
			cfg.Inventory.BaseURL,
			time.Duration(cfg.Inventory.TimeoutSeconds)*time.Second,
		)
	}

	bookingSvc := booking.NewBookingService(
		bookingRepo,
		seatInventory,
		ticketSvc,
		producer,
		cfg.Kafka.BookingEventsTopic,
		zlog.Named("booking"),
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	if err := bootstrap.Run(ctx, cfg, zlog, inventorySvc, bookingSvc, ticketSvc); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
}
