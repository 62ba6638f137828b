package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aerodesk/flightbooking/config"
	"github.com/aerodesk/flightbooking/internal/email"
	"github.com/aerodesk/flightbooking/internal/kafka"
	"github.com/aerodesk/flightbooking/internal/logger"
	"go.uber.org/zap"
)

// The worker consumes booking notification events and delivers emails. It
// runs separately from the API server so email delivery cannot slow down
// request handling.
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

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, zlog.Named("consumer"))
	defer consumer.Close()

	sender := email.NewSender(zlog.Named("email"))

	zlog.Info("notification worker started",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.NotificationsTopic),
	)

	err = consumer.Consume(ctx, func(ctx context.Context, event kafka.BookingEvent) error {
		return sender.Send(ctx, event)
	})
	if err != nil && ctx.Err() == nil {
		zlog.Fatal("consumer stopped", zap.Error(err))
	}
	zlog.Info("notification worker shut down")
}
