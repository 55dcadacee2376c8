package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/sokoide/workshop/software/canteen/pkg/config"
	"github.com/sokoide/workshop/software/canteen/pkg/infra/logging"
	"github.com/sokoide/workshop/software/canteen/pkg/infra/rabbitmq"
	"github.com/sokoide/workshop/software/canteen/pkg/usecase"
)

func main() {
	routingKey := flag.String("key", "order.#", "routing key to bind, e.g. order.expired")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	conn, ch, err := rabbitmq.SetupConn(cfg.AMQPURL, cfg.AMQPAttempts, logger)
	if err != nil {
		logger.Fatal("failed to setup RabbitMQ", zap.Error(err))
	}
	defer conn.Close()
	defer ch.Close()

	obs := usecase.NewOrderObserver(rabbitmq.NewSubscriber(ch, logger), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("order logger starting", zap.String("key", *routingKey))
	if err := obs.LogEvents(ctx, *routingKey); err != nil {
		logger.Fatal("observer error", zap.Error(err))
	}

	<-ctx.Done()
	logger.Info("order logger stopped")
}
