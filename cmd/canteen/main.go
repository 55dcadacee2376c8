package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sokoide/workshop/software/canteen/pkg/config"
	"github.com/sokoide/workshop/software/canteen/pkg/domain"
	"github.com/sokoide/workshop/software/canteen/pkg/infra/clock"
	"github.com/sokoide/workshop/software/canteen/pkg/infra/httpapi"
	"github.com/sokoide/workshop/software/canteen/pkg/infra/kafka"
	"github.com/sokoide/workshop/software/canteen/pkg/infra/logging"
	"github.com/sokoide/workshop/software/canteen/pkg/infra/memory"
	"github.com/sokoide/workshop/software/canteen/pkg/infra/metrics"
	"github.com/sokoide/workshop/software/canteen/pkg/infra/rabbitmq"
	redisinfra "github.com/sokoide/workshop/software/canteen/pkg/infra/redis"
	"github.com/sokoide/workshop/software/canteen/pkg/infra/util"
	"github.com/sokoide/workshop/software/canteen/pkg/usecase"
)

func main() {
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

	if err := run(cfg, logger); err != nil {
		logger.Fatal("canteen stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	catalog, sales, closeCatalog, err := openCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCatalog()

	sink, closeSink, err := openEvents(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	bestsellers := usecase.NewBestsellers(sales, catalog)

	sys := clock.System{}
	session := usecase.NewSession(usecase.SessionDeps{
		Catalog:   catalog,
		History:   memory.NewHistory(),
		Clock:     sys,
		Scheduler: sys,
		IDs:       &util.UUIDGenerator{},
		Publisher: usecase.Publishers{metrics.NewOrderMetrics(reg), bestsellers, sink},
		Logger:    logger.Named("session"),
		Window:    cfg.ReservationWindow,
	})
	defer session.Close()

	h := httpapi.New(session, logger.Named("http"), metrics.NewHTTPMetrics(reg)).WithBestsellers(bestsellers)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h.Routes(reg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("port", cfg.Port),
			zap.String("catalog", cfg.CatalogBackend),
			zap.String("events", cfg.EventsBackend),
			zap.Duration("window", cfg.ReservationWindow))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exited properly")
	return nil
}

func openCatalog(ctx context.Context, cfg *config.Config, logger *zap.Logger) (domain.CatalogStore, domain.SalesRanking, func(), error) {
	if cfg.CatalogBackend != config.CatalogRedis {
		return memory.NewCatalog(domain.DefaultMenu()), memory.NewSales(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, nil, fmt.Errorf("could not reach redis at %s: %w", cfg.RedisAddr, err)
	}
	repo := redisinfra.NewRedisCatalogRepository(client, cfg.RedisPrefix)
	if err := repo.Seed(ctx, domain.DefaultMenu()); err != nil {
		client.Close()
		return nil, nil, nil, err
	}
	logger.Info("redis catalog ready", zap.String("addr", cfg.RedisAddr), zap.String("prefix", cfg.RedisPrefix))
	return repo, redisinfra.NewRedisSalesRepository(client, cfg.RedisPrefix), func() { client.Close() }, nil
}

func openEvents(cfg *config.Config, logger *zap.Logger) (domain.OrderEventPublisher, func(), error) {
	switch cfg.EventsBackend {
	case config.EventsRabbitMQ:
		conn, ch, err := rabbitmq.SetupConn(cfg.AMQPURL, cfg.AMQPAttempts, logger)
		if err != nil {
			return nil, nil, err
		}
		return rabbitmq.NewPublisher(ch), func() {
			ch.Close()
			conn.Close()
		}, nil
	case config.EventsKafka:
		brokers := kafka.ParseBrokers(cfg.KafkaBrokers)
		if len(brokers) == 0 {
			return nil, nil, errors.New("KAFKA_BROKERS is empty")
		}
		pub := kafka.NewPublisher(brokers, cfg.KafkaTopic)
		return pub, func() {
			if err := pub.Close(); err != nil {
				logger.Warn("could not close kafka writer", zap.Error(err))
			}
		}, nil
	default:
		return nil, func() {}, nil
	}
}
