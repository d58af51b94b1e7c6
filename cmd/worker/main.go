package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ecobazaar/internal/config"
	kafkax "ecobazaar/internal/kafka"
	"ecobazaar/internal/orders"
	"ecobazaar/internal/redisx"
	"ecobazaar/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &worker.Service{
		Redis:       rdb,
		ServiceName: cfg.ServiceName,
	}

	// One consumer per topic, sharing the group id.
	delivered := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.ConsumerGroup, orders.TopicOrderDelivered, cfg.ConsumerWorkers)
	returns := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.ConsumerGroup, orders.TopicReturnResolved, cfg.ConsumerWorkers)

	go func() {
		log.Info().Str("group", cfg.ConsumerGroup).Str("topic", orders.TopicOrderDelivered).Msg("consumer started")
		if err := delivered.Start(ctx, svc.HandleOrderDelivered); err != nil {
			log.Error().Err(err).Msg("delivered consumer exit")
			cancel()
		}
	}()
	go func() {
		log.Info().Str("group", cfg.ConsumerGroup).Str("topic", orders.TopicReturnResolved).Msg("consumer started")
		if err := returns.Start(ctx, svc.HandleReturnResolved); err != nil {
			log.Error().Err(err).Msg("returns consumer exit")
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		log.Info().Msg("shutting down consumers...")
	case <-ctx.Done():
	}
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.With().Str("service", "worker").Logger()
}
