package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ecobazaar/internal/cart"
	"ecobazaar/internal/catalog"
	"ecobazaar/internal/config"
	"ecobazaar/internal/httpx"
	kafkax "ecobazaar/internal/kafka"
	"ecobazaar/internal/orders"
	"ecobazaar/internal/postgres"
	"ecobazaar/internal/recommend"
	"ecobazaar/internal/redisx"
	"ecobazaar/internal/report"
	"ecobazaar/internal/users"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PostgresMaxConn)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per lifecycle topic
	producers := &httpx.Producers{
		Created:        kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024),
		Delivered:      kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderDelivered, 1024),
		Cancelled:      kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCancelled, 1024),
		ReturnResolved: kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicReturnResolved, 1024),
	}
	all := []*kafkax.Producer{producers.Created, producers.Delivered, producers.Cancelled, producers.ReturnResolved}
	for _, p := range all {
		p.Start(ctx)
	}

	// Repos & services
	userRepo := &users.Repo{DB: db}
	catalogRepo := &catalog.Repo{DB: db}
	catalogSvc := &catalog.Service{Store: catalogRepo, Users: userRepo}
	cartRepo := &cart.Repo{DB: db}
	orderRepo := &orders.Repo{DB: db}
	engine := &recommend.Engine{Catalog: catalogRepo, Redis: rdb}
	aggregator := &report.Aggregator{Orders: orderRepo, Users: userRepo, Redis: rdb}

	// Router & handlers
	router := httpx.NewRouter()
	(&httpx.ProductsHandler{Service: catalogSvc, Repo: catalogRepo}).Register(router)
	(&httpx.CartHandler{Repo: cartRepo, Engine: engine}).Register(router)
	(&httpx.OrdersHandler{Repo: orderRepo, Producers: producers, Service: cfg.ServiceName}).Register(router)
	(&httpx.RecommendHandler{Engine: engine}).Register(router)
	(&httpx.ReportsHandler{Aggregator: aggregator, Users: userRepo, Redis: rdb}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	for _, p := range all {
		p.Close() // close inbox -> flush & close writer
	}
	cancel()
	for _, p := range all {
		p.WaitClosed()
	}
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.With().Str("service", "api").Logger()
}
