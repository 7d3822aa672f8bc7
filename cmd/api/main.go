package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/mialabs/commerce-core/internal/commerce"
	"github.com/mialabs/commerce-core/internal/config"
	"github.com/mialabs/commerce-core/internal/httpx"
	kafkax "github.com/mialabs/commerce-core/internal/kafka"
	"github.com/mialabs/commerce-core/internal/paystack"
	"github.com/mialabs/commerce-core/internal/postgres"
	"github.com/mialabs/commerce-core/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("db schema: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	cache := &redisx.StatusCache{RDB: rdb, TTL: redisx.TTLStatusCache}

	// Kafka producers, one per topic
	created := kafkax.NewProducer(cfg.KafkaBrokers, commerce.TopicOrderCreated, 1024)
	created.Start(ctx)
	settled := kafkax.NewProducer(cfg.KafkaBrokers, commerce.TopicOrderSettled, 1024)
	settled.Start(ctx)

	repo := &commerce.Repo{DB: db}
	gateway := paystack.New(cfg.PaystackBaseURL, cfg.PaystackSecret, cfg.GatewayTimeout)

	router := httpx.NewRouter()

	oh := &httpx.OrdersHandler{
		Store:    repo,
		Producer: created,
		Cache:    cache,
		Validate: httpx.NewValidator(),
		Service:  cfg.ServiceName,
	}
	ah := &httpx.AnalyticsHandler{Store: repo}
	router.Group(func(r chi.Router) {
		r.Use(httpx.MerchantScope)
		oh.Register(r)
		ah.Register(r)
	})

	// The webhook authenticates by signature, not merchant identity.
	ph := &httpx.PaymentsHandler{
		Store:         repo,
		Gateway:       gateway,
		Producer:      settled,
		Cache:         cache,
		WebhookSecret: cfg.PaystackSecret,
		Service:       cfg.ServiceName,
	}
	ph.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	created.Close()
	settled.Close()
	cancel()
	created.WaitClosed()
	settled.WaitClosed()
}
