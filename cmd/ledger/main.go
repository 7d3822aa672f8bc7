package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mialabs/commerce-core/internal/commerce"
	"github.com/mialabs/commerce-core/internal/config"
	kafkax "github.com/mialabs/commerce-core/internal/kafka"
	"github.com/mialabs/commerce-core/internal/ledger"
	"github.com/mialabs/commerce-core/internal/postgres"
	"github.com/mialabs/commerce-core/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &ledger.Service{
		Store:       &commerce.Repo{DB: db},
		Dedup:       &redisx.Dedup{RDB: rdb, TTL: redisx.TTLDedup},
		ServiceName: cfg.ServiceName + "-ledger",
	}

	group := getenv("LEDGER_GROUP", "ledger-svc")
	workers := atoi(os.Getenv("LEDGER_WORKERS"), 4)
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, commerce.TopicOrderSettled, workers)

	go func() {
		log.Printf("ledger consumer started: group=%s topic=%s workers=%d", group, commerce.TopicOrderSettled, workers)
		if err := cons.Start(ctx, svc.HandleOrderSettled); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil || i <= 0 {
		return def
	}
	return i
}
