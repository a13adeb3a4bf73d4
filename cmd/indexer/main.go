package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/medical_shop/internal/search"
	"github.com/Skotchmaster/medical_shop/pkg/config"
	"github.com/Skotchmaster/medical_shop/pkg/events"
	"github.com/Skotchmaster/medical_shop/pkg/logging"
)

func main() {
	cfg := config.Load()
	cfg.MustRequire("ELASTIC_URL", "KAFKA_BROKERS")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName+"-indexer")
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, logger)

	esCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	es, err := search.NewClient(esCtx, search.Config{
		URL:      cfg.ElasticURL,
		Username: cfg.ElasticUser,
		Password: cfg.ElasticPassword,
		Index:    cfg.ProductIndex,
	})
	cancel()
	if err != nil {
		log.Fatalf("elasticsearch: %v", err)
	}

	if err := events.EnsureTopics(cfg.KafkaBrokers[0], events.TopicProduct); err != nil {
		logger.Warn("kafka_ensure_topics_error", "error", err)
	}

	reader := search.NewProductReader(cfg.KafkaBrokers, cfg.KafkaGroupID, events.TopicProduct)
	defer reader.Close()

	logger.Info("indexer started", "topic", events.TopicProduct, "group", cfg.KafkaGroupID, "index", cfg.ProductIndex)
	if err := search.Consume(ctx, reader, search.NewIndexer(es, cfg.ProductIndex)); err != nil {
		logger.Error("indexer stopped", "error", err)
		return
	}
	logger.Info("indexer stopped")
}
