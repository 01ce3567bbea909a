package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"max.com/bsquote/pkg/config"
	"max.com/bsquote/pkg/kafka"
	"max.com/bsquote/pkg/quote"
)

// 报价审计: 消费 Kafka / NATS 报价事件写入 MySQL
func main() {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.MySQLDSN == "" {
		log.Fatalf("%s is required", config.EnvMySQLDSN)
	}
	if len(cfg.KafkaBrokers) == 0 && cfg.NatsURL == "" {
		log.Fatalf("one of %s or %s is required", config.EnvKafkaBrokers, config.EnvNatsURL)
	}

	db, err := gorm.Open(mysql.Open(cfg.MySQLDSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Failed to connect MySQL: %v", err)
	}
	repo := quote.NewMySQLRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	audit := quote.NewAuditConsumer(repo)

	if len(cfg.KafkaBrokers) > 0 {
		consumerCfg := kafka.DefaultConsumerConfig(cfg.KafkaBrokers, cfg.KafkaGroup, []string{cfg.KafkaTopic})
		if err := audit.StartKafka(ctx, consumerCfg); err != nil {
			log.Fatalf("Failed to start Kafka consumer: %v", err)
		}
		log.Printf("✅ Kafka audit started: topic=%s group=%s", cfg.KafkaTopic, cfg.KafkaGroup)
	}
	if cfg.NatsURL != "" {
		if err := audit.StartNats(cfg.NatsURL); err != nil {
			log.Fatalf("Failed to subscribe NATS: %v", err)
		}
		log.Printf("✅ NATS audit subscribed: %s", quote.SubjectQuoteEvents)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("🛑 Shutting down...")
	if err := audit.Stop(); err != nil {
		log.Printf("[Audit] stop error: %v", err)
	}
}
