package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"max.com/bsquote/pkg/config"
	"max.com/bsquote/pkg/httpapi"
	"max.com/bsquote/pkg/kafka"
	"max.com/bsquote/pkg/nats"
	"max.com/bsquote/pkg/quote"
)

// =============================================================================
// 组件装配
// =============================================================================

// buildRepository MySQL (可选 Redis 缓存)，未配置则使用内存仓储
func buildRepository(cfg config.Config) (quote.Repository, func(), error) {
	if cfg.MySQLDSN == "" {
		log.Println("[Init] MySQL not configured, using memory repository")
		return quote.NewMemoryRepository(), func() {}, nil
	}

	db, err := gorm.Open(mysql.Open(cfg.MySQLDSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, nil, err
	}
	mysqlRepo := quote.NewMySQLRepository(db)
	if err := mysqlRepo.AutoMigrate(); err != nil {
		return nil, nil, err
	}
	log.Println("✅ MySQL repository ready")

	if cfg.RedisAddr == "" {
		return mysqlRepo, func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, nil, err
	}
	log.Println("✅ Redis cache ready")
	return quote.NewCachedRepository(mysqlRepo, rdb, cfg.CacheTTL), func() { rdb.Close() }, nil
}

// buildPublisher Kafka + NATS 广播，均未配置则不发布
func buildPublisher(cfg config.Config) (quote.EventPublisher, func(), error) {
	var pubs quote.MultiPublisher
	var closers []func()
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(kafka.DefaultProducerConfig(cfg.KafkaBrokers))
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() {
			producer.Close()
			stats := producer.Stats()
			log.Printf("[Kafka] producer closed: sent=%d errors=%d", stats.SentCount, stats.ErrorCount)
		})
		pubs = append(pubs, quote.NewKafkaEventPublisher(producer, cfg.KafkaTopic))
		log.Printf("✅ Kafka publisher ready: topic=%s", cfg.KafkaTopic)
	}

	if cfg.NatsURL != "" {
		publisher, err := nats.NewPublisher(cfg.NatsURL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, publisher.Close)
		pubs = append(pubs, quote.NewNatsEventPublisher(publisher))
		log.Println("✅ NATS publisher ready")
	}

	if len(pubs) == 0 {
		return quote.NopPublisher{}, cleanup, nil
	}
	return pubs, cleanup, nil
}

// =============================================================================
// 主程序
// =============================================================================

func main() {
	log.SetFlags(log.Ltime | log.Lmicroseconds)
	log.Println("🚀 Starting option quote service...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := quote.InitSnowflake(cfg.NodeID); err != nil {
		log.Fatalf("Failed to init snowflake: %v", err)
	}

	// 1. 仓储
	repo, closeRepo, err := buildRepository(cfg)
	if err != nil {
		log.Fatalf("Failed to init repository: %v", err)
	}
	defer closeRepo()

	// 2. 事件发布
	publisher, closePub, err := buildPublisher(cfg)
	if err != nil {
		log.Fatalf("Failed to init publisher: %v", err)
	}
	defer closePub()

	service := quote.NewService(repo, publisher)

	// 3. NATS 请求/应答
	if cfg.NatsURL != "" {
		handler, err := quote.NewNatsHandler(service, cfg.NatsURL)
		if err != nil {
			log.Fatalf("Failed to connect NATS handler: %v", err)
		}
		if err := handler.Start(); err != nil {
			log.Fatalf("Failed to start NATS handler: %v", err)
		}
		defer handler.Stop()
		log.Printf("✅ NATS handler serving %s", quote.SubjectQuoteRequest)
	}

	// 4. HTTP
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(httpapi.NewHandler(service)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("✅ HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// 等待信号
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[HTTP] shutdown error: %v", err)
	}
}
