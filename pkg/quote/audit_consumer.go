// 文件: pkg/quote/audit_consumer.go
// 报价审计消费者 - 从 Kafka / NATS 读取报价事件写入仓储
// 重复投递按 QuoteID 去重，两个通道同时开启也只落一条

package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"max.com/bsquote/pkg/kafka"
	"max.com/bsquote/pkg/nats"
	"max.com/bsquote/pkg/options"
)

type AuditConsumer struct {
	repo       Repository
	consumer   *kafka.Consumer
	subscriber *nats.Subscriber
	timeout    time.Duration
}

// NewAuditConsumer 创建审计消费者，再按需启动 Kafka / NATS 通道
func NewAuditConsumer(repo Repository) *AuditConsumer {
	return &AuditConsumer{repo: repo, timeout: 5 * time.Second}
}

// StartKafka 以消费组方式读取报价事件
func (c *AuditConsumer) StartKafka(ctx context.Context, cfg kafka.ConsumerConfig) error {
	consumer, err := kafka.NewConsumer(cfg, c.HandleMessage)
	if err != nil {
		return err
	}
	c.consumer = consumer
	consumer.Start(ctx)
	return nil
}

// StartNats 订阅 quote.events 广播
func (c *AuditConsumer) StartNats(url string) error {
	subscriber, err := nats.NewSubscriber(url)
	if err != nil {
		return err
	}
	if err := subscriber.Subscribe(SubjectQuoteEvents, c.HandleEvent); err != nil {
		subscriber.Close()
		return err
	}
	c.subscriber = subscriber
	return subscriber.Flush()
}

func (c *AuditConsumer) Stop() error {
	var errs []error
	if c.consumer != nil {
		errs = append(errs, c.consumer.Stop())
	}
	if c.subscriber != nil {
		errs = append(errs, c.subscriber.Close())
	}
	return errors.Join(errs...)
}

// HandleEvent NATS 回调
func (c *AuditConsumer) HandleEvent(_ string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	return c.HandleMessage(ctx, nil, data)
}

// HandleMessage 处理一条报价事件
func (c *AuditConsumer) HandleMessage(ctx context.Context, _, value []byte) error {
	var ev Event
	if err := json.Unmarshal(value, &ev); err != nil {
		return fmt.Errorf("unmarshal quote event: %w", err)
	}
	if ev.Record == nil || ev.Record.QuoteID == 0 {
		return errors.New("quote event without record")
	}
	// 输入无法定价的事件不入库
	if _, err := options.Evaluate(ev.Record.Request()); err != nil {
		return fmt.Errorf("quote %d: %w", ev.Record.QuoteID, err)
	}

	rec := *ev.Record
	rec.ID = 0 // 主键由目标库分配
	err := c.repo.Create(ctx, &rec)
	if errors.Is(err, ErrDuplicate) {
		log.Printf("[Audit] duplicate quote %d ignored", rec.QuoteID)
		return nil
	}
	return err
}
