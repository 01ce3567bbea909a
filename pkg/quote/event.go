// 文件: pkg/quote/event.go
// 报价事件: Kafka 审计流 / NATS 广播

package quote

import (
	"encoding/json"
	"log"

	"max.com/bsquote/pkg/kafka"
	"max.com/bsquote/pkg/nats"
)

// NATS 主题
const (
	SubjectQuoteEvents  = "quote.events"
	SubjectQuoteRequest = "quote.request"
	QueueQuoteService   = "quote-service"
)

// Event 报价完成事件，直接携带完整记录，消费者可以原样落库
type Event struct {
	Record *Record `json:"record"`
}

// EventPublisher 事件发布接口
type EventPublisher interface {
	PublishQuote(ev *Event) error
}

// =============================================================================
// Kafka
// =============================================================================

// kafkaMessage 适配 kafka.Message
type kafkaMessage struct {
	topic string
	ev    *Event
}

func (m kafkaMessage) Topic() string          { return m.topic }
func (m kafkaMessage) Key() string            { return string(m.ev.Record.Kind) }
func (m kafkaMessage) Value() ([]byte, error) { return json.Marshal(m.ev) }

// KafkaEventPublisher Kafka 事件发布器
type KafkaEventPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaEventPublisher(producer *kafka.Producer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

func (p *KafkaEventPublisher) PublishQuote(ev *Event) error {
	return p.producer.Send(kafkaMessage{topic: p.topic, ev: ev})
}

// =============================================================================
// NATS (轻量级替代 Kafka)
// =============================================================================

type NatsEventPublisher struct {
	publisher *nats.Publisher
}

func NewNatsEventPublisher(publisher *nats.Publisher) *NatsEventPublisher {
	return &NatsEventPublisher{publisher: publisher}
}

func (p *NatsEventPublisher) PublishQuote(ev *Event) error {
	return p.publisher.Publish(SubjectQuoteEvents, ev)
}

// =============================================================================
// 组合 / 空实现
// =============================================================================

// MultiPublisher 依次发布到多个通道，单个失败不影响其他通道
type MultiPublisher []EventPublisher

func (m MultiPublisher) PublishQuote(ev *Event) error {
	var first error
	for _, p := range m {
		if err := p.PublishQuote(ev); err != nil {
			log.Printf("[Quote] publish error: quote=%d, err=%v", ev.Record.QuoteID, err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// NopPublisher 不发布任何事件
type NopPublisher struct{}

func (NopPublisher) PublishQuote(*Event) error { return nil }
