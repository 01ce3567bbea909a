// 文件: pkg/nats/subscriber.go
// NATS 订阅者: 普通订阅 + 请求/应答

package nats

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"
)

// MessageHandler 消息处理函数
type MessageHandler func(subject string, data []byte) error

// RequestHandler 请求处理函数，返回值作为应答
type RequestHandler func(subject string, data []byte) []byte

// Subscriber NATS 订阅者
type Subscriber struct {
	conn *nats.Conn
	subs []*nats.Subscription
}

// NewSubscriber 创建订阅者
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := nats.Connect(url, nats.Name("bsquote-subscriber"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &Subscriber{conn: conn}, nil
}

// Subscribe 订阅主题
func (s *Subscriber) Subscribe(subject string, handler MessageHandler) error {
	sub, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
		if err := handler(msg.Subject, msg.Data); err != nil {
			log.Printf("[NATS] handle error: subject=%s, err=%v", msg.Subject, err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Serve 队列订阅并应答 (多实例负载均衡)
func (s *Subscriber) Serve(subject, queue string, handler RequestHandler) error {
	sub, err := s.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		resp := handler(msg.Subject, msg.Data)
		if msg.Reply == "" {
			return
		}
		if err := msg.Respond(resp); err != nil {
			log.Printf("[NATS] respond error: subject=%s, err=%v", msg.Subject, err)
		}
	})
	if err != nil {
		return fmt.Errorf("serve %s: %w", subject, err)
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Flush 确认订阅已在服务器生效
func (s *Subscriber) Flush() error {
	return s.conn.Flush()
}

// Close 退订并关闭连接
func (s *Subscriber) Close() error {
	for _, sub := range s.subs {
		sub.Unsubscribe()
	}
	s.conn.Close()
	return nil
}

// UnmarshalJSON 反序列化 JSON
func UnmarshalJSON[T any](data []byte) (*T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
