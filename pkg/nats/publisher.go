// 文件: pkg/nats/publisher.go
// NATS 消息发布者 (报价广播 / 请求客户端)

package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// Publisher NATS 发布者
type Publisher struct {
	conn *nats.Conn
}

// NewPublisher 连接 NATS 并创建发布者
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url, nats.Name("bsquote-publisher"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &Publisher{conn: conn}, nil
}

// Publish 发布 JSON 消息
func (p *Publisher) Publish(subject string, data any) error {
	bytes, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, bytes)
}

// Request 发送请求并等待应答 (超时由 ctx 控制)
func (p *Publisher) Request(ctx context.Context, subject string, data []byte) ([]byte, error) {
	msg, err := p.conn.RequestWithContext(ctx, subject, data)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", subject, err)
	}
	return msg.Data, nil
}

// Flush 等待已发布的消息送达服务器
func (p *Publisher) Flush() error {
	return p.conn.Flush()
}

// Close 关闭连接
func (p *Publisher) Close() {
	p.conn.Close()
}
