// 文件: pkg/quote/nats_handler.go
// NATS 请求/应答报价入口
// 使用队列订阅，支持多实例负载均衡

package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"max.com/bsquote/pkg/nats"
)

// Reply NATS 应答
type Reply struct {
	Quote *Record    `json:"quote,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

type NatsHandler struct {
	service    *Service
	subscriber *nats.Subscriber
	timeout    time.Duration
}

// NewNatsHandler 创建 NATS 报价入口
func NewNatsHandler(service *Service, natsURL string) (*NatsHandler, error) {
	subscriber, err := nats.NewSubscriber(natsURL)
	if err != nil {
		return nil, err
	}
	return &NatsHandler{
		service:    service,
		subscriber: subscriber,
		timeout:    5 * time.Second,
	}, nil
}

// Start 开始应答 quote.request
func (h *NatsHandler) Start() error {
	if err := h.subscriber.Serve(SubjectQuoteRequest, QueueQuoteService, h.Handle); err != nil {
		return err
	}
	return h.subscriber.Flush()
}

// Stop 停止
func (h *NatsHandler) Stop() error {
	return h.subscriber.Close()
}

// Handle 处理一次报价请求，返回 JSON 应答
func (h *NatsHandler) Handle(subject string, data []byte) []byte {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	var reply Reply
	in, err := nats.UnmarshalJSON[Input](data)
	if err != nil {
		reply.Error = &ErrorBody{Code: CodeInvalidParameter, Message: "malformed request: " + err.Error()}
	} else if rec, err := h.service.QuoteForm(ctx, in.UserID, in.Form()); err != nil {
		body := DescribeError(err)
		reply.Error = &body
	} else {
		reply.Quote = rec
	}

	out, err := json.Marshal(reply)
	if err != nil {
		log.Printf("[Quote] marshal reply error: subject=%s, err=%v", subject, err)
		return []byte(`{"error":{"code":"internal","message":"marshal reply"}}`)
	}
	return out
}

// RequestQuote 客户端: 通过 quote.request 向报价服务请求一次报价
func RequestQuote(ctx context.Context, publisher *nats.Publisher, in Input) (*Record, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	resp, err := publisher.Request(ctx, SubjectQuoteRequest, data)
	if err != nil {
		return nil, err
	}
	reply, err := nats.UnmarshalJSON[Reply](resp)
	if err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	if reply.Error != nil {
		return nil, reply.Error
	}
	if reply.Quote == nil {
		return nil, fmt.Errorf("empty reply from %s", SubjectQuoteRequest)
	}
	return reply.Quote, nil
}
