// 文件: pkg/quote/service.go
// 报价服务: 定价 -> 落库 -> 发布事件

package quote

import (
	"context"
	"log"

	"max.com/bsquote/pkg/options"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 200
)

type Service struct {
	repo      Repository
	publisher EventPublisher
	nextID    func() int64
}

// NewService publisher 为 nil 时不发布事件
func NewService(repo Repository, publisher EventPublisher) *Service {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		nextID:    GenerateQuoteID,
	}
}

// =============================================================================
// 报价
// =============================================================================

// Quote 计算并保存一次报价
// 参数错误原样返回 (options.ErrInvalidParameter / options.ErrInvalidOptionType)，不落库
func (s *Service) Quote(ctx context.Context, userID int64, req options.Request) (*Record, error) {
	res, err := options.Evaluate(req)
	if err != nil {
		return nil, err
	}

	rec := NewRecord(s.nextID(), userID, req, res)
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	// 事件发布失败不影响报价结果
	if err := s.publisher.PublishQuote(&Event{Record: rec}); err != nil {
		log.Printf("[Quote] publish event failed: quote=%d, err=%v", rec.QuoteID, err)
	}
	return rec, nil
}

// QuoteForm 表单入口 (百分比输入)
func (s *Service) QuoteForm(ctx context.Context, userID int64, form options.Form) (*Record, error) {
	req, err := form.Request()
	if err != nil {
		return nil, err
	}
	return s.Quote(ctx, userID, req)
}

// =============================================================================
// 查询
// =============================================================================

func (s *Service) Get(ctx context.Context, quoteID int64) (*Record, error) {
	return s.repo.GetByQuoteID(ctx, quoteID)
}

// History 用户最近的报价，limit <= 0 使用默认值，超过上限截断
func (s *Service) History(ctx context.Context, userID int64, limit int) ([]*Record, error) {
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	return s.repo.ListByUser(ctx, userID, limit)
}
