// 文件: pkg/quote/repository.go
package quote

import "context"

type Repository interface {
	// 创建 (QuoteID 重复时返回 ErrDuplicate)
	Create(ctx context.Context, rec *Record) error

	// 查询
	GetByQuoteID(ctx context.Context, quoteID int64) (*Record, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]*Record, error)
}
