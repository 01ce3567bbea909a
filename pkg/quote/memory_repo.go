// 文件: pkg/quote/memory_repo.go
// 内存仓储: 未配置 MySQL 时使用，也用于测试

package quote

import (
	"context"
	"sort"
	"sync"
)

var _ Repository = (*MemoryRepository)(nil)

type MemoryRepository struct {
	mu     sync.RWMutex
	byID   map[int64]*Record
	byUser map[int64][]int64 // UserID -> QuoteIDs (按写入顺序)
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:   make(map[int64]*Record),
		byUser: make(map[int64][]int64),
	}
}

func (r *MemoryRepository) Create(_ context.Context, rec *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[rec.QuoteID]; ok {
		return ErrDuplicate
	}
	cp := *rec
	r.byID[rec.QuoteID] = &cp
	r.byUser[rec.UserID] = append(r.byUser[rec.UserID], rec.QuoteID)
	return nil
}

func (r *MemoryRepository) GetByQuoteID(_ context.Context, quoteID int64) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[quoteID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID int64, limit int) ([]*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byUser[userID]
	out := make([]*Record, 0, len(ids))
	for _, id := range ids {
		cp := *r.byID[id]
		out = append(out, &cp)
	}

	// 与 MySQL 实现保持一致: 最新在前
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].QuoteID > out[j].QuoteID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
