// 文件: pkg/quote/mysql_repo.go
package quote

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// 确保实现了接口
var _ Repository = (*MySQLRepository)(nil)

type MySQLRepository struct {
	db *gorm.DB
}

// NewMySQLRepository 需要 gorm.Config{TranslateError: true}，否则唯一键冲突无法识别
func NewMySQLRepository(db *gorm.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

// AutoMigrate 建表
func (r *MySQLRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&Record{})
}

func (r *MySQLRepository) Create(ctx context.Context, rec *Record) error {
	err := r.db.WithContext(ctx).Create(rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func (r *MySQLRepository) GetByQuoteID(ctx context.Context, quoteID int64) (*Record, error) {
	var rec Record
	err := r.db.WithContext(ctx).Where("quote_id = ?", quoteID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *MySQLRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*Record, error) {
	var recs []*Record
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("quote_id DESC").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}
