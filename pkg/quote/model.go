// 文件: pkg/quote/model.go
// 报价记录模型

package quote

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"max.com/bsquote/pkg/options"
)

var (
	// 报价不存在
	ErrNotFound = errors.New("quote not found")
	// QuoteID 已存在
	ErrDuplicate = errors.New("duplicate quote id")
)

// 金额字段保留小数位
const priceScale = 4

// =============================================================================
// Record - 一次报价的完整记录
// =============================================================================

type Record struct {
	ID      uint  `gorm:"primaryKey;autoIncrement" json:"-"`
	QuoteID int64 `gorm:"column:quote_id;uniqueIndex" json:"quote_id,string"` // 雪花ID
	UserID  int64 `gorm:"column:user_id;index" json:"user_id"`

	// 输入 (利率/波动率为小数)
	Kind   options.Kind `gorm:"column:kind;type:varchar(8)" json:"kind"`
	Spot   float64      `gorm:"column:spot" json:"spot"`
	Strike float64      `gorm:"column:strike" json:"strike"`
	Expiry float64      `gorm:"column:expiry" json:"expiry"`
	Rate   float64      `gorm:"column:rate" json:"rate"`
	Vol    float64      `gorm:"column:vol" json:"vol"`

	// 输出
	Price      decimal.Decimal    `gorm:"column:price;type:decimal(24,4)" json:"price"`
	Intrinsic  decimal.Decimal    `gorm:"column:intrinsic;type:decimal(24,4)" json:"intrinsic"`
	TimeValue  decimal.Decimal    `gorm:"column:time_value;type:decimal(24,4)" json:"time_value"`
	Moneyness  float64            `gorm:"column:moneyness" json:"moneyness"`
	Assessment options.Assessment `gorm:"column:assessment;type:varchar(24)" json:"assessment"`
	Summary    string             `gorm:"column:summary;type:varchar(96)" json:"summary"`

	CreatedAt int64 `gorm:"column:created_at;index" json:"created_at"`
}

func (Record) TableName() string {
	return "quotes"
}

// NewRecord 由定价请求和结果构建记录
func NewRecord(quoteID, userID int64, req options.Request, res options.Result) *Record {
	return &Record{
		QuoteID:    quoteID,
		UserID:     userID,
		Kind:       req.Kind,
		Spot:       req.Spot,
		Strike:     req.Strike,
		Expiry:     req.Expiry,
		Rate:       req.Rate,
		Vol:        req.Vol,
		Price:      decimal.NewFromFloat(res.Price).Round(priceScale),
		Intrinsic:  decimal.NewFromFloat(res.Intrinsic).Round(priceScale),
		TimeValue:  decimal.NewFromFloat(res.TimeValue).Round(priceScale),
		Moneyness:  res.Moneyness,
		Assessment: res.Assessment,
		Summary:    options.Describe(req.Kind, res.Assessment),
		CreatedAt:  time.Now().UnixMilli(),
	}
}

// Request 还原定价输入
func (r *Record) Request() options.Request {
	return options.Request{
		Spot:   r.Spot,
		Strike: r.Strike,
		Expiry: r.Expiry,
		Rate:   r.Rate,
		Vol:    r.Vol,
		Kind:   r.Kind,
	}
}
