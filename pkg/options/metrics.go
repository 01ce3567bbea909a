// 文件: pkg/options/metrics.go
// 定价结果的派生指标: 内在价值 / 时间价值 / 价值状态 (moneyness)

package options

import "math"

// 价值状态阈值 (S/K)
const (
	LowerMoneyness = 0.95
	UpperMoneyness = 1.05
)

// Request 一次定价请求 (利率和波动率均为小数)
type Request struct {
	Spot   float64 `json:"spot"`
	Strike float64 `json:"strike"`
	Expiry float64 `json:"expiry"` // 年
	Rate   float64 `json:"rate"`
	Vol    float64 `json:"vol"`
	Kind   Kind    `json:"kind"`
}

// Result 定价结果
// 按值返回，字段都是小结构，不逃逸到堆
type Result struct {
	Price      float64    `json:"price"`
	Intrinsic  float64    `json:"intrinsic"`
	TimeValue  float64    `json:"time_value"` // 不截断，近似误差可能让它略小于 0
	Moneyness  float64    `json:"moneyness"`
	Assessment Assessment `json:"assessment"`
}

// Evaluate 计算价格以及全部派生指标
func Evaluate(req Request) (Result, error) {
	price, err := Price(req.Spot, req.Strike, req.Expiry, req.Rate, req.Vol, req.Kind)
	if err != nil {
		return Result{}, err
	}

	intrinsic := IntrinsicValue(req.Spot, req.Strike, req.Kind)
	moneyness := req.Spot / req.Strike

	return Result{
		Price:      price,
		Intrinsic:  intrinsic,
		TimeValue:  price - intrinsic,
		Moneyness:  moneyness,
		Assessment: Assess(req.Kind, moneyness),
	}, nil
}

// IntrinsicValue 立即行权的价值
// Call: max(0, S-K)  Put: max(0, K-S)
func IntrinsicValue(S, K float64, kind Kind) float64 {
	if kind == Put {
		return math.Max(0, K-S)
	}
	return math.Max(0, S-K)
}

// =============================================================================
// 价值状态评估
// =============================================================================

// Assessment 价值状态
type Assessment string

const (
	InTheMoney    Assessment = "in_the_money"
	AtTheMoney    Assessment = "at_the_money"
	OutOfTheMoney Assessment = "out_of_the_money"
)

// Assess 根据 moneyness 和期权类型判断价值状态
//
//	Call: m > 1.05 实值, m > 0.95 平值, 其余虚值
//	Put:  m < 0.95 实值, m < 1.05 平值, 其余虚值
func Assess(kind Kind, moneyness float64) Assessment {
	if kind == Put {
		switch {
		case moneyness < LowerMoneyness:
			return InTheMoney
		case moneyness < UpperMoneyness:
			return AtTheMoney
		default:
			return OutOfTheMoney
		}
	}

	switch {
	case moneyness > UpperMoneyness:
		return InTheMoney
	case moneyness > LowerMoneyness:
		return AtTheMoney
	default:
		return OutOfTheMoney
	}
}

// Describe 面向用户的评估文案
func Describe(kind Kind, a Assessment) string {
	k := "call"
	if kind == Put {
		k = "put"
	}
	switch a {
	case InTheMoney:
		return "In-the-money " + k + " with significant intrinsic value"
	case AtTheMoney:
		return "At-the-money " + k + " - high time value sensitivity"
	default:
		return "Out-of-the-money " + k + " - value depends on time and volatility"
	}
}

// Favorable 标的价格是否站在期权有利的一侧 (call: S>K, put: S<K)
func Favorable(kind Kind, moneyness float64) bool {
	if kind == Put {
		return moneyness < 1
	}
	return moneyness > 1
}
