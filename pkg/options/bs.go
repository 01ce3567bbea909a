// 文件: pkg/options/bs.go
// 欧式期权 Black-Scholes 定价 (无分红，常数波动率和利率)

package options

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// 数值参数越界 (S/K/T/sigma 非正，或非有限数)
	ErrInvalidParameter = errors.New("invalid parameter")
	// 期权类型不是 call / put
	ErrInvalidOptionType = errors.New("invalid option type")
)

// =============================================================================
// 期权类型
// =============================================================================

// Kind 期权类型
type Kind string

const (
	Call Kind = "call"
	Put  Kind = "put"
)

// Valid 是否为支持的期权类型
func (k Kind) Valid() bool {
	return k == Call || k == Put
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind 解析期权类型，大小写不敏感，支持 c/p 简写
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	}
	return "", &KindError{Kind: s}
}

// =============================================================================
// 错误类型 (携带字段信息，方便调用方展示)
// =============================================================================

// ParamError 数值参数错误
type ParamError struct {
	Field      string  // 字段名: spot / strike / expiry / rate / volatility
	Value      float64 // 传入值
	Constraint string  // 约束说明，如 "must be > 0"
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Field, e.Value, e.Constraint)
}

func (e *ParamError) Unwrap() error { return ErrInvalidParameter }

// KindError 期权类型错误
type KindError struct {
	Kind string
}

func (e *KindError) Error() string {
	return fmt.Sprintf("invalid option type %q: use 'call' or 'put'", e.Kind)
}

func (e *KindError) Unwrap() error { return ErrInvalidOptionType }

// =============================================================================
// 定价
// =============================================================================

// Price 计算欧式期权的 Black-Scholes 理论价格
// S: 标的现价
// K: 执行价
// T: 剩余到期时间 (年)
// r: 无风险利率 (年化连续复利，小数形式)
// sigma: 年化波动率 (小数形式)
//
// 结果下限为 0。参数在任何浮点计算之前完成校验。
func Price(S, K, T, r, sigma float64, kind Kind) (float64, error) {
	if err := validateInputs(S, K, T, r, sigma); err != nil {
		return 0, err
	}
	if !kind.Valid() {
		return 0, &KindError{Kind: string(kind)}
	}

	sqrtT := math.Sqrt(T)
	volT := sigma * sqrtT
	// d1 = [ln(S/K) + (r + sigma²/2)T] / (sigma√T)，展开写避免 sigma² 溢出
	drift := math.Log(S/K)/volT + (r/sigma)*sqrtT
	d1 := drift + 0.5*volT
	d2 := drift - 0.5*volT
	discount := K * math.Exp(-r*T)

	var price float64
	if kind == Call {
		price = S*NormCDF(d1) - weighted(discount, NormCDF(d2))
	} else {
		price = weighted(discount, NormCDF(-d2)) - S*NormCDF(-d1)
	}

	// 负利率 + 超长期限时贴现后的执行价溢出
	if math.IsInf(price, 1) {
		return 0, &ParamError{Field: "rate", Value: r, Constraint: "discounted strike overflows for this expiry"}
	}
	// 近似误差在极端参数下可能产生微小负值，-Inf/NaN 同样落到 0
	if !(price > 0) {
		return 0, nil
	}
	return price, nil
}

// weighted 概率为 0 的项贡献为 0 (避免 Inf*0 = NaN)
func weighted(v, p float64) float64 {
	if p == 0 {
		return 0
	}
	return v * p
}

// validateInputs 检查定价输入
// 顺序: S, K, T, sigma 必须 > 0；r 只要求是有限数
func validateInputs(S, K, T, r, sigma float64) error {
	positives := [...]struct {
		field string
		value float64
	}{
		{"spot", S},
		{"strike", K},
		{"expiry", T},
		{"volatility", sigma},
	}
	for _, p := range positives {
		// !(v > 0) 同时拦截 NaN
		if !(p.value > 0) {
			return &ParamError{Field: p.field, Value: p.value, Constraint: "must be > 0"}
		}
		if math.IsInf(p.value, 0) {
			return &ParamError{Field: p.field, Value: p.value, Constraint: "must be finite"}
		}
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return &ParamError{Field: "rate", Value: r, Constraint: "must be finite"}
	}
	return nil
}
