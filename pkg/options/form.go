// 文件: pkg/options/form.go
// 表单层: 用户输入 (利率/波动率为百分比) -> 定价请求
// 以及内置的示例参数

package options

import (
	"math"
	"sort"
	"strings"
)

// 表单提示文案
const (
	msgRequired     = "This field is required"
	msgPositive     = "Value must be greater than 0"
	msgRateNegative = "Risk-free rate cannot be negative"
	msgNotFinite    = "Value must be a finite number"
)

// Form 调用方表单，RatePct / VolPct 为百分比 (5 表示 5%)
// 数值缺失用 NaN 表示
type Form struct {
	Spot    float64 `json:"spot"`
	Strike  float64 `json:"strike"`
	Expiry  float64 `json:"expiry"`
	RatePct float64 `json:"rate_pct"`
	VolPct  float64 `json:"vol_pct"`
	Kind    string  `json:"kind"`
}

// FormErrors 字段 -> 错误提示
type FormErrors map[string]string

func (fe FormErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString("invalid form: ")
	for i, f := range fields {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f + ": " + fe[f])
	}
	return b.String()
}

// Is 让 errors.Is(err, ErrInvalidParameter) 成立
func (fe FormErrors) Is(target error) bool {
	return target == ErrInvalidParameter
}

// Validate 校验表单，与原始页面规则一致:
// 全部字段必填；利率可以为 0 但不能为负；其余必须 > 0
func (f Form) Validate() error {
	errs := FormErrors{}

	check := func(field string, v float64, allowZero bool) {
		switch {
		case math.IsNaN(v):
			errs[field] = msgRequired
		case math.IsInf(v, 0):
			errs[field] = msgNotFinite
		case allowZero && v < 0:
			errs[field] = msgRateNegative
		case !allowZero && v <= 0:
			errs[field] = msgPositive
		}
	}
	check("spot", f.Spot, false)
	check("strike", f.Strike, false)
	check("expiry", f.Expiry, false)
	check("rate_pct", f.RatePct, true)
	check("vol_pct", f.VolPct, false)

	if len(errs) > 0 {
		return errs
	}
	if _, err := ParseKind(f.Kind); err != nil {
		return err
	}
	return nil
}

// Request 校验并转换为定价请求 (百分比 -> 小数)
func (f Form) Request() (Request, error) {
	if err := f.Validate(); err != nil {
		return Request{}, err
	}
	kind, _ := ParseKind(f.Kind)
	return Request{
		Spot:   f.Spot,
		Strike: f.Strike,
		Expiry: f.Expiry,
		Rate:   f.RatePct / 100,
		Vol:    f.VolPct / 100,
		Kind:   kind,
	}, nil
}

// =============================================================================
// 示例参数
// =============================================================================

var presets = map[string]Form{
	// 科技股: 虚值看涨
	"tech": {Spot: 100, Strike: 110, Expiry: 1, RatePct: 5, VolPct: 25, Kind: "call"},
	// 稳健型: 虚值看跌
	"safe": {Spot: 50, Strike: 45, Expiry: 0.5, RatePct: 3, VolPct: 15, Kind: "put"},
	// 高波动: 短期虚值看涨
	"volatile": {Spot: 200, Strike: 220, Expiry: 0.25, RatePct: 4.5, VolPct: 40, Kind: "call"},
}

// Preset 按名称获取示例参数
func Preset(name string) (Form, bool) {
	f, ok := presets[strings.ToLower(name)]
	return f, ok
}

// PresetNames 所有示例名称 (已排序)
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
