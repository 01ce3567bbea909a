// 文件: pkg/quote/input.go
// 外部请求 (HTTP / NATS) 的公共输入结构与错误映射

package quote

import (
	"errors"
	"math"

	"max.com/bsquote/pkg/options"
)

// Input 外部请求，数值字段缺失时为 nil
type Input struct {
	UserID  int64    `json:"user_id"`
	Spot    *float64 `json:"spot"`
	Strike  *float64 `json:"strike"`
	Expiry  *float64 `json:"expiry"`
	RatePct *float64 `json:"rate_pct"`
	VolPct  *float64 `json:"vol_pct"`
	Kind    string   `json:"kind"`
}

// Form 转换为表单，缺失字段记为 NaN ("This field is required")
func (in Input) Form() options.Form {
	val := func(p *float64) float64 {
		if p == nil {
			return math.NaN()
		}
		return *p
	}
	return options.Form{
		Spot:    val(in.Spot),
		Strike:  val(in.Strike),
		Expiry:  val(in.Expiry),
		RatePct: val(in.RatePct),
		VolPct:  val(in.VolPct),
		Kind:    in.Kind,
	}
}

// NewInput 由表单构造外部请求，NaN 字段记为缺失
func NewInput(userID int64, f options.Form) Input {
	ptr := func(v float64) *float64 {
		if math.IsNaN(v) {
			return nil
		}
		return &v
	}
	return Input{
		UserID:  userID,
		Spot:    ptr(f.Spot),
		Strike:  ptr(f.Strike),
		Expiry:  ptr(f.Expiry),
		RatePct: ptr(f.RatePct),
		VolPct:  ptr(f.VolPct),
		Kind:    f.Kind,
	}
}

// 错误码
const (
	CodeInvalidParameter  = "invalid_parameter"
	CodeInvalidOptionType = "invalid_option_type"
	CodeNotFound          = "not_found"
	CodeInternal          = "internal"
)

// ErrorBody 返回给调用方的错误
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Error 远端返回的错误，客户端按 error 使用
func (e *ErrorBody) Error() string {
	return e.Code + ": " + e.Message
}

// DescribeError 把错误映射为错误码和字段提示
func DescribeError(err error) ErrorBody {
	body := ErrorBody{Code: CodeInternal, Message: err.Error()}

	var fe options.FormErrors
	var pe *options.ParamError
	switch {
	case errors.As(err, &fe):
		body.Code = CodeInvalidParameter
		body.Fields = fe
	case errors.As(err, &pe):
		body.Code = CodeInvalidParameter
		body.Fields = map[string]string{pe.Field: pe.Constraint}
	case errors.Is(err, options.ErrInvalidOptionType):
		body.Code = CodeInvalidOptionType
		body.Fields = map[string]string{"kind": "must be 'call' or 'put'"}
	case errors.Is(err, ErrNotFound):
		body.Code = CodeNotFound
	}
	return body
}
