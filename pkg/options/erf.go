// 文件: pkg/options/erf.go
// 误差函数近似 (Abramowitz & Stegun 7.1.26)
//
// 最大绝对误差约 1.5e-7。
// 注意: 这里故意不用 math.Erf，保证不同实现之间的定价结果逐位一致。

package options

import "math"

// A&S 7.1.26 系数，不可修改
const (
	erfA1 = 0.254829592
	erfA2 = -0.284496736
	erfA3 = 1.421413741
	erfA4 = -1.453152027
	erfA5 = 1.061405429
	erfP  = 0.3275911
)

// Erf 计算误差函数 erf(x) 的近似值，定义域为全体实数
func Erf(x float64) float64 {
	sign := 1.0
	if x < 0 {
		sign = -1.0
	}
	x = math.Abs(x)

	// 多项式部分 (Horner 形式) 乘以指数衰减
	t := 1.0 / (1.0 + erfP*x)
	y := 1.0 - (((((erfA5*t+erfA4)*t+erfA3)*t+erfA2)*t+erfA1)*t)*math.Exp(-x*x)

	return sign * y
}

// NormCDF 标准正态分布的 CDF
// N(x) = (1 + erf(x / sqrt(2))) / 2
func NormCDF(x float64) float64 {
	return (1.0 + Erf(x/math.Sqrt2)) / 2.0
}
