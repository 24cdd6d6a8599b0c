package decimalx

import "github.com/shopspring/decimal"

var Hundred = decimal.NewFromInt(100)

func MustFromString(s string) decimal.Decimal {
	f, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return f
}

// FromStringOrZero 解析失败返回 0, 交易所偶尔会返回空字符串
func FromStringOrZero(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	f, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return f
}

// PercentChange 计算 from -> to 的百分比变化 (to-from)/from*100
// from 为 0 时返回 false
func PercentChange(from, to decimal.Decimal) (decimal.Decimal, bool) {
	if from.IsZero() {
		return decimal.Zero, false
	}
	return to.Sub(from).Div(from).Mul(Hundred), true
}

// ApproxEqual |a-b| < tolerance
func ApproxEqual(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(tolerance)
}

// Floats 转换为 float64 序列, 用于指标计算
func Floats(ds []decimal.Decimal) []float64 {
	res := make([]float64, len(ds))
	for i, d := range ds {
		res[i] = d.InexactFloat64()
	}
	return res
}
