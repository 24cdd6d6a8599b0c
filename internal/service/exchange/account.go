package exchange

import (
	"context"

	"github.com/shopspring/decimal"
)

// Balance 单个资产余额
type Balance struct {
	Asset  string
	Free   decimal.Decimal // 可用
	Locked decimal.Decimal // 挂单冻结
}

func (b Balance) Total() decimal.Decimal {
	return b.Free.Add(b.Locked)
}

type AccountService interface {
	// Balance 实时查询单个资产, 不持有时返回零余额而不是错误
	Balance(ctx context.Context, asset string) (Balance, error)
}
