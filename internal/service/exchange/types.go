package exchange

import "errors"

var (
	// ErrNoData 行情暂不可用 (空K线, 无报价, 网络错误), 调用方跳过或稍后重试
	ErrNoData        = errors.New("exchange: no data")
	// ErrOrderRejected 交易所拒绝了订单
	ErrOrderRejected = errors.New("exchange: order rejected")
)

// Service 交易所能力集合
type Service interface {
	MarketService() MarketService
	AccountService() AccountService
	OrderService() OrderService
	SymbolService() SymbolService
}

// QuantityPrecisionProvider 数量精度, 下单前截断到交易所允许的步长
type QuantityPrecisionProvider interface {
	GetQuantityPrecision(pair TradingPair) int32
	GetQuotePrecision(pair TradingPair) int32
}
