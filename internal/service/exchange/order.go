package exchange

import (
	"context"

	"github.com/shopspring/decimal"
)

type OrderId string

func (id OrderId) IsZero() bool {
	return id == ""
}

func (id OrderId) ToString() string {
	return string(id)
}

type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusRejected        OrderStatus = "rejected"
)

// IsFilled 判断订单是否已完全成交
func (s OrderStatus) IsFilled() bool {
	return s == OrderStatusFilled
}

// OrderResult 市价单的成交回报
type OrderResult struct {
	OrderId          OrderId
	TradingPair      TradingPair
	Side             OrderSide
	Status           OrderStatus
	ExecutedQuantity decimal.Decimal // 成交数量 (base)
	QuoteQuantity    decimal.Decimal // 成交金额 (quote)
	AvgPrice         decimal.Decimal // 成交均价, 无成交时为 0
}

// HasFill 是否有成交
func (r OrderResult) HasFill() bool {
	return r.ExecutedQuantity.IsPositive()
}

// OrderService 只支持市价单
type OrderService interface {
	// MarketBuy 以 quote 计价的金额市价买入
	MarketBuy(ctx context.Context, tradingPair TradingPair, quoteBudget decimal.Decimal) (OrderResult, error)
	// MarketSell 市价卖出 base 数量
	MarketSell(ctx context.Context, tradingPair TradingPair, quantity decimal.Decimal) (OrderResult, error)
}

// AvgFillPrice 根据成交额和成交量计算均价
func AvgFillPrice(quoteQty, executedQty decimal.Decimal) decimal.Decimal {
	if executedQty.IsZero() {
		return decimal.Zero
	}
	return quoteQty.Div(executedQty)
}
