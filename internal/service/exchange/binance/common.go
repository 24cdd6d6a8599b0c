package binance

import (
	"fmt"

	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/KNICEX/scalp-runner/pkg/decimalx"
	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
)

func binanceSide(side exchange.OrderSide) binance.SideType {
	switch side {
	case exchange.OrderSideBuy:
		return binance.SideTypeBuy
	case exchange.OrderSideSell:
		return binance.SideTypeSell
	default:
		return ""
	}
}

func fromBinanceOrderStatus(status binance.OrderStatusType) exchange.OrderStatus {
	switch status {
	case binance.OrderStatusTypeNew:
		return exchange.OrderStatusPending
	case binance.OrderStatusTypePartiallyFilled:
		return exchange.OrderStatusPartiallyFilled
	case binance.OrderStatusTypeFilled:
		return exchange.OrderStatusFilled
	case binance.OrderStatusTypeRejected, binance.OrderStatusTypeExpired, binance.OrderStatusTypeCanceled:
		return exchange.OrderStatusRejected
	default:
		return exchange.OrderStatus(status)
	}
}

// fromCreateOrderResponse 市价单回报 -> OrderResult
func fromCreateOrderResponse(pair exchange.TradingPair, side exchange.OrderSide, resp *binance.CreateOrderResponse) exchange.OrderResult {
	executed := decimalx.FromStringOrZero(resp.ExecutedQuantity)
	quoteQty := decimalx.FromStringOrZero(resp.CummulativeQuoteQuantity)
	return exchange.OrderResult{
		OrderId:          exchange.OrderId(fmt.Sprintf("%d", resp.OrderID)),
		TradingPair:      pair,
		Side:             side,
		Status:           fromBinanceOrderStatus(resp.Status),
		ExecutedQuantity: executed,
		QuoteQuantity:    quoteQty,
		AvgPrice:         exchange.AvgFillPrice(quoteQty, executed),
	}
}

// wrapOrderErr 交易所业务错误归类为 ErrOrderRejected, 其余保持原样
func wrapOrderErr(op string, pair exchange.TradingPair, err error) error {
	if common.IsAPIError(err) {
		return fmt.Errorf("%s %s: %w: %v", op, pair, exchange.ErrOrderRejected, err)
	}
	return fmt.Errorf("%s %s: %w", op, pair, err)
}
