package binance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
)

var _ exchange.OrderService = (*OrderService)(nil)

type OrderService struct {
	cli               *binance.Client
	precisionProvider *PrecisionProvider
}

func NewOrderService(cli *binance.Client, precisionProvider *PrecisionProvider) *OrderService {
	return &OrderService{
		cli:               cli,
		precisionProvider: precisionProvider,
	}
}

// ensureLotSize 卖出前按需拉取交易对的 LOT_SIZE, 失败时退回静态精度表
func (o *OrderService) ensureLotSize(ctx context.Context, tradingPair exchange.TradingPair) {
	if o.precisionProvider.HasLotSize(tradingPair) {
		return
	}
	info, err := o.cli.NewExchangeInfoService().Symbol(tradingPair.ToString()).Do(ctx)
	if err != nil {
		slog.Warn("fail to load lot size, use static precision", "pair", tradingPair, "error", err)
		return
	}
	o.precisionProvider.LoadSymbols(info.Symbols)
}

func (o *OrderService) MarketBuy(ctx context.Context, tradingPair exchange.TradingPair, quoteBudget decimal.Decimal) (exchange.OrderResult, error) {
	budget := quoteBudget.Truncate(o.precisionProvider.GetQuotePrecision(tradingPair))
	if !budget.IsPositive() {
		return exchange.OrderResult{}, fmt.Errorf("market buy %s: %w: budget %s", tradingPair, exchange.ErrOrderRejected, quoteBudget)
	}
	resp, err := o.cli.NewCreateOrderService().
		Symbol(tradingPair.ToString()).
		Side(binanceSide(exchange.OrderSideBuy)).
		Type(binance.OrderTypeMarket).
		QuoteOrderQty(budget.String()).
		NewOrderRespType(binance.NewOrderRespTypeRESULT).
		Do(ctx)
	if err != nil {
		return exchange.OrderResult{}, wrapOrderErr("market buy", tradingPair, err)
	}
	return fromCreateOrderResponse(tradingPair, exchange.OrderSideBuy, resp), nil
}

func (o *OrderService) MarketSell(ctx context.Context, tradingPair exchange.TradingPair, quantity decimal.Decimal) (exchange.OrderResult, error) {
	o.ensureLotSize(ctx, tradingPair)
	qty := quantity.Truncate(o.precisionProvider.GetQuantityPrecision(tradingPair))
	if !qty.IsPositive() {
		return exchange.OrderResult{}, fmt.Errorf("market sell %s: %w: quantity %s below lot size", tradingPair, exchange.ErrOrderRejected, quantity)
	}
	resp, err := o.cli.NewCreateOrderService().
		Symbol(tradingPair.ToString()).
		Side(binanceSide(exchange.OrderSideSell)).
		Type(binance.OrderTypeMarket).
		Quantity(qty.String()).
		NewOrderRespType(binance.NewOrderRespTypeRESULT).
		Do(ctx)
	if err != nil {
		return exchange.OrderResult{}, wrapOrderErr("market sell", tradingPair, err)
	}
	return fromCreateOrderResponse(tradingPair, exchange.OrderSideSell, resp), nil
}
