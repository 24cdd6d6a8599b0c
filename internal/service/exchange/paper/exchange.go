package paper

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/shopspring/decimal"
)

// 编译时检查接口实现
var _ exchange.Service = (*ExchangeService)(nil)
var _ exchange.AccountService = (*ExchangeService)(nil)
var _ exchange.OrderService = (*ExchangeService)(nil)

// ExchangeService 模拟盘: 行情走真实接口, 资金和成交在本地撮合
type ExchangeService struct {
	market  exchange.MarketService
	symbols exchange.SymbolService
	feeRate decimal.Decimal

	mu          sync.Mutex
	balances    map[string]decimal.Decimal // key: asset
	nextOrderId int64
	fills       []exchange.OrderResult
}

type Option func(*ExchangeService)

// WithFeeRate 手续费率, 按成交额扣 quote
func WithFeeRate(rate decimal.Decimal) Option {
	return func(svc *ExchangeService) {
		svc.feeRate = rate
	}
}

// WithBalance 初始资金
func WithBalance(asset string, amount decimal.Decimal) Option {
	return func(svc *ExchangeService) {
		svc.balances[strings.ToUpper(asset)] = amount
	}
}

func NewExchangeService(market exchange.MarketService, symbols exchange.SymbolService, opts ...Option) *ExchangeService {
	svc := &ExchangeService{
		market:      market,
		symbols:     symbols,
		feeRate:     decimal.Zero,
		balances:    make(map[string]decimal.Decimal),
		nextOrderId: 1,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (svc *ExchangeService) MarketService() exchange.MarketService {
	return svc.market
}

func (svc *ExchangeService) AccountService() exchange.AccountService {
	return svc
}

func (svc *ExchangeService) OrderService() exchange.OrderService {
	return svc
}

func (svc *ExchangeService) SymbolService() exchange.SymbolService {
	return svc.symbols
}

func (svc *ExchangeService) Balance(ctx context.Context, asset string) (exchange.Balance, error) {
	asset = strings.ToUpper(asset)
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return exchange.Balance{Asset: asset, Free: svc.balances[asset]}, nil
}

// MarketBuy 按最新价全额成交, 手续费从花费中扣除
func (svc *ExchangeService) MarketBuy(ctx context.Context, tradingPair exchange.TradingPair, quoteBudget decimal.Decimal) (exchange.OrderResult, error) {
	if !quoteBudget.IsPositive() {
		return exchange.OrderResult{}, fmt.Errorf("market buy %s: %w: budget %s", tradingPair, exchange.ErrOrderRejected, quoteBudget)
	}
	price, err := svc.market.Ticker(ctx, tradingPair)
	if err != nil {
		return exchange.OrderResult{}, fmt.Errorf("market buy %s: %w", tradingPair, err)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	available := svc.balances[tradingPair.Quote]
	if available.LessThan(quoteBudget) {
		return exchange.OrderResult{}, fmt.Errorf("market buy %s: %w: insufficient %s balance %s < %s",
			tradingPair, exchange.ErrOrderRejected, tradingPair.Quote, available, quoteBudget)
	}
	fee := quoteBudget.Mul(svc.feeRate)
	qty := quoteBudget.Sub(fee).Div(price)

	svc.balances[tradingPair.Quote] = available.Sub(quoteBudget)
	svc.balances[tradingPair.Base] = svc.balances[tradingPair.Base].Add(qty)
	return svc.record(tradingPair, exchange.OrderSideBuy, qty, quoteBudget.Sub(fee)), nil
}

func (svc *ExchangeService) MarketSell(ctx context.Context, tradingPair exchange.TradingPair, quantity decimal.Decimal) (exchange.OrderResult, error) {
	if !quantity.IsPositive() {
		return exchange.OrderResult{}, fmt.Errorf("market sell %s: %w: quantity %s", tradingPair, exchange.ErrOrderRejected, quantity)
	}
	price, err := svc.market.Ticker(ctx, tradingPair)
	if err != nil {
		return exchange.OrderResult{}, fmt.Errorf("market sell %s: %w", tradingPair, err)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	held := svc.balances[tradingPair.Base]
	if held.LessThan(quantity) {
		return exchange.OrderResult{}, fmt.Errorf("market sell %s: %w: insufficient %s balance %s < %s",
			tradingPair, exchange.ErrOrderRejected, tradingPair.Base, held, quantity)
	}
	gross := quantity.Mul(price)
	proceeds := gross.Sub(gross.Mul(svc.feeRate))

	svc.balances[tradingPair.Base] = held.Sub(quantity)
	svc.balances[tradingPair.Quote] = svc.balances[tradingPair.Quote].Add(proceeds)
	return svc.record(tradingPair, exchange.OrderSideSell, quantity, proceeds), nil
}

// record 调用方持有锁
func (svc *ExchangeService) record(pair exchange.TradingPair, side exchange.OrderSide, qty, quoteQty decimal.Decimal) exchange.OrderResult {
	res := exchange.OrderResult{
		OrderId:          exchange.OrderId(fmt.Sprintf("paper-%d", svc.nextOrderId)),
		TradingPair:      pair,
		Side:             side,
		Status:           exchange.OrderStatusFilled,
		ExecutedQuantity: qty,
		QuoteQuantity:    quoteQty,
		AvgPrice:         exchange.AvgFillPrice(quoteQty, qty),
	}
	svc.nextOrderId++
	svc.fills = append(svc.fills, res)
	return res
}

// Fills 全部模拟成交, 按时间顺序
func (svc *ExchangeService) Fills() []exchange.OrderResult {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]exchange.OrderResult(nil), svc.fills...)
}
