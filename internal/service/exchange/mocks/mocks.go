// Package mocks testify 实现的交易所接口, 供其他包的测试使用
package mocks

import (
	"context"

	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

var (
	_ exchange.Service        = (*ExchangeService)(nil)
	_ exchange.MarketService  = (*MarketService)(nil)
	_ exchange.AccountService = (*AccountService)(nil)
	_ exchange.OrderService   = (*OrderService)(nil)
	_ exchange.SymbolService  = (*SymbolService)(nil)
)

// ExchangeService 把几个 mock 组合成 exchange.Service
type ExchangeService struct {
	Market  *MarketService
	Account *AccountService
	Order   *OrderService
	Symbol  *SymbolService
}

func NewExchangeService() *ExchangeService {
	return &ExchangeService{
		Market:  new(MarketService),
		Account: new(AccountService),
		Order:   new(OrderService),
		Symbol:  new(SymbolService),
	}
}

func (m *ExchangeService) MarketService() exchange.MarketService   { return m.Market }
func (m *ExchangeService) AccountService() exchange.AccountService { return m.Account }
func (m *ExchangeService) OrderService() exchange.OrderService     { return m.Order }
func (m *ExchangeService) SymbolService() exchange.SymbolService   { return m.Symbol }

type MarketService struct {
	mock.Mock
}

func (m *MarketService) Ticker(ctx context.Context, tradingPair exchange.TradingPair) (decimal.Decimal, error) {
	args := m.Called(ctx, tradingPair)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MarketService) GetKlines(ctx context.Context, req exchange.GetKlinesReq) ([]exchange.Kline, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]exchange.Kline), args.Error(1)
}

type AccountService struct {
	mock.Mock
}

func (m *AccountService) Balance(ctx context.Context, asset string) (exchange.Balance, error) {
	args := m.Called(ctx, asset)
	return args.Get(0).(exchange.Balance), args.Error(1)
}

type OrderService struct {
	mock.Mock
}

func (m *OrderService) MarketBuy(ctx context.Context, tradingPair exchange.TradingPair, quoteBudget decimal.Decimal) (exchange.OrderResult, error) {
	args := m.Called(ctx, tradingPair, quoteBudget)
	return args.Get(0).(exchange.OrderResult), args.Error(1)
}

func (m *OrderService) MarketSell(ctx context.Context, tradingPair exchange.TradingPair, quantity decimal.Decimal) (exchange.OrderResult, error) {
	args := m.Called(ctx, tradingPair, quantity)
	return args.Get(0).(exchange.OrderResult), args.Error(1)
}

type SymbolService struct {
	mock.Mock
}

func (m *SymbolService) GetAllSymbols(ctx context.Context, quote string) ([]exchange.TradingPair, error) {
	args := m.Called(ctx, quote)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]exchange.TradingPair), args.Error(1)
}
