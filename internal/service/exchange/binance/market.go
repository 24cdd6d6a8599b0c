package binance

import (
	"context"
	"fmt"
	"time"

	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
)

var _ exchange.MarketService = (*MarketService)(nil)

type MarketService struct {
	cli *binance.Client
}

// NewMarketService 创建市场数据服务
func NewMarketService(cli *binance.Client) *MarketService {
	return &MarketService{cli: cli}
}

func convertKlines(klines []*binance.Kline) ([]exchange.Kline, error) {
	kls := make([]exchange.Kline, 0, len(klines))
	for _, k := range klines {
		if k == nil {
			continue
		}
		fields := []string{k.Open, k.Close, k.High, k.Low, k.Volume, k.QuoteAssetVolume}
		values := make([]decimal.Decimal, len(fields))
		for i, f := range fields {
			v, err := decimal.NewFromString(f)
			if err != nil {
				return nil, fmt.Errorf("parse kline field %q: %w", f, err)
			}
			values[i] = v
		}
		kls = append(kls, exchange.Kline{
			OpenTime:         time.UnixMilli(k.OpenTime),
			CloseTime:        time.UnixMilli(k.CloseTime),
			Open:             values[0],
			Close:            values[1],
			High:             values[2],
			Low:              values[3],
			Volume:           values[4],
			QuoteAssetVolume: values[5],
		})
	}
	return kls, nil
}

func (m *MarketService) GetKlines(ctx context.Context, req exchange.GetKlinesReq) ([]exchange.Kline, error) {
	svc := m.cli.NewKlinesService().Symbol(req.TradingPair.ToString()) // 币安使用 BTCUSDT 格式
	if req.Interval.ToString() != "" {
		svc.Interval(req.Interval.ToString())
	}
	if req.Limit > 0 {
		svc.Limit(req.Limit)
	}
	res, err := svc.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("get klines %s: %w", req.TradingPair, err)
	}
	if len(res) == 0 {
		return nil, exchange.ErrNoData
	}
	return convertKlines(res)
}

func (m *MarketService) Ticker(ctx context.Context, tradingPair exchange.TradingPair) (decimal.Decimal, error) {
	prices, err := m.cli.NewListPricesService().Symbol(tradingPair.ToString()).Do(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ticker %s: %w", tradingPair, err)
	}
	if len(prices) == 0 || prices[0].Price == "" {
		return decimal.Zero, exchange.ErrNoData
	}
	price, err := decimal.NewFromString(prices[0].Price)
	if err != nil || !price.IsPositive() {
		return decimal.Zero, exchange.ErrNoData
	}
	return price, nil
}
