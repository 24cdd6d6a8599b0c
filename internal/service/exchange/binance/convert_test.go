package binance

import (
	"errors"
	"testing"

	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/KNICEX/scalp-runner/pkg/decimalx"
	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertKlines(t *testing.T) {
	kls, err := convertKlines([]*binance.Kline{
		{OpenTime: 1700000000000, CloseTime: 1700000179999, Open: "100", High: "105", Low: "99", Close: "104", Volume: "12.5", QuoteAssetVolume: "1290"},
		nil,
		{OpenTime: 1700000180000, CloseTime: 1700000359999, Open: "104", High: "104", Low: "101", Close: "102", Volume: "3", QuoteAssetVolume: "309"},
	})
	require.NoError(t, err)
	require.Len(t, kls, 2)
	assert.True(t, kls[0].IsBullish())
	assert.False(t, kls[1].IsBullish())
	assert.True(t, kls[0].Close.Equal(decimalx.MustFromString("104")))
	assert.Equal(t, int64(1700000180000), kls[1].OpenTime.UnixMilli())

	_, err = convertKlines([]*binance.Kline{{Open: "x", High: "1", Low: "1", Close: "1", Volume: "1", QuoteAssetVolume: "1"}})
	assert.Error(t, err)
}

func TestFromCreateOrderResponse(t *testing.T) {
	pair := exchange.TradingPair{Base: "BTC", Quote: "USDT"}
	res := fromCreateOrderResponse(pair, exchange.OrderSideBuy, &binance.CreateOrderResponse{
		OrderID:                  42,
		Status:                   binance.OrderStatusTypeFilled,
		ExecutedQuantity:         "0.5",
		CummulativeQuoteQuantity: "50",
	})
	assert.Equal(t, exchange.OrderId("42"), res.OrderId)
	assert.Equal(t, exchange.OrderStatusFilled, res.Status)
	assert.True(t, res.HasFill())
	assert.True(t, res.AvgPrice.Equal(decimalx.MustFromString("100")))

	empty := fromCreateOrderResponse(pair, exchange.OrderSideSell, &binance.CreateOrderResponse{
		Status: binance.OrderStatusTypeExpired, ExecutedQuantity: "0", CummulativeQuoteQuantity: "0",
	})
	assert.Equal(t, exchange.OrderStatusRejected, empty.Status)
	assert.False(t, empty.HasFill())
	assert.True(t, empty.AvgPrice.IsZero())
}

func TestWrapOrderErr(t *testing.T) {
	pair := exchange.TradingPair{Base: "BTC", Quote: "USDT"}
	apiErr := &common.APIError{Code: -2010, Message: "insufficient balance"}
	assert.ErrorIs(t, wrapOrderErr("market buy", pair, apiErr), exchange.ErrOrderRejected)

	netErr := errors.New("connection reset")
	err := wrapOrderErr("market buy", pair, netErr)
	assert.ErrorIs(t, err, netErr)
	assert.NotErrorIs(t, err, exchange.ErrOrderRejected)
}

func TestFindBalance(t *testing.T) {
	balances := []binance.Balance{
		{Asset: "USDT", Free: "120.5", Locked: "0"},
		{Asset: "BTC", Free: "0.001", Locked: "0.002"},
	}
	b := findBalance(balances, "btc")
	assert.Equal(t, "BTC", b.Asset)
	assert.True(t, b.Total().Equal(decimalx.MustFromString("0.003")))

	missing := findBalance(balances, "ETH")
	assert.True(t, missing.Free.IsZero())
}

func TestTradablePairs(t *testing.T) {
	svc := NewSymbolService(nil)
	pairs := svc.tradablePairs([]binance.Symbol{
		{Symbol: "BTCUSDT", Status: "TRADING", BaseAsset: "BTC", QuoteAsset: "USDT", IsSpotTradingAllowed: true},
		{Symbol: "ETHBTC", Status: "TRADING", BaseAsset: "ETH", QuoteAsset: "BTC", IsSpotTradingAllowed: true},
		{Symbol: "LUNAUSDT", Status: "BREAK", BaseAsset: "LUNA", QuoteAsset: "USDT", IsSpotTradingAllowed: true},
		{Symbol: "WAVESUSDT", Status: "TRADING", BaseAsset: "WAVES", QuoteAsset: "USDT", IsSpotTradingAllowed: true},
	}, "usdt")
	assert.Equal(t, []exchange.TradingPair{{Base: "BTC", Quote: "USDT"}}, pairs)
}

func TestPrecisionProvider(t *testing.T) {
	p := NewPrecisionProvider()
	assert.Equal(t, int32(5), p.GetQuantityPrecision(exchange.TradingPair{Base: "BTC", Quote: "USDT"}))
	assert.Equal(t, int32(2), p.GetQuantityPrecision(exchange.TradingPair{Base: "NEW", Quote: "USDT"}))
	assert.Equal(t, int32(0), p.GetQuotePrecision(exchange.TradingPair{Base: "BTC", Quote: "KRW"}))
}

func lotSizeSymbol(symbol, base, step string) binance.Symbol {
	return binance.Symbol{
		Symbol:     symbol,
		BaseAsset:  base,
		QuoteAsset: "USDT",
		Filters: []map[string]interface{}{
			{"filterType": "PRICE_FILTER", "tickSize": "0.01000000"},
			{"filterType": "LOT_SIZE", "minQty": step, "maxQty": "9000000.00000000", "stepSize": step},
		},
	}
}

func TestPrecisionProvider_LotSize(t *testing.T) {
	p := NewPrecisionProvider()
	pepe := exchange.TradingPair{Base: "PEPE", Quote: "USDT"}
	btc := exchange.TradingPair{Base: "BTC", Quote: "USDT"}
	assert.False(t, p.HasLotSize(pepe))

	n := p.LoadSymbols([]binance.Symbol{
		lotSizeSymbol("PEPEUSDT", "PEPE", "1.00000000"),
		lotSizeSymbol("BTCUSDT", "BTC", "0.00001000"),
		lotSizeSymbol("TRXUSDT", "TRX", "0.10000000"),
		{Symbol: "NOLOTUSDT", BaseAsset: "NOLOT", QuoteAsset: "USDT"},
	})
	assert.Equal(t, 3, n)
	assert.True(t, p.HasLotSize(pepe))
	assert.Equal(t, int32(0), p.GetQuantityPrecision(pepe))
	assert.Equal(t, int32(5), p.GetQuantityPrecision(btc))
	assert.Equal(t, int32(1), p.GetQuantityPrecision(exchange.TradingPair{Base: "TRX", Quote: "USDT"}))
	// 没有 LOT_SIZE 的交易对退回默认
	assert.Equal(t, int32(2), p.GetQuantityPrecision(exchange.TradingPair{Base: "NOLOT", Quote: "USDT"}))
}

func TestStepPrecision(t *testing.T) {
	testCases := []struct {
		step string
		want int32
		ok   bool
	}{
		{step: "0.00100000", want: 3, ok: true},
		{step: "1.00000000", want: 0, ok: true},
		{step: "10", want: 0, ok: true},
		{step: "0.1", want: 1, ok: true},
		{step: "0", ok: false},
		{step: "", ok: false},
	}
	for _, tc := range testCases {
		t.Run(tc.step, func(t *testing.T) {
			got, ok := stepPrecision(tc.step)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
