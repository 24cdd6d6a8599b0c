package exchange

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTradingPair(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    TradingPair
		wantErr bool
	}{
		{name: "slash", input: "btc/usdt", want: TradingPair{Base: "BTC", Quote: "USDT"}},
		{name: "quote first dash", input: "KRW-XRP", want: TradingPair{Base: "XRP", Quote: "KRW"}},
		{name: "concatenated", input: "ETHUSDT", want: TradingPair{Base: "ETH", Quote: "USDT"}},
		{name: "concatenated krw", input: "SOLKRW", want: TradingPair{Base: "SOL", Quote: "KRW"}},
		{name: "unknown quote", input: "FOOBAR", wantErr: true},
		{name: "only quote", input: "USDT", wantErr: true},
		{name: "empty half", input: "BTC/", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTradingPair(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTradingPair_Format(t *testing.T) {
	pair := TradingPair{Base: "BTC", Quote: "USDT"}
	assert.Equal(t, "BTCUSDT", pair.ToString())
	assert.Equal(t, "BTC/USDT", pair.String())
}

func TestInterval_Duration(t *testing.T) {
	assert.Equal(t, 3*time.Minute, Interval3m.Duration())
	assert.Equal(t, 24*time.Hour, Interval1d.Duration())
	assert.Equal(t, time.Duration(0), Interval("7m").Duration())
}

func TestKline_IsBullish(t *testing.T) {
	assert.True(t, Kline{Open: decimal.NewFromInt(10), Close: decimal.NewFromInt(11)}.IsBullish())
	assert.False(t, Kline{Open: decimal.NewFromInt(10), Close: decimal.NewFromInt(10)}.IsBullish())
}

func TestAvgFillPrice(t *testing.T) {
	assert.True(t, AvgFillPrice(decimal.NewFromInt(1000), decimal.NewFromInt(4)).Equal(decimal.NewFromInt(250)))
	assert.True(t, AvgFillPrice(decimal.NewFromInt(1000), decimal.Zero).IsZero())
}

func TestOrderStatus_IsFilled(t *testing.T) {
	assert.True(t, OrderStatusFilled.IsFilled())
	assert.False(t, OrderStatusPartiallyFilled.IsFilled())
	assert.False(t, OrderStatusPending.IsFilled())
	assert.False(t, OrderStatusRejected.IsFilled())
}
