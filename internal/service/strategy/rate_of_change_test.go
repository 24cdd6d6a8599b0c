package strategy

import (
	"context"
	"errors"
	"testing"

	"github.com/KNICEX/scalp-runner/internal/schedule"
	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func rocReq(p exchange.TradingPair) exchange.GetKlinesReq {
	return exchange.GetKlinesReq{TradingPair: p, Interval: exchange.Interval5m, Limit: 2}
}

func newROC(market exchange.MarketService) *RateOfChangeStrategy {
	return NewRateOfChangeStrategy(market, schedule.NewManualClock(baseTime), exchange.Interval5m, decimal.RequireFromString("1.5"))
}

func TestRateOfChange_PicksLargestAbsoluteMove(t *testing.T) {
	market := new(mockMarketService)
	// A +1.0%, B -2.0%, C +3.0%
	market.On("GetKlines", mock.Anything, rocReq(pair("A"))).Return(flatBars(100, 101), nil)
	market.On("GetKlines", mock.Anything, rocReq(pair("B"))).Return(flatBars(100, 98), nil)
	market.On("GetKlines", mock.Anything, rocReq(pair("C"))).Return(flatBars(100, 103), nil)

	c, err := newROC(market).Scan(context.Background(), []exchange.TradingPair{pair("A"), pair("B"), pair("C")})
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, pair("C"), c.TradingPair)
	assert.True(t, c.SignalPrice.Equal(decimal.NewFromInt(103)))
	require.NotNil(t, c.Rate)
	assert.True(t, c.Rate.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, NameRateOfChange, c.Strategy)
}

func TestRateOfChange(t *testing.T) {
	testCases := []struct {
		name   string
		bars   map[string][]exchange.Kline
		errs   map[string]error
		pairs  []string
		expect string // 空表示没有候选
		rate   string
	}{
		{
			name:   "negative move wins by magnitude",
			bars:   map[string][]exchange.Kline{"A": flatBars(100, 102), "B": flatBars(100, 97)},
			pairs:  []string{"A", "B"},
			expect: "B",
			rate:   "-3",
		},
		{
			name:   "tie keeps first in input order",
			bars:   map[string][]exchange.Kline{"A": flatBars(100, 102), "B": flatBars(100, 98)},
			pairs:  []string{"A", "B"},
			expect: "A",
			rate:   "2",
		},
		{
			name:   "threshold is inclusive",
			bars:   map[string][]exchange.Kline{"A": flatBars(100, 101.5)},
			pairs:  []string{"A"},
			expect: "A",
			rate:   "1.5",
		},
		{
			name:  "below threshold",
			bars:  map[string][]exchange.Kline{"A": flatBars(100, 101.4)},
			pairs: []string{"A"},
		},
		{
			name:   "short window and zero previous close skipped",
			bars:   map[string][]exchange.Kline{"A": flatBars(100), "B": flatBars(0, 5), "C": flatBars(100, 110)},
			pairs:  []string{"A", "B", "C"},
			expect: "C",
			rate:   "10",
		},
		{
			name:   "fetch error skipped",
			bars:   map[string][]exchange.Kline{"B": flatBars(100, 90)},
			errs:   map[string]error{"A": errors.New("timeout")},
			pairs:  []string{"A", "B"},
			expect: "B",
			rate:   "-10",
		},
		{
			name:  "empty universe",
			pairs: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			market := new(mockMarketService)
			pairs := make([]exchange.TradingPair, 0, len(tc.pairs))
			for _, b := range tc.pairs {
				p := pair(b)
				pairs = append(pairs, p)
				if err, ok := tc.errs[b]; ok {
					market.On("GetKlines", mock.Anything, rocReq(p)).Return(nil, err)
					continue
				}
				market.On("GetKlines", mock.Anything, rocReq(p)).Return(tc.bars[b], nil)
			}

			c, err := newROC(market).Scan(context.Background(), pairs)
			require.NoError(t, err)
			if tc.expect == "" {
				assert.Nil(t, c)
				return
			}
			require.NotNil(t, c)
			assert.Equal(t, pair(tc.expect), c.TradingPair)
			assert.True(t, c.Rate.Equal(decimal.RequireFromString(tc.rate)), "rate %s", c.Rate)
			market.AssertExpectations(t)
		})
	}
}

func TestRateOfChange_Cancelled(t *testing.T) {
	market := new(mockMarketService)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, err := newROC(market).Scan(ctx, []exchange.TradingPair{pair("A")})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, c)
	market.AssertNotCalled(t, "GetKlines", mock.Anything, mock.Anything)
}
