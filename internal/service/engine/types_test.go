package engine

import (
	"math"
	"testing"

	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() StrategyConfig {
	return StrategyConfig{
		LossCut:         -0.9,
		TakeProfit:      1.5,
		TimeoutMinutes:  3,
		DurationMinutes: 10,
		InvestRatio:     100,
		Candidates:      []string{"KRW-XRP", "KRW-BTC"},
	}
}

func TestStrategyConfig_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(c *StrategyConfig)
		ok     bool
	}{
		{name: "valid", mutate: func(c *StrategyConfig) {}, ok: true},
		{name: "full ratio", mutate: func(c *StrategyConfig) { c.InvestRatio = 100 }, ok: true},
		{name: "positive loss cut", mutate: func(c *StrategyConfig) { c.LossCut = 0.9 }},
		{name: "zero loss cut", mutate: func(c *StrategyConfig) { c.LossCut = 0 }},
		{name: "negative take profit", mutate: func(c *StrategyConfig) { c.TakeProfit = -1 }},
		{name: "nan take profit", mutate: func(c *StrategyConfig) { c.TakeProfit = math.NaN() }},
		{name: "zero timeout", mutate: func(c *StrategyConfig) { c.TimeoutMinutes = 0 }},
		{name: "zero duration", mutate: func(c *StrategyConfig) { c.DurationMinutes = 0 }},
		{name: "ratio over 100", mutate: func(c *StrategyConfig) { c.InvestRatio = 100.5 }},
		{name: "zero ratio", mutate: func(c *StrategyConfig) { c.InvestRatio = 0 }},
		{name: "no candidates", mutate: func(c *StrategyConfig) { c.Candidates = nil }},
		{name: "bad market id", mutate: func(c *StrategyConfig) { c.Candidates = []string{"KRW-BTC", "???"} }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestStrategyConfig_Pairs(t *testing.T) {
	pairs, err := validConfig().Pairs()
	require.NoError(t, err)
	assert.Equal(t, []exchange.TradingPair{{Base: "XRP", Quote: "KRW"}, {Base: "BTC", Quote: "KRW"}}, pairs)
}

func TestRuntimeConfig_WithDefaults(t *testing.T) {
	rt := RuntimeConfig{CoolDown: 10}.WithDefaults()
	def := DefaultRuntimeConfig()
	assert.Equal(t, def.PollInterval, rt.PollInterval)
	assert.EqualValues(t, 10, rt.CoolDown)
	assert.Equal(t, 5100.0, rt.MinBalance)
}

func TestFormatLine(t *testing.T) {
	assert.Equal(t, "entry rejected pair=BTC/KRW reason=balance_below_floor",
		formatLine("entry rejected", "pair", exchange.TradingPair{Base: "BTC", Quote: "KRW"}, "reason", "balance_below_floor"))
}
