package strategy

import (
	"fmt"
	"time"

	"github.com/KNICEX/scalp-runner/internal/schedule"
	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/shopspring/decimal"
)

// SignalConfig 扫描策略配置, 来自 strategy.signal 或请求体里的 strategy 字段
// 零值字段使用默认参数
type SignalConfig struct {
	Name     string        `mapstructure:"name" json:"name"`
	Interval string        `mapstructure:"interval" json:"interval,omitempty"`
	Throttle time.Duration `mapstructure:"throttle" json:"-"`

	// rate_of_change
	MinMovement float64 `mapstructure:"min_movement" json:"min_movement,omitempty"`

	// ma_crossover
	ShortPeriod   int     `mapstructure:"short_period" json:"short_period,omitempty"`
	LongPeriod    int     `mapstructure:"long_period" json:"long_period,omitempty"`
	BullishBars   int     `mapstructure:"bullish_bars" json:"bullish_bars,omitempty"`
	VolatilityCap float64 `mapstructure:"volatility_cap" json:"volatility_cap,omitempty"`
	GapTolerance  float64 `mapstructure:"gap_tolerance" json:"gap_tolerance,omitempty"`
}

// Merge override 中非零字段覆盖 c
func (c SignalConfig) Merge(override SignalConfig) SignalConfig {
	if override.Name != "" {
		c.Name = override.Name
	}
	if override.Interval != "" {
		c.Interval = override.Interval
	}
	if override.Throttle > 0 {
		c.Throttle = override.Throttle
	}
	if override.MinMovement > 0 {
		c.MinMovement = override.MinMovement
	}
	if override.ShortPeriod > 0 {
		c.ShortPeriod = override.ShortPeriod
	}
	if override.LongPeriod > 0 {
		c.LongPeriod = override.LongPeriod
	}
	if override.BullishBars > 0 {
		c.BullishBars = override.BullishBars
	}
	if override.VolatilityCap > 0 {
		c.VolatilityCap = override.VolatilityCap
	}
	if override.GapTolerance > 0 {
		c.GapTolerance = override.GapTolerance
	}
	return c
}

// New 按名称创建扫描策略, 名称为空时使用变化率策略
func New(cfg SignalConfig, market exchange.MarketService, clock schedule.Clock) (SignalStrategy, error) {
	switch cfg.Name {
	case "", NameRateOfChange:
		interval := exchange.Interval5m
		if cfg.Interval != "" {
			interval = exchange.Interval(cfg.Interval)
		}
		if interval.Duration() == 0 {
			return nil, fmt.Errorf("strategy %s: unknown interval %q", NameRateOfChange, cfg.Interval)
		}
		minMovement := decimal.RequireFromString("1.5")
		if cfg.MinMovement > 0 {
			minMovement = decimal.NewFromFloat(cfg.MinMovement)
		}
		return NewRateOfChangeStrategy(market, clock, interval, minMovement), nil
	case NameMACrossover:
		params := DefaultMACrossoverParams()
		if cfg.Interval != "" {
			params.Interval = exchange.Interval(cfg.Interval)
		}
		if cfg.Throttle > 0 {
			params.Throttle = cfg.Throttle
		}
		if cfg.ShortPeriod > 0 {
			params.ShortPeriod = cfg.ShortPeriod
		}
		if cfg.LongPeriod > 0 {
			params.LongPeriod = cfg.LongPeriod
		}
		if cfg.BullishBars > 0 {
			params.BullishBars = cfg.BullishBars
		}
		if cfg.VolatilityCap > 0 {
			params.VolatilityCap = decimal.NewFromFloat(cfg.VolatilityCap)
		}
		if cfg.GapTolerance > 0 {
			params.GapTolerance = cfg.GapTolerance
		}
		if params.Interval.Duration() == 0 {
			return nil, fmt.Errorf("strategy %s: unknown interval %q", NameMACrossover, cfg.Interval)
		}
		if params.ShortPeriod >= params.LongPeriod {
			return nil, fmt.Errorf("strategy %s: short period %d must be below long period %d",
				NameMACrossover, params.ShortPeriod, params.LongPeriod)
		}
		return NewMACrossoverStrategy(market, clock, params), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", cfg.Name)
	}
}
