package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/KNICEX/scalp-runner/internal/service/strategy"
)

var (
	// ErrInvalidConfig 请求参数不合法, 接口层返回 400
	ErrInvalidConfig = errors.New("invalid strategy config")
	// ErrRunActive 同一进程同时只能有一个运行
	ErrRunActive     = errors.New("strategy run already active")
	ErrRunNotFound   = errors.New("strategy run not found")
)

// StrategyConfig 一次运行的参数, 运行期间不可变
type StrategyConfig struct {
	LossCut         float64                `json:"loss_cut"`    // 止损(%), 必须为负
	TakeProfit      float64                `json:"take_profit"` // 止盈(%), 必须为正
	TimeoutMinutes  int                    `json:"timeout_minutes"`
	DurationMinutes int                    `json:"duration_minutes"`
	InvestRatio     float64                `json:"invest_ratio"` // (0, 100]
	Candidates      []string               `json:"candidates"`
	Strategy        *strategy.SignalConfig `json:"strategy,omitempty"`
}

func (c StrategyConfig) Validate() error {
	var errs []error
	if math.IsNaN(c.LossCut) || c.LossCut >= 0 {
		errs = append(errs, fmt.Errorf("loss_cut must be negative, got %v", c.LossCut))
	}
	if math.IsNaN(c.TakeProfit) || c.TakeProfit <= 0 {
		errs = append(errs, fmt.Errorf("take_profit must be positive, got %v", c.TakeProfit))
	}
	if c.TimeoutMinutes <= 0 {
		errs = append(errs, fmt.Errorf("timeout_minutes must be positive, got %d", c.TimeoutMinutes))
	}
	if c.DurationMinutes <= 0 {
		errs = append(errs, fmt.Errorf("duration_minutes must be positive, got %d", c.DurationMinutes))
	}
	if math.IsNaN(c.InvestRatio) || c.InvestRatio <= 0 || c.InvestRatio > 100 {
		errs = append(errs, fmt.Errorf("invest_ratio must be in (0, 100], got %v", c.InvestRatio))
	}
	if len(c.Candidates) == 0 {
		errs = append(errs, errors.New("candidates must not be empty"))
	}
	if _, err := c.Pairs(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Pairs 按顺序解析 candidates
func (c StrategyConfig) Pairs() ([]exchange.TradingPair, error) {
	pairs := make([]exchange.TradingPair, 0, len(c.Candidates))
	for _, id := range c.Candidates {
		pair, err := exchange.ParseTradingPair(id)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

func (c StrategyConfig) Duration() time.Duration {
	return time.Duration(c.DurationMinutes) * time.Minute
}

func (c StrategyConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMinutes) * time.Minute
}

// RuntimeConfig 进程级参数, 来自 strategy.runtime
type RuntimeConfig struct {
	PollInterval       time.Duration `mapstructure:"poll_interval"`
	Backoff            time.Duration `mapstructure:"backoff"`
	CoolDown           time.Duration `mapstructure:"cool_down"`
	LiquidationTimeout time.Duration `mapstructure:"liquidation_timeout"`
	MinBalance         float64       `mapstructure:"min_balance"`
	FeeMargin          float64       `mapstructure:"fee_margin"`
	BandRatio          float64       `mapstructure:"band_ratio"`
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		PollInterval:       5 * time.Second,
		Backoff:            time.Second,
		CoolDown:           time.Minute,
		LiquidationTimeout: 30 * time.Second,
		MinBalance:         5100,
		FeeMargin:          0.98,
		BandRatio:          0.05,
	}
}

// WithDefaults 零值字段取默认值
func (r RuntimeConfig) WithDefaults() RuntimeConfig {
	def := DefaultRuntimeConfig()
	if r.PollInterval <= 0 {
		r.PollInterval = def.PollInterval
	}
	if r.Backoff <= 0 {
		r.Backoff = def.Backoff
	}
	if r.CoolDown <= 0 {
		r.CoolDown = def.CoolDown
	}
	if r.LiquidationTimeout <= 0 {
		r.LiquidationTimeout = def.LiquidationTimeout
	}
	if r.MinBalance <= 0 {
		r.MinBalance = def.MinBalance
	}
	if r.FeeMargin <= 0 {
		r.FeeMargin = def.FeeMargin
	}
	if r.BandRatio <= 0 {
		r.BandRatio = def.BandRatio
	}
	return r
}

func configJSON(c StrategyConfig) string {
	raw, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return string(raw)
}
