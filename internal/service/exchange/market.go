package exchange

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TradingPair 交易对
type TradingPair struct {
	Base  string
	Quote string
}

// 常见 Quote 列表, 按长度优先匹配
var knownQuotes = []string{"USDT", "USDC", "FDUSD", "BUSD", "KRW", "BTC", "ETH", "BNB"}

func SplitSymbol(s string) (string, string) {
	s = strings.ToUpper(s)
	for _, q := range knownQuotes {
		if strings.HasSuffix(s, q) && len(s) > len(q) {
			return strings.TrimSuffix(s, q), q
		}
	}
	// fallback
	return s, ""
}

// ParseTradingPair 支持 BTC/USDT, KRW-BTC (计价货币在前), BTCUSDT 三种写法
func ParseTradingPair(s string) (TradingPair, error) {
	raw := strings.ToUpper(strings.TrimSpace(s))
	var pair TradingPair
	switch {
	case strings.Contains(raw, "/"):
		parts := strings.SplitN(raw, "/", 2)
		pair = TradingPair{Base: parts[0], Quote: parts[1]}
	case strings.Contains(raw, "-"):
		parts := strings.SplitN(raw, "-", 2)
		pair = TradingPair{Base: parts[1], Quote: parts[0]}
	default:
		base, quote := SplitSymbol(raw)
		pair = TradingPair{Base: base, Quote: quote}
	}
	if pair.IsZero() {
		return TradingPair{}, fmt.Errorf("invalid market id %q", s)
	}
	return pair, nil
}

func (s TradingPair) IsZero() bool {
	return s.Base == "" || s.Quote == ""
}

func (s TradingPair) ToString() string {
	return fmt.Sprintf("%s%s", s.Base, s.Quote)
}

func (s TradingPair) ToSlashString() string {
	return fmt.Sprintf("%s/%s", s.Base, s.Quote)
}

func (s TradingPair) String() string {
	return s.ToSlashString()
}

type Interval string

func (i Interval) ToString() string {
	return string(i)
}

// Duration 周期时长, 未知周期返回 0
func (i Interval) Duration() time.Duration {
	switch i {
	case Interval1m:
		return time.Minute
	case Interval3m:
		return 3 * time.Minute
	case Interval5m:
		return 5 * time.Minute
	case Interval15m:
		return 15 * time.Minute
	case Interval30m:
		return 30 * time.Minute
	case Interval1h:
		return time.Hour
	case Interval4h:
		return 4 * time.Hour
	case Interval1d:
		return 24 * time.Hour
	default:
		return 0
	}
}

const (
	Interval1m  Interval = "1m"
	Interval3m  Interval = "3m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval4h  Interval = "4h"
	Interval1d  Interval = "1d"
)

type Kline struct {
	OpenTime         time.Time
	CloseTime        time.Time
	Open             decimal.Decimal
	Close            decimal.Decimal
	High             decimal.Decimal
	Low              decimal.Decimal
	Volume           decimal.Decimal // 成交量
	QuoteAssetVolume decimal.Decimal // 成交额
}

// IsBullish 阳线
func (k Kline) IsBullish() bool {
	return k.Close.GreaterThan(k.Open)
}

type MarketService interface {
	// Ticker 最新成交价, 没有报价时返回 ErrNoData
	Ticker(ctx context.Context, tradingPair TradingPair) (decimal.Decimal, error)
	// GetKlines 最近 Limit 根K线, 从旧到新
	GetKlines(ctx context.Context, req GetKlinesReq) ([]Kline, error)
}

type GetKlinesReq struct {
	TradingPair TradingPair
	Interval    Interval
	Limit       int
}

type SymbolService interface {
	// GetAllSymbols 所有可交易的交易对, quote 为空时不过滤
	GetAllSymbols(ctx context.Context, quote string) ([]TradingPair, error)
}
