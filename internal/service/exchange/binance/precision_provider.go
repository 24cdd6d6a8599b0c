package binance

import (
	"strings"
	"sync"

	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
)

var _ exchange.QuantityPrecisionProvider = (*PrecisionProvider)(nil)

// PrecisionProvider 币安现货交易对精度
// 优先使用 exchange info 里 LOT_SIZE 的步长, 没加载到的币种查静态表
type PrecisionProvider struct {
	quantity map[string]int32 // key: base

	mu       sync.RWMutex
	lotSteps map[string]int32 // key: symbol, 如 BTCUSDT
}

func NewPrecisionProvider() *PrecisionProvider {
	// 参考: https://www.binance.com/en/trade-rule
	return &PrecisionProvider{
		quantity: map[string]int32{
			"BTC":  5, // 0.00001
			"ETH":  4, // 0.0001
			"BNB":  3, // 0.001
			"SOL":  3, // 0.001
			"XRP":  0, // 1
			"DOGE": 0, // 1
			"SHIB": 0, // 1
			"ADA":  1, // 0.1
			"AVAX": 2, // 0.01
			"DOT":  2, // 0.01
			"LINK": 2, // 0.01
		},
		lotSteps: make(map[string]int32),
	}
}

// LoadSymbols 从 exchange info 更新数量步长, 返回加载的交易对数
func (p *PrecisionProvider) LoadSymbols(symbols []binance.Symbol) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for i := range symbols {
		lot := symbols[i].LotSizeFilter()
		if lot == nil {
			continue
		}
		precision, ok := stepPrecision(lot.StepSize)
		if !ok {
			continue
		}
		p.lotSteps[symbols[i].Symbol] = precision
		n++
	}
	return n
}

// HasLotSize 是否已经拿到该交易对的 LOT_SIZE
func (p *PrecisionProvider) HasLotSize(pair exchange.TradingPair) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.lotSteps[pair.ToString()]
	return ok
}

// GetQuantityPrecision 未知币种默认 2 位, 截断只会少卖不会超卖
func (p *PrecisionProvider) GetQuantityPrecision(pair exchange.TradingPair) int32 {
	p.mu.RLock()
	precision, ok := p.lotSteps[pair.ToString()]
	p.mu.RUnlock()
	if ok {
		return precision
	}
	if precision, ok := p.quantity[pair.Base]; ok {
		return precision
	}
	return 2
}

func (p *PrecisionProvider) GetQuotePrecision(pair exchange.TradingPair) int32 {
	switch pair.Quote {
	case "KRW":
		return 0
	case "BTC", "ETH", "BNB":
		return 6
	default:
		return 2
	}
}

// stepPrecision "0.00100000" -> 3, "1.00000000" -> 0
func stepPrecision(step string) (int32, bool) {
	d, err := decimal.NewFromString(step)
	if err != nil || !d.IsPositive() {
		return 0, false
	}
	s := d.String()
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return 0, true
	}
	return int32(len(strings.TrimRight(s[dot+1:], "0"))), true
}
