package binance

import (
	"context"
	"fmt"
	"strings"

	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/adshao/go-binance/v2"
	"github.com/samber/lo"
)

// 过期/下架币种
var binanceOverdueSymbolBase = []string{
	"BCC", "VEN", "PAX", "BCHABC", "BCHSV", "WAVES", "BTT", "USDS", "XMR", "NANO", "OMG",
	"MITH", "MATIC", "FTM", "USDSB", "GTO", "ERD", "NPXS", "COCOS", "TOMO", "PERL", "MFT",
	"KEY", "STORM", "DOCK", "BUSD", "BEAM", "REN", "HC", "MCO", "VITE", "DREP", "BULL", "BEAR",
	"ETHBULL", "ETHBEAR", "TCT", "WRX", "BTS", "EOSBULL", "EOSBEAR", "XRPBULL", "XRPBEAR", "START", "AION",
	"BNBBULL", "BNBBEAR", "WTC", "XZC", "BTCUP", "BTCDOWN", "GXS", "LEND", "STMX", "REP", "PNT", "BKRW",
	"ETHUP", "ETHDOWN", "ADAUP", "ADADOWN", "LINKUP", "LINKDOWN", "GBP", "DAI", "XTZUP", "XTZDOWN",
	"AUD", "BLZ", "IRIS", "KMD", "JST", "SRM", "ANT", "OCEAN", "WNXM", "BZRX", "YFII", "EOSUP", "EOSDOWN",
	"TRXUP", "TRXDOWN", "DOTUP", "DOTDOWN", "LTCUP", "LTCDOWN", "NBS", "HNT", "UNIUP", "UNIDOWN",
	"ORN", "SXPUP", "SXPDOWN", "FILUP", "FILDOWN", "YFIUP", "YFIDOWN", "BCHUP", "BCHDOWN", "UNFI",
	"XEM", "AAVEUP", "AAVEDOWN", "SUSD", "SUSHIUP", "SUSHIDOWN", "XLMUP", "XLMDOWN", "REEF", "BTCST",
	"LIT", "LINA", "RANP", "EPS", "AUTO", "1INCHUP", "1INCHDOWN", "BTG", "MIR", "BURGER", "MDX",
	"NU", "TORN", "KEEP", "ERN", "KLAY", "CLV", "TVK", "BOND", "FOR", "TRIBE", "POLY", "FRONT", "CVP",
	"DAR", "BNX", "RGT", "KP3R", "VGX", "PLA", "RNDR", "MC", "ANY", "OOKI", "ANC", "NBT", "MULTI",
	"GAL", "EPX", "POLYX", "AGIX", "AMB", "BETH", "LOOM", "OAX", "AERGO", "AST", "COMBO", "GFT",
	"STRAT", "BNBUP", "BNBDOWN", "XRPUP", "XRPDOWN", "AKRO", "DNT", "RAMP", "POLS", "UST", "MOB",
	"NEBL",

	"USDC", "FUSDT", "USDP",
}

var _ exchange.SymbolService = (*SymbolService)(nil)

type SymbolService struct {
	cli         *binance.Client
	overdueBase map[string]struct{}
	precision   *PrecisionProvider
}

type SymbolOption func(svc *SymbolService)

// WithPrecisionProvider 拉取 exchange info 时顺便更新 LOT_SIZE
func WithPrecisionProvider(p *PrecisionProvider) SymbolOption {
	return func(svc *SymbolService) {
		svc.precision = p
	}
}

func NewSymbolService(cli *binance.Client, opts ...SymbolOption) *SymbolService {
	svc := &SymbolService{
		cli: cli,
		overdueBase: lo.SliceToMap(binanceOverdueSymbolBase, func(item string) (string, struct{}) {
			return item, struct{}{}
		}),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (svc *SymbolService) GetAllSymbols(ctx context.Context, quote string) ([]exchange.TradingPair, error) {
	info, err := svc.cli.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("exchange info: %w", err)
	}
	if svc.precision != nil {
		svc.precision.LoadSymbols(info.Symbols)
	}
	return svc.tradablePairs(info.Symbols, quote), nil
}

// tradablePairs 保留交易中且允许现货交易的交易对, 过滤下架币种
func (svc *SymbolService) tradablePairs(symbols []binance.Symbol, quote string) []exchange.TradingPair {
	quote = strings.ToUpper(quote)
	trading := lo.Filter(symbols, func(item binance.Symbol, index int) bool {
		if item.Status != string(binance.SymbolStatusTypeTrading) || !item.IsSpotTradingAllowed {
			return false
		}
		return quote == "" || item.QuoteAsset == quote
	})
	pairs := lo.Map(trading, func(item binance.Symbol, index int) exchange.TradingPair {
		return exchange.TradingPair{Base: item.BaseAsset, Quote: item.QuoteAsset}
	})
	return svc.filterOverdue(pairs)
}

// filterOverdue 过滤掉过期的币种
func (svc *SymbolService) filterOverdue(s []exchange.TradingPair) []exchange.TradingPair {
	return lo.Reject(s, func(item exchange.TradingPair, index int) bool {
		_, ok := svc.overdueBase[item.Base]
		return ok
	})
}
