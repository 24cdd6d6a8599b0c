package ioc

import (
	"log/slog"
	"strings"

	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/KNICEX/scalp-runner/internal/service/exchange/binance"
	"github.com/KNICEX/scalp-runner/internal/service/exchange/paper"
	bnc "github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// InitExchange mode=live 直接下单, mode=paper 行情走币安, 成交在本地模拟
func InitExchange(cli *bnc.Client) exchange.Service {
	type Config struct {
		Mode    string             `mapstructure:"mode"`
		FeeRate float64            `mapstructure:"fee_rate"`
		Balance map[string]float64 `mapstructure:"balance"`
	}

	cfg := Config{Mode: "paper"}
	if err := viper.UnmarshalKey("exchange", &cfg); err != nil {
		panic(err)
	}

	live := binance.NewService(cli)
	switch strings.ToLower(cfg.Mode) {
	case "live":
		slog.Warn("exchange running in live mode, orders are real")
		return live
	case "paper", "":
		opts := []paper.Option{paper.WithFeeRate(decimal.NewFromFloat(cfg.FeeRate))}
		for asset, amount := range cfg.Balance {
			opts = append(opts, paper.WithBalance(asset, decimal.NewFromFloat(amount)))
		}
		slog.Info("exchange running in paper mode", "fee_rate", cfg.FeeRate, "balance", cfg.Balance)
		return paper.NewExchangeService(live.MarketService(), live.SymbolService(), opts...)
	default:
		panic("unknown exchange mode: " + cfg.Mode)
	}
}
