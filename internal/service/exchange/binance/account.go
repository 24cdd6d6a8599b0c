package binance

import (
	"context"
	"fmt"
	"strings"

	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/KNICEX/scalp-runner/pkg/decimalx"
	"github.com/adshao/go-binance/v2"
)

var _ exchange.AccountService = (*AccountService)(nil)

type AccountService struct {
	cli *binance.Client
}

func NewAccountService(cli *binance.Client) *AccountService {
	return &AccountService{cli: cli}
}

func (s *AccountService) Balance(ctx context.Context, asset string) (exchange.Balance, error) {
	account, err := s.cli.NewGetAccountService().Do(ctx)
	if err != nil {
		return exchange.Balance{}, fmt.Errorf("get account: %w", err)
	}
	return findBalance(account.Balances, asset), nil
}

// findBalance 账户里没有该资产时返回零余额
func findBalance(balances []binance.Balance, asset string) exchange.Balance {
	asset = strings.ToUpper(asset)
	for _, b := range balances {
		if strings.ToUpper(b.Asset) != asset {
			continue
		}
		return exchange.Balance{
			Asset:  asset,
			Free:   decimalx.FromStringOrZero(b.Free),
			Locked: decimalx.FromStringOrZero(b.Locked),
		}
	}
	return exchange.Balance{Asset: asset}
}
