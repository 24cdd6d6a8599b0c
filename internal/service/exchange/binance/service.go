package binance

import (
	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/adshao/go-binance/v2"
)

var _ exchange.Service = (*Service)(nil)

// Service 币安现货
type Service struct {
	marketSvc  exchange.MarketService
	accountSvc exchange.AccountService
	orderSvc   exchange.OrderService
	symbolSvc  exchange.SymbolService
}

func NewService(cli *binance.Client) *Service {
	precision := NewPrecisionProvider()
	return &Service{
		marketSvc:  NewMarketService(cli),
		accountSvc: NewAccountService(cli),
		orderSvc:   NewOrderService(cli, precision),
		symbolSvc:  NewSymbolService(cli, WithPrecisionProvider(precision)),
	}
}

func (s *Service) MarketService() exchange.MarketService {
	return s.marketSvc
}

func (s *Service) AccountService() exchange.AccountService {
	return s.accountSvc
}

func (s *Service) OrderService() exchange.OrderService {
	return s.orderSvc
}

func (s *Service) SymbolService() exchange.SymbolService {
	return s.symbolSvc
}
