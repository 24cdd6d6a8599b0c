package repo

import (
	"context"

	"github.com/KNICEX/scalp-runner/internal/entity"
	"gorm.io/gorm"
)

type TradeRepo interface {
	Create(ctx context.Context, trade entity.Trade) (int64, error)
	FindByRunId(ctx context.Context, runId string) ([]entity.Trade, error)
}

type tradeRepo struct {
	db *gorm.DB
}

func NewTradeRepo(db *gorm.DB) TradeRepo {
	return &tradeRepo{
		db: db,
	}
}

func (repo *tradeRepo) Create(ctx context.Context, trade entity.Trade) (int64, error) {
	err := repo.db.WithContext(ctx).Create(&trade).Error
	if err != nil {
		return 0, err
	}
	return trade.Id, nil
}

func (repo *tradeRepo) FindByRunId(ctx context.Context, runId string) ([]entity.Trade, error) {
	var trades []entity.Trade
	err := repo.db.WithContext(ctx).Where("run_id = ?", runId).Order("id asc").Find(&trades).Error
	if err != nil {
		return nil, err
	}
	return trades, nil
}
