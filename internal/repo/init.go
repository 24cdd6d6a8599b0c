package repo

import (
	"github.com/KNICEX/scalp-runner/internal/entity"
	"gorm.io/gorm"
)

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(&entity.StrategyRun{}, &entity.Trade{})
}
