package entity

import (
	"time"
)

// Trade 一笔完整的开平仓记录
type Trade struct {
	Id           int64  `gorm:"primaryKey;autoIncrement"`
	RunId        string `gorm:"index;size:36"`
	Base         string `gorm:"index"`
	Quote        string
	Budget       string
	EntryPrice   string
	EntryOrderId string
	Quantity     string
	ExitState    string `gorm:"index"`
	ExitReason   string
	ExitPrice    string
	ExitOrderId  string
	ChangePct    string
	RealizedPct  string
	SellError    string
	EntryAt      time.Time
	ExitAt       time.Time
	CreatedAt    time.Time
}
