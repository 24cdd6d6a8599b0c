package entity

import (
	"time"
)

// StrategyRun 一次策略运行的审计记录, 不用于恢复
type StrategyRun struct {
	Id         int64  `gorm:"primaryKey;autoIncrement"`
	RunId      string `gorm:"uniqueIndex;size:36"`
	Strategy   string `gorm:"index"`
	Candidates string // 逗号分隔的交易对
	Config     string // 请求体 JSON
	Status     string `gorm:"index"`
	Cycles     int
	Entries    int
	Wins       int
	Losses     int
	Timeouts   int
	StopReason string
	StartedAt  time.Time `gorm:"index"`
	EndedAt    *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

const (
	RunStatusRunning  = "running"
	RunStatusFinished = "finished" // 到达运行时长
	RunStatusStopped  = "stopped"  // 手动停止
)
