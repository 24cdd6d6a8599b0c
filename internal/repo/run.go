package repo

import (
	"context"
	"time"

	"github.com/KNICEX/scalp-runner/internal/entity"
	"gorm.io/gorm"
)

// RunFinish 运行结束时更新的字段
type RunFinish struct {
	Status     string
	Cycles     int
	Entries    int
	Wins       int
	Losses     int
	Timeouts   int
	StopReason string
	EndedAt    time.Time
}

type RunRepo interface {
	Create(ctx context.Context, run entity.StrategyRun) (int64, error)
	Finish(ctx context.Context, runId string, finish RunFinish) error
	FindByRunId(ctx context.Context, runId string) (entity.StrategyRun, error)
	ListRecent(ctx context.Context, limit int) ([]entity.StrategyRun, error)
}

type runRepo struct {
	db *gorm.DB
}

func NewRunRepo(db *gorm.DB) RunRepo {
	return &runRepo{
		db: db,
	}
}

func (r *runRepo) Create(ctx context.Context, run entity.StrategyRun) (int64, error) {
	err := r.db.WithContext(ctx).Create(&run).Error
	if err != nil {
		return 0, err
	}
	return run.Id, nil
}

func (r *runRepo) Finish(ctx context.Context, runId string, finish RunFinish) error {
	return r.db.WithContext(ctx).Model(&entity.StrategyRun{}).Where("run_id = ?", runId).Updates(map[string]any{
		"status":      finish.Status,
		"cycles":      finish.Cycles,
		"entries":     finish.Entries,
		"wins":        finish.Wins,
		"losses":      finish.Losses,
		"timeouts":    finish.Timeouts,
		"stop_reason": finish.StopReason,
		"ended_at":    finish.EndedAt,
	}).Error
}

func (r *runRepo) FindByRunId(ctx context.Context, runId string) (entity.StrategyRun, error) {
	var run entity.StrategyRun
	err := r.db.WithContext(ctx).Where("run_id = ?", runId).First(&run).Error
	if err != nil {
		return entity.StrategyRun{}, err
	}
	return run, nil
}

func (r *runRepo) ListRecent(ctx context.Context, limit int) ([]entity.StrategyRun, error) {
	var runs []entity.StrategyRun
	err := r.db.WithContext(ctx).Order("started_at desc").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}
