package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/KNICEX/scalp-runner/internal/schedule"
	"github.com/google/uuid"
)

var _ schedule.Task = (*Manager)(nil)

// RunInfo 运行状态快照
type RunInfo struct {
	RunId     string         `json:"run_id"`
	Strategy  string         `json:"strategy"`
	Config    StrategyConfig `json:"config"`
	StartedAt time.Time      `json:"started_at"`
	Running   bool           `json:"running"`
	Stopping  bool           `json:"stopping,omitempty"`
	Summary   *RunSummary    `json:"summary,omitempty"`
}

type managedRun struct {
	info   RunInfo
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager 后台运行策略, 同一时间只允许一个运行
type Manager struct {
	runner *Runner

	mu      sync.Mutex
	current *managedRun
	runs    map[string]*managedRun
	latest  *managedRun
}

func NewManager(runner *Runner) *Manager {
	return &Manager{
		runner: runner,
		runs:   make(map[string]*managedRun),
	}
}

// Start 校验参数并在后台启动, 运行不受请求 ctx 取消的影响
func (m *Manager) Start(ctx context.Context, cfg StrategyConfig) (RunInfo, error) {
	runId := uuid.NewString()
	rc, err := m.runner.prepare(runId, cfg)
	if err != nil {
		return RunInfo{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		return m.current.info, ErrRunActive
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	run := &managedRun{
		info: RunInfo{
			RunId:     runId,
			Strategy:  rc.scanner.Name(),
			Config:    cfg,
			StartedAt: m.runner.deps.Clock.Now(),
			Running:   true,
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}
	m.current, m.latest = run, run
	m.runs[runId] = run

	go func() {
		defer close(run.done)
		defer cancel()
		summary := rc.loop(runCtx)

		m.mu.Lock()
		defer m.mu.Unlock()
		run.info.Running = false
		run.info.Summary = &summary
		if m.current == run {
			m.current = nil
		}
	}()
	slog.Info("strategy run started", "run", runId, "strategy", run.info.Strategy)
	return run.info, nil
}

// Stop 取消当前运行, 不等待结束
func (m *Manager) Stop() (RunInfo, error) {
	run := m.stopCurrent()
	if run == nil {
		return RunInfo{}, ErrRunNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return run.info, nil
}

func (m *Manager) stopCurrent() *managedRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	run := m.current
	if run == nil {
		return nil
	}
	run.info.Stopping = true
	run.cancel()
	slog.Info("strategy run stop requested", "run", run.info.RunId)
	return run
}

// Status 当前运行, 没有时返回最近一次
func (m *Manager) Status() (RunInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latest == nil {
		return RunInfo{}, false
	}
	return m.latest.info, true
}

// Wait 阻塞直到指定运行结束
func (m *Manager) Wait(ctx context.Context, runId string) (RunSummary, error) {
	m.mu.Lock()
	run, ok := m.runs[runId]
	m.mu.Unlock()
	if !ok {
		return RunSummary{}, fmt.Errorf("%w: %s", ErrRunNotFound, runId)
	}
	select {
	case <-ctx.Done():
		return RunSummary{}, ctx.Err()
	case <-run.done:
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return *run.info.Summary, nil
}

func (m *Manager) Name() string {
	return "strategy manager"
}

// Run 进程退出时停止当前运行并等待平仓完成
func (m *Manager) Run(ctx context.Context) error {
	<-ctx.Done()
	if run := m.stopCurrent(); run != nil {
		<-run.done
	}
	return nil
}
