package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KNICEX/scalp-runner/internal/entity"
	"github.com/KNICEX/scalp-runner/internal/metrics"
	"github.com/KNICEX/scalp-runner/internal/repo"
	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/KNICEX/scalp-runner/internal/service/monitor"
	"github.com/KNICEX/scalp-runner/internal/service/portfolio"
	"github.com/KNICEX/scalp-runner/internal/service/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Runner 扫描 -> 入场过滤 -> 买入 -> 监控 -> 卖出, 循环直到运行时长结束或被取消
type Runner struct {
	deps Deps
}

func NewRunner(deps Deps) *Runner {
	return &Runner{deps: deps.withDefaults()}
}

func (r *Runner) Run(ctx context.Context, cfg StrategyConfig) (RunSummary, error) {
	return r.run(ctx, uuid.NewString(), cfg)
}

// run 只有参数错误会返回 error, 行情/下单失败都在循环内处理
func (r *Runner) run(ctx context.Context, runId string, cfg StrategyConfig) (RunSummary, error) {
	rc, err := r.prepare(runId, cfg)
	if err != nil {
		return RunSummary{RunId: runId}, err
	}
	return rc.loop(ctx), nil
}

func (r *Runner) prepare(runId string, cfg StrategyConfig) (*runContext, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pairs, _ := cfg.Pairs()

	signal := r.deps.Signal
	if cfg.Strategy != nil {
		signal = signal.Merge(*cfg.Strategy)
	}
	scanner, err := strategy.New(signal, r.deps.Exchange.MarketService(), r.deps.Clock)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	rt := r.deps.Runtime
	entryCfg := portfolio.DefaultEntryConfig(decimal.NewFromFloat(cfg.InvestRatio))
	entryCfg.MinBalance = decimal.NewFromFloat(rt.MinBalance)
	entryCfg.FeeMargin = decimal.NewFromFloat(rt.FeeMargin)
	entryCfg.BandRatio = decimal.NewFromFloat(rt.BandRatio)

	rep := &reporter{runId: runId, notifier: r.deps.Notifier, logs: r.deps.Logs}
	mon := monitor.NewPositionMonitor(r.deps.Exchange, r.deps.Clock, monitor.Config{
		TakeProfit:         decimal.NewFromFloat(cfg.TakeProfit),
		LossCut:            decimal.NewFromFloat(cfg.LossCut),
		Timeout:            cfg.Timeout(),
		PollInterval:       rt.PollInterval,
		Backoff:            rt.Backoff,
		LiquidationTimeout: rt.LiquidationTimeout,
	}, monitor.WithNotifier(r.deps.Notifier), monitor.WithLogSink(r.deps.Logs))

	return &runContext{
		deps:      r.deps,
		runId:     runId,
		cfg:       cfg,
		pairs:     pairs,
		scanner:   scanner,
		evaluator: portfolio.NewEntryEvaluator(entryCfg),
		monitor:   mon,
		rep:       rep,
	}, nil
}

// runContext 单次运行的状态
type runContext struct {
	deps      Deps
	runId     string
	cfg       StrategyConfig
	pairs     []exchange.TradingPair
	scanner   strategy.SignalStrategy
	evaluator *portfolio.EntryEvaluator
	monitor   *monitor.PositionMonitor
	rep       *reporter

	end     time.Time
	summary RunSummary
}

func (rc *runContext) loop(ctx context.Context) RunSummary {
	clock := rc.deps.Clock
	start := clock.Now()
	rc.end = start.Add(rc.cfg.Duration())
	rc.summary = RunSummary{RunId: rc.runId, Strategy: rc.scanner.Name(), StartedAt: start, Trades: []TradeRecord{}}
	rc.journalStart(ctx)
	metrics.ActiveRuns.Inc()
	defer metrics.ActiveRuns.Dec()

	rc.rep.notify(ctx, fmt.Sprintf("strategy %s started: %d markets, duration %dm, tp %v%% sl %v%% timeout %dm",
		rc.scanner.Name(), len(rc.pairs), rc.cfg.DurationMinutes, rc.cfg.TakeProfit, rc.cfg.LossCut, rc.cfg.TimeoutMinutes))

	for ctx.Err() == nil && clock.Now().Before(rc.end) {
		rc.summary.Cycles++
		rc.cycle(ctx)
	}

	rc.summary.EndedAt = clock.Now()
	rc.summary.StopReason = StopReasonDuration
	if ctx.Err() != nil {
		rc.summary.StopReason = StopReasonStopped
	}
	s := rc.summary
	rc.rep.notifyDetached(ctx, fmt.Sprintf("strategy %s finished (%s): cycles %d entries %d tp %d sl %d timeout %d",
		s.Strategy, s.StopReason, s.Cycles, s.Entries, s.Wins, s.Losses, s.Timeouts))
	rc.journalFinish(ctx)
	return rc.summary
}

func (rc *runContext) cycle(ctx context.Context) {
	market := rc.deps.Exchange.MarketService()

	candidate, err := rc.scanner.Scan(ctx, rc.pairs)
	if err != nil {
		return
	}
	if candidate == nil {
		metrics.ScanCycles.WithLabelValues(rc.scanner.Name(), "none").Inc()
		rc.rep.log("no candidate, cooling down", "cooldown", rc.deps.Runtime.CoolDown)
		rc.coolDown(ctx)
		return
	}
	metrics.ScanCycles.WithLabelValues(rc.scanner.Name(), "candidate").Inc()
	pair := candidate.TradingPair
	rc.rep.log("candidate found", "pair", pair, "price", candidate.SignalPrice)

	day, err := rc.dayRange(ctx, market, pair)
	if err != nil {
		rc.rep.log("day range unavailable", "pair", pair, "error", err)
		rc.coolDown(ctx)
		return
	}

	balance, err := rc.deps.Exchange.AccountService().Balance(ctx, pair.Quote)
	if err != nil {
		rc.rep.log("balance unavailable", "asset", pair.Quote, "error", err)
		rc.coolDown(ctx)
		return
	}

	decision := rc.evaluator.Evaluate(*candidate, balance.Free, day)
	if !decision.Approved {
		metrics.EntryRejects.WithLabelValues(string(decision.Reason)).Inc()
		rc.rep.log("entry rejected", "pair", pair, "reason", decision.Reason, "detail", decision.Detail)
		rc.coolDown(ctx)
		return
	}

	plan := decision.Plan
	order, err := rc.deps.Exchange.OrderService().MarketBuy(ctx, pair, plan.Budget)
	if err != nil || !order.HasFill() {
		result := "empty"
		if err != nil {
			result = "error"
		} else {
			err = fmt.Errorf("%w: no fill, status %s", exchange.ErrOrderRejected, order.Status)
		}
		metrics.Orders.WithLabelValues(string(exchange.OrderSideBuy), result).Inc()
		rc.rep.notify(ctx, fmt.Sprintf("buy failed %s budget %s: %v", pair, plan.Budget.StringFixed(0), err))
		rc.coolDown(ctx)
		return
	}
	metrics.Orders.WithLabelValues(string(exchange.OrderSideBuy), "filled").Inc()

	entryPrice := order.AvgPrice
	if !entryPrice.IsPositive() {
		entryPrice = plan.SignalPrice
	}
	pos := monitor.NewPosition(pair, entryPrice, rc.deps.Clock.Now(), order.ExecutedQuantity)
	rc.summary.Entries++
	rc.rep.notify(ctx, fmt.Sprintf("buy %s budget %s qty %s price %s", pair, plan.Budget.StringFixed(0), order.ExecutedQuantity, entryPrice))

	exit, err := rc.monitor.Watch(ctx, pos, rc.end)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		slog.Error("monitor failed", "run", rc.runId, "pair", pair, "error", err)
	}
	rc.recordTrade(ctx, plan, order, pos, exit)
}

// dayRange 当日高低点取最近一根日线
func (rc *runContext) dayRange(ctx context.Context, market exchange.MarketService, pair exchange.TradingPair) (portfolio.DayRange, error) {
	klines, err := market.GetKlines(ctx, exchange.GetKlinesReq{TradingPair: pair, Interval: exchange.Interval1d, Limit: 1})
	if err != nil {
		return portfolio.DayRange{}, err
	}
	if len(klines) == 0 {
		return portfolio.DayRange{}, exchange.ErrNoData
	}
	last := klines[len(klines)-1]
	return portfolio.DayRange{High: last.High, Low: last.Low}, nil
}

// coolDown 不会超过剩余运行时间
func (rc *runContext) coolDown(ctx context.Context) {
	d := rc.deps.Runtime.CoolDown
	if remaining := rc.end.Sub(rc.deps.Clock.Now()); remaining < d {
		d = remaining
	}
	if d <= 0 {
		return
	}
	_ = rc.deps.Clock.Sleep(ctx, d)
}

func (rc *runContext) recordTrade(ctx context.Context, plan portfolio.OrderPlan, buy exchange.OrderResult, pos *monitor.Position, exit monitor.Exit) {
	t := TradeRecord{
		TradingPair:  pos.TradingPair,
		Budget:       plan.Budget,
		EntryPrice:   pos.EntryPrice,
		Quantity:     pos.Quantity,
		EntryOrderId: buy.OrderId,
		EntryAt:      pos.EntryTime,
		ExitState:    exit.State,
		ExitReason:   exit.Reason,
		ExitPrice:    exit.LastPrice,
		ChangePct:    exit.ChangePct,
		RealizedPct:  exit.RealizedPct,
		ExitAt:       exit.ClosedAt,
	}
	if exit.Sell != nil {
		t.ExitOrderId = exit.Sell.OrderId
		if exit.Sell.AvgPrice.IsPositive() {
			t.ExitPrice = exit.Sell.AvgPrice
		}
	}
	if exit.SellErr != nil {
		t.SellError = exit.SellErr.Error()
	}
	rc.summary.addTrade(t)

	if rc.deps.Trades == nil {
		return
	}
	jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	_, err := rc.deps.Trades.Create(jctx, entity.Trade{
		RunId:        rc.runId,
		Base:         t.TradingPair.Base,
		Quote:        t.TradingPair.Quote,
		Budget:       t.Budget.String(),
		EntryPrice:   t.EntryPrice.String(),
		EntryOrderId: t.EntryOrderId.ToString(),
		Quantity:     t.Quantity.String(),
		ExitState:    string(t.ExitState),
		ExitReason:   string(t.ExitReason),
		ExitPrice:    t.ExitPrice.String(),
		ExitOrderId:  t.ExitOrderId.ToString(),
		ChangePct:    t.ChangePct.String(),
		RealizedPct:  t.RealizedPct.String(),
		SellError:    t.SellError,
		EntryAt:      t.EntryAt,
		ExitAt:       t.ExitAt,
	})
	if err != nil {
		slog.Error("fail to journal trade", "run", rc.runId, "error", err)
	}
}

func (rc *runContext) journalStart(ctx context.Context) {
	if rc.deps.Runs == nil {
		return
	}
	_, err := rc.deps.Runs.Create(ctx, entity.StrategyRun{
		RunId:      rc.runId,
		Strategy:   rc.summary.Strategy,
		Candidates: strings.Join(rc.cfg.Candidates, ","),
		Config:     configJSON(rc.cfg),
		Status:     entity.RunStatusRunning,
		StartedAt:  rc.summary.StartedAt,
	})
	if err != nil {
		slog.Error("fail to journal run start", "run", rc.runId, "error", err)
	}
}

func (rc *runContext) journalFinish(ctx context.Context) {
	if rc.deps.Runs == nil {
		return
	}
	status := entity.RunStatusFinished
	if rc.summary.StopReason == StopReasonStopped {
		status = entity.RunStatusStopped
	}
	jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	s := rc.summary
	err := rc.deps.Runs.Finish(jctx, rc.runId, repo.RunFinish{
		Status:     status,
		Cycles:     s.Cycles,
		Entries:    s.Entries,
		Wins:       s.Wins,
		Losses:     s.Losses,
		Timeouts:   s.Timeouts,
		StopReason: s.StopReason,
		EndedAt:    s.EndedAt,
	})
	if err != nil {
		slog.Error("fail to journal run finish", "run", rc.runId, "error", err)
	}
}
