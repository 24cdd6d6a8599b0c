package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KNICEX/scalp-runner/internal/entity"
	"github.com/KNICEX/scalp-runner/internal/repo"
	"github.com/KNICEX/scalp-runner/internal/service/analytics"
	"github.com/KNICEX/scalp-runner/internal/service/engine"
	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/KNICEX/scalp-runner/internal/service/exchange/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockRunController struct {
	mock.Mock
}

func (m *mockRunController) Start(ctx context.Context, cfg engine.StrategyConfig) (engine.RunInfo, error) {
	args := m.Called(ctx, cfg)
	return args.Get(0).(engine.RunInfo), args.Error(1)
}

func (m *mockRunController) Stop() (engine.RunInfo, error) {
	args := m.Called()
	return args.Get(0).(engine.RunInfo), args.Error(1)
}

func (m *mockRunController) Status() (engine.RunInfo, bool) {
	args := m.Called()
	return args.Get(0).(engine.RunInfo), args.Bool(1)
}

func (m *mockRunController) Wait(ctx context.Context, runId string) (engine.RunSummary, error) {
	args := m.Called(ctx, runId)
	return args.Get(0).(engine.RunSummary), args.Error(1)
}

const startBody = `{"loss_cut":-1.5,"take_profit":2,"timeout_minutes":5,"duration_minutes":60,"invest_ratio":50,"candidates":["BTC/KRW","ETH/KRW"]}`

type replyJSON struct {
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
}

func do(t *testing.T, srv *Server, method, target, body string) (int, replyJSON) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var reply replyJSON
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	}
	return rec.Code, reply
}

func TestStartStrategy(t *testing.T) {
	testCases := []struct {
		name     string
		query    string
		body     string
		mock     func(runs *mockRunController)
		wantCode int
		wantMsg  string
	}{
		{
			name: "started",
			body: startBody,
			mock: func(runs *mockRunController) {
				runs.On("Start", mock.Anything, mock.MatchedBy(func(cfg engine.StrategyConfig) bool {
					return cfg.TakeProfit == 2 && cfg.LossCut == -1.5 && len(cfg.Candidates) == 2
				})).Return(engine.RunInfo{RunId: "run-1", Running: true}, nil)
			},
			wantCode: http.StatusOK,
			wantMsg:  "strategy started",
		},
		{
			name:     "malformed body",
			body:     `{"loss_cut":`,
			mock:     func(runs *mockRunController) {},
			wantCode: http.StatusBadRequest,
			wantMsg:  "invalid request body",
		},
		{
			name: "invalid config",
			body: `{"loss_cut":1}`,
			mock: func(runs *mockRunController) {
				runs.On("Start", mock.Anything, mock.Anything).
					Return(engine.RunInfo{}, fmt.Errorf("%w: loss_cut must be negative", engine.ErrInvalidConfig))
			},
			wantCode: http.StatusBadRequest,
			wantMsg:  "invalid strategy config",
		},
		{
			name: "already running",
			body: startBody,
			mock: func(runs *mockRunController) {
				runs.On("Start", mock.Anything, mock.Anything).
					Return(engine.RunInfo{RunId: "run-0", Running: true}, engine.ErrRunActive)
			},
			wantCode: http.StatusConflict,
			wantMsg:  "strategy already running",
		},
		{
			name:  "wait for summary",
			query: "?wait=true",
			body:  startBody,
			mock: func(runs *mockRunController) {
				runs.On("Start", mock.Anything, mock.Anything).
					Return(engine.RunInfo{RunId: "run-2", Running: true}, nil)
				runs.On("Wait", mock.Anything, "run-2").
					Return(engine.RunSummary{RunId: "run-2", Entries: 1, Wins: 1, StopReason: engine.StopReasonDuration}, nil)
			},
			wantCode: http.StatusOK,
			wantMsg:  "strategy finished",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			runs := new(mockRunController)
			tc.mock(runs)
			srv := NewServer(ServerConfig{}, Services{Runs: runs})

			code, reply := do(t, srv, http.MethodPost, "/start-strategy"+tc.query, tc.body)
			assert.Equal(t, tc.wantCode, code)
			assert.Equal(t, tc.wantMsg, reply.Message)
			runs.AssertExpectations(t)
		})
	}
}

func TestStartStrategy_WaitSummaryDetail(t *testing.T) {
	runs := new(mockRunController)
	runs.On("Start", mock.Anything, mock.Anything).Return(engine.RunInfo{RunId: "run-3"}, nil)
	runs.On("Wait", mock.Anything, "run-3").
		Return(engine.RunSummary{RunId: "run-3", Cycles: 4, Losses: 1, StopReason: engine.StopReasonStopped}, nil)
	srv := NewServer(ServerConfig{}, Services{Runs: runs})

	code, reply := do(t, srv, http.MethodPost, "/start-strategy?wait=1", startBody)
	require.Equal(t, http.StatusOK, code)

	var summary engine.RunSummary
	require.NoError(t, json.Unmarshal(reply.Detail, &summary))
	assert.Equal(t, "run-3", summary.RunId)
	assert.Equal(t, 4, summary.Cycles)
	assert.Equal(t, 1, summary.Losses)
	assert.Equal(t, engine.StopReasonStopped, summary.StopReason)
}

func TestStopAndStatus(t *testing.T) {
	runs := new(mockRunController)
	runs.On("Stop").Return(engine.RunInfo{}, engine.ErrRunNotFound).Once()
	runs.On("Stop").Return(engine.RunInfo{RunId: "run-1", Running: true, Stopping: true}, nil).Once()
	runs.On("Status").Return(engine.RunInfo{}, false).Once()
	runs.On("Status").Return(engine.RunInfo{RunId: "run-1", Running: true, StartedAt: time.Unix(0, 0)}, true).Once()
	runs.On("Status").Return(engine.RunInfo{RunId: "run-1", Running: true, Stopping: true}, true).Once()
	runs.On("Status").Return(engine.RunInfo{RunId: "run-1"}, true).Once()
	srv := NewServer(ServerConfig{}, Services{Runs: runs})

	code, reply := do(t, srv, http.MethodPost, "/stop-strategy", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "no active strategy", reply.Message)

	code, reply = do(t, srv, http.MethodPost, "/stop-strategy", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "strategy stopping", reply.Message)

	_, reply = do(t, srv, http.MethodGet, "/status", "")
	assert.Equal(t, "idle", reply.Message)
	_, reply = do(t, srv, http.MethodGet, "/status", "")
	assert.Equal(t, "running", reply.Message)
	_, reply = do(t, srv, http.MethodGet, "/status", "")
	assert.Equal(t, "stopping", reply.Message)
	_, reply = do(t, srv, http.MethodGet, "/status", "")
	assert.Equal(t, "finished", reply.Message)
	runs.AssertExpectations(t)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := NewServer(ServerConfig{}, Services{Runs: new(mockRunController)})

	code, reply := do(t, srv, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", reply.Message)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "scalp_")
}

func TestTopMarkets(t *testing.T) {
	svc := mocks.NewExchangeService()
	btc := exchange.TradingPair{Base: "BTC", Quote: "USDT"}
	eth := exchange.TradingPair{Base: "ETH", Quote: "USDT"}
	svc.Symbol.On("GetAllSymbols", mock.Anything, "USDT").Return([]exchange.TradingPair{btc, eth}, nil)
	day := func(volume, price int64) []exchange.Kline {
		return []exchange.Kline{{Volume: decimal.NewFromInt(volume), Close: decimal.NewFromInt(price)}}
	}
	svc.Market.On("GetKlines", mock.Anything, mock.MatchedBy(func(req exchange.GetKlinesReq) bool {
		return req.TradingPair == btc
	})).Return(day(10, 100), nil)
	svc.Market.On("GetKlines", mock.Anything, mock.MatchedBy(func(req exchange.GetKlinesReq) bool {
		return req.TradingPair == eth
	})).Return(day(50, 100), nil)

	srv := NewServer(ServerConfig{}, Services{Runs: new(mockRunController), Symbols: svc.Symbol, Market: svc.Market})

	code, reply := do(t, srv, http.MethodGet, "/markets/top?limit=1&quote=usdt", "")
	require.Equal(t, http.StatusOK, code)
	var top []struct {
		TradingPair exchange.TradingPair `json:"trading_pair"`
		Value       decimal.Decimal      `json:"value"`
	}
	require.NoError(t, json.Unmarshal(reply.Detail, &top))
	require.Len(t, top, 1)
	assert.Equal(t, eth, top[0].TradingPair)
	assert.True(t, decimal.NewFromInt(5000).Equal(top[0].Value))

	// 不带 quote 时使用默认的 USDT
	code, reply = do(t, srv, http.MethodGet, "/markets/top", "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(reply.Detail, &top))
	assert.Len(t, top, 2)

	code, _ = do(t, srv, http.MethodGet, "/markets/top?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

type fakeJournal struct {
	repo.RunRepo
	runs []entity.StrategyRun
}

func (f *fakeJournal) ListRecent(ctx context.Context, limit int) ([]entity.StrategyRun, error) {
	return f.runs[:min(limit, len(f.runs))], nil
}

type reportFunc func(ctx context.Context, runId string) (analytics.Report, error)

func (f reportFunc) Analyze(ctx context.Context, runId string) (analytics.Report, error) {
	return f(ctx, runId)
}

func TestRunsAndReport(t *testing.T) {
	journal := &fakeJournal{runs: []entity.StrategyRun{{RunId: "run-2"}, {RunId: "run-1"}}}
	reports := reportFunc(func(ctx context.Context, runId string) (analytics.Report, error) {
		if runId != "run-1" {
			return analytics.Report{}, fmt.Errorf("find run %s: %w", runId, gorm.ErrRecordNotFound)
		}
		return analytics.Report{RunId: runId, Trading: analytics.TradingMetrics{TotalTrades: 3}}, nil
	})
	srv := NewServer(ServerConfig{}, Services{Runs: new(mockRunController), Journal: journal, Reports: reports})

	code, reply := do(t, srv, http.MethodGet, "/runs?limit=1", "")
	require.Equal(t, http.StatusOK, code)
	var runs []entity.StrategyRun
	require.NoError(t, json.Unmarshal(reply.Detail, &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "run-2", runs[0].RunId)

	code, reply = do(t, srv, http.MethodGet, "/runs/run-1/report", "")
	require.Equal(t, http.StatusOK, code)
	var report analytics.Report
	require.NoError(t, json.Unmarshal(reply.Detail, &report))
	assert.Equal(t, 3, report.Trading.TotalTrades)

	code, _ = do(t, srv, http.MethodGet, "/runs/nope/report", "")
	assert.Equal(t, http.StatusNotFound, code)
}
