package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/KNICEX/scalp-runner/internal/repo"
	"github.com/KNICEX/scalp-runner/internal/schedule"
	"github.com/KNICEX/scalp-runner/internal/service/analytics"
	"github.com/KNICEX/scalp-runner/internal/service/engine"
	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ schedule.Task = (*Server)(nil)

// RunController 策略运行的启停, 由 engine.Manager 实现
type RunController interface {
	Start(ctx context.Context, cfg engine.StrategyConfig) (engine.RunInfo, error)
	Stop() (engine.RunInfo, error)
	Status() (engine.RunInfo, bool)
	Wait(ctx context.Context, runId string) (engine.RunSummary, error)
}

var _ RunController = (*engine.Manager)(nil)

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// 默认的报价币种, /markets/top 未指定 quote 时使用
	Quote string `mapstructure:"quote"`
}

// Services 路由依赖, 为空的依赖对应的路由不注册
type Services struct {
	Runs    RunController
	Symbols exchange.SymbolService
	Market  exchange.MarketService
	Relay   http.Handler
	Journal repo.RunRepo
	Reports ReportProvider
}

// ReportProvider 由 analytics.Analyzer 实现
type ReportProvider interface {
	Analyze(ctx context.Context, runId string) (analytics.Report, error)
}

var _ ReportProvider = (*analytics.Analyzer)(nil)

type Server struct {
	addr   string
	router *gin.Engine
}

func NewServer(cfg ServerConfig, svcs Services) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Quote == "" {
		cfg.Quote = "USDT"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	h := &handler{svcs: svcs, quote: cfg.Quote}
	router.GET("/", h.health)
	router.POST("/start-strategy", h.startStrategy)
	router.POST("/stop-strategy", h.stopStrategy)
	router.GET("/status", h.status)
	if svcs.Symbols != nil && svcs.Market != nil {
		router.GET("/markets/top", h.topMarkets)
	}
	if svcs.Journal != nil {
		router.GET("/runs", h.listRuns)
	}
	if svcs.Reports != nil {
		router.GET("/runs/:id/report", h.runReport)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if svcs.Relay != nil {
		router.GET("/ws/logs", gin.WrapH(svcs.Relay))
	}
	return &Server{addr: cfg.Addr, router: router}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Name() string {
	return "http server"
}

// Run 监听直到 ctx 取消, 然后优雅关闭
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			slog.Warn("http server shutdown", "error", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"ip", c.ClientIP(),
			"dur", time.Since(start),
		)
	}
}
