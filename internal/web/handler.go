package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/KNICEX/scalp-runner/internal/service/engine"
	"github.com/KNICEX/scalp-runner/internal/service/strategy"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxLimit = 50

// Reply 所有接口统一的返回体
type Reply struct {
	Message string `json:"message"`
	Detail  any    `json:"detail,omitempty"`
}

type handler struct {
	svcs  Services
	quote string
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, Reply{Message: "ok"})
}

func (h *handler) startStrategy(c *gin.Context) {
	var cfg engine.StrategyConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, Reply{Message: "invalid request body", Detail: err.Error()})
		return
	}

	info, err := h.svcs.Runs.Start(c.Request.Context(), cfg)
	switch {
	case errors.Is(err, engine.ErrInvalidConfig):
		c.JSON(http.StatusBadRequest, Reply{Message: "invalid strategy config", Detail: err.Error()})
		return
	case errors.Is(err, engine.ErrRunActive):
		c.JSON(http.StatusConflict, Reply{Message: "strategy already running", Detail: info})
		return
	case err != nil:
		slog.Error("fail to start strategy", "error", err)
		c.JSON(http.StatusInternalServerError, Reply{Message: "fail to start strategy", Detail: err.Error()})
		return
	}

	if wait, _ := strconv.ParseBool(c.Query("wait")); wait {
		summary, err := h.svcs.Runs.Wait(c.Request.Context(), info.RunId)
		if err != nil {
			// 客户端断开不影响后台运行
			c.JSON(http.StatusAccepted, Reply{Message: "strategy started", Detail: info})
			return
		}
		c.JSON(http.StatusOK, Reply{Message: "strategy finished", Detail: summary})
		return
	}
	c.JSON(http.StatusOK, Reply{Message: "strategy started", Detail: info})
}

func (h *handler) stopStrategy(c *gin.Context) {
	info, err := h.svcs.Runs.Stop()
	if errors.Is(err, engine.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, Reply{Message: "no active strategy"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, Reply{Message: "fail to stop strategy", Detail: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Reply{Message: "strategy stopping", Detail: info})
}

func (h *handler) status(c *gin.Context) {
	info, ok := h.svcs.Runs.Status()
	if !ok {
		c.JSON(http.StatusOK, Reply{Message: "idle"})
		return
	}
	msg := "finished"
	switch {
	case info.Running && info.Stopping:
		msg = "stopping"
	case info.Running:
		msg = "running"
	}
	c.JSON(http.StatusOK, Reply{Message: msg, Detail: info})
}

func (h *handler) topMarkets(c *gin.Context) {
	limit, ok := queryLimit(c, 10)
	if !ok {
		return
	}
	quote := strings.ToUpper(strings.TrimSpace(c.Query("quote")))
	if quote == "" {
		quote = h.quote
	}

	pairs, err := h.svcs.Symbols.GetAllSymbols(c.Request.Context(), quote)
	if err != nil {
		slog.Error("fail to list symbols", "quote", quote, "error", err)
		c.JSON(http.StatusBadGateway, Reply{Message: "fail to list symbols", Detail: err.Error()})
		return
	}
	top, err := strategy.TopByTurnover(c.Request.Context(), h.svcs.Market, pairs, limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, Reply{Message: "fail to rank markets", Detail: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Reply{Message: "ok", Detail: top})
}

func (h *handler) listRuns(c *gin.Context) {
	limit, ok := queryLimit(c, 20)
	if !ok {
		return
	}
	runs, err := h.svcs.Journal.ListRecent(c.Request.Context(), limit)
	if err != nil {
		slog.Error("fail to list runs", "error", err)
		c.JSON(http.StatusInternalServerError, Reply{Message: "fail to list runs", Detail: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Reply{Message: "ok", Detail: runs})
}

func (h *handler) runReport(c *gin.Context) {
	report, err := h.svcs.Reports.Analyze(c.Request.Context(), c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, Reply{Message: "run not found"})
		return
	}
	if err != nil {
		slog.Error("fail to build run report", "run", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, Reply{Message: "fail to build report", Detail: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Reply{Message: "ok", Detail: report})
}

// queryLimit 解析 ?limit=, 不合法时已经写了 400
func queryLimit(c *gin.Context, def int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, Reply{Message: "limit must be a positive integer"})
		return 0, false
	}
	return min(n, maxLimit), true
}
