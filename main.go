package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/KNICEX/scalp-runner/internal/repo"
	"github.com/KNICEX/scalp-runner/internal/schedule"
	"github.com/KNICEX/scalp-runner/internal/service/analytics"
	"github.com/KNICEX/scalp-runner/internal/service/engine"
	"github.com/KNICEX/scalp-runner/internal/service/relay"
	"github.com/KNICEX/scalp-runner/internal/web"
	"github.com/KNICEX/scalp-runner/ioc"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

func initViper() {
	// --config=./config/xxx.yaml
	file := pflag.String("config", "./config/config.dev.yaml", "specify config file")
	pflag.Parse()

	viper.SetConfigFile(*file)
	// TRADER_CEX_BINANCE_API_KEY 覆盖 cex.binance.api_key
	viper.SetEnvPrefix("TRADER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("fatal error config file: %s \n", err))
	}
}

func main() {
	initViper()
	ioc.InitLogger()

	db := ioc.InitDB()
	bian := ioc.InitBinanceCli()
	exchangeSvc := ioc.InitExchange(bian)
	dispatcher := ioc.InitNotifier()
	runRepo, tradeRepo := repo.NewRunRepo(db), repo.NewTradeRepo(db)
	logs := ioc.InitLogQueue()

	runner := engine.NewRunner(engine.Deps{
		Exchange: exchangeSvc,
		Clock:    schedule.NewRealClock(),
		Notifier: dispatcher,
		Logs:     logs,
		Runs:     runRepo,
		Trades:   tradeRepo,
		Signal:   ioc.InitSignalConfig(),
		Runtime:  ioc.InitRuntimeConfig(),
	})
	manager := engine.NewManager(runner)
	hub := relay.NewHub(logs)
	server := web.NewServer(ioc.InitServerConfig(), web.Services{
		Runs:    manager,
		Symbols: exchangeSvc.SymbolService(),
		Market:  exchangeSvc.MarketService(),
		Relay:   hub,
		Journal: runRepo,
		Reports: analytics.NewAnalyzer(runRepo, tradeRepo),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 通知最后停, 保证强制平仓的消息能发出去
	notifyCtx, stopNotify := context.WithCancel(context.WithoutCancel(ctx))
	notifyDone := make(chan struct{})
	go func() {
		defer close(notifyDone)
		_ = dispatcher.Run(notifyCtx)
	}()

	eg, egCtx := errgroup.WithContext(ctx)
	for _, task := range []schedule.Task{server, hub, manager} {
		task := task
		eg.Go(func() error {
			slog.Info("task started", "task", task.Name())
			err := task.Run(egCtx)
			slog.Info("task stopped", "task", task.Name(), "error", err)
			return err
		})
	}
	err := eg.Wait()
	stopNotify()
	<-notifyDone
	if err != nil {
		slog.Error("service exited with error", "error", err)
		os.Exit(1)
	}
}
