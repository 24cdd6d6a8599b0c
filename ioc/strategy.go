package ioc

import (
	"github.com/KNICEX/scalp-runner/internal/service/engine"
	"github.com/KNICEX/scalp-runner/internal/service/strategy"
	"github.com/spf13/viper"
)

// InitSignalConfig 默认扫描策略, 请求可以覆盖字段
func InitSignalConfig() strategy.SignalConfig {
	var cfg strategy.SignalConfig
	if err := viper.UnmarshalKey("strategy.signal", &cfg); err != nil {
		panic(err)
	}
	return cfg
}

func InitRuntimeConfig() engine.RuntimeConfig {
	cfg := engine.DefaultRuntimeConfig()
	if err := viper.UnmarshalKey("strategy.runtime", &cfg); err != nil {
		panic(err)
	}
	return cfg.WithDefaults()
}
