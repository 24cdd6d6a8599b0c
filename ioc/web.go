package ioc

import (
	"github.com/KNICEX/scalp-runner/internal/web"
	"github.com/spf13/viper"
)

func InitServerConfig() web.ServerConfig {
	cfg := web.ServerConfig{Addr: ":8080", Quote: "USDT"}
	if err := viper.UnmarshalKey("app", &cfg); err != nil {
		panic(err)
	}
	return cfg
}
