package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/astrobot-dev/autotrader/internal/service/engine"
	"github.com/astrobot-dev/autotrader/internal/service/strategy"
	"github.com/astrobot-dev/autotrader/ioc"
	"github.com/astrobot-dev/autotrader/pkg/decimalx"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func initViper() {

	// --config=./config/xxx.yaml
	file := pflag.String("config", "./config/config.dev.yaml", "specify config file")
	pflag.Parse()

	viper.SetConfigFile(*file)
	err := viper.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %s \n", err))
	}

}

func main() {
	initViper()
	ioc.InitLogger()

	cli := ioc.InitBinanceCli()
	if !cli.Ping(context.Background()) {
		slog.Warn("exchange unreachable at startup, continuing anyway")
	}

	type PairConfig struct {
		Symbol   string `mapstructure:"symbol"`
		Strategy string `mapstructure:"strategy"`
		Quantity string `mapstructure:"quantity"`
	}
	var pairs []PairConfig
	if err := viper.UnmarshalKey("trading.pairs", &pairs); err != nil {
		panic(err)
	}

	cycleInterval := viper.GetDuration("trading.cycle_interval")
	if cycleInterval <= 0 {
		cycleInterval = time.Minute
	}

	eng := engine.NewEngine(cli, engine.WithCycleInterval(cycleInterval))
	for _, p := range pairs {
		if err := eng.StartTrading(p.Strategy, p.Symbol, decimalx.MustFromString(p.Quantity)); err != nil {
			slog.Error("failed to bind trading pair",
				"symbol", p.Symbol, "strategy", p.Strategy, "available", strategy.Names(), "error", err)
			os.Exit(1)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	eng.StopTrading()
	slog.Info("shutdown complete", "trades", len(eng.History()))
}
