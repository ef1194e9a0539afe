package ioc

import (
	"github.com/astrobot-dev/autotrader/internal/service/exchange/binance"
	"github.com/spf13/viper"
)

func InitBinanceCli() *binance.Client {
	type Config struct {
		ApiKey    string `mapstructure:"api_key"`
		ApiSecret string `mapstructure:"api_secret"`
		Testnet   bool   `mapstructure:"testnet"`
	}

	var cfg Config
	if err := viper.UnmarshalKey("cex.binance", &cfg); err != nil {
		panic(err)
	}

	cli, err := binance.NewClient(binance.Config{
		APIKey:    cfg.ApiKey,
		SecretKey: cfg.ApiSecret,
		Testnet:   cfg.Testnet,
	})
	if err != nil {
		panic(err)
	}
	return cli
}
