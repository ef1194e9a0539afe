package ioc

import (
	"log/slog"
	"os"

	"github.com/spf13/viper"
)

func InitLogger() {
	level := slog.LevelInfo
	if viper.GetBool("log.debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
