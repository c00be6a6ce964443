package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sunr3d/media-showcase/internal/config"
	"github.com/sunr3d/media-showcase/internal/entrypoint"
)

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось прочитать конфигурацию: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("не удалось создать логгер: %v", err)
	}
	defer logger.Sync()

	if err := entrypoint.Run(&cfg, logger); err != nil {
		logger.Fatal("сервис завершился с ошибкой", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	return zapCfg.Build()
}
