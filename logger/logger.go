// C:\Users\wasab\OneDrive\デスクトップ\PORTION\logger\logger.go

// Package logger は全コンポーネントで共有する zap ロガーを作ります。
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"portion/config"
)

// New は cfg からロガーを作ります。不明なレベルは info になります。
func New(cfg config.LoggerConfig) (*zap.Logger, error) {
	return zapConfig(cfg).Build()
}

func zapConfig(cfg config.LoggerConfig) zap.Config {
	var zc zap.Config
	if cfg.IsDevelopment {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	if cfg.Encoding != "" {
		zc.Encoding = cfg.Encoding
	}
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.TimeKey = "timestamp"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.DisableCaller = cfg.DisableCaller
	zc.DisableStacktrace = cfg.DisableStacktrace
	return zc
}
