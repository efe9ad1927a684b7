package infra

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lj "gopkg.in/natefinch/lumberjack.v2"

	"github.com/eliteGoblin/focusd/app_rm/internal/config"
)

// Default rotation values, used when the config leaves them at zero.
const (
	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 7
)

// NewLogger builds a console logger writing to console and, when cfg.File is
// set, a JSON audit log rotated by lumberjack. The returned func flushes and
// closes the file.
func NewLogger(cfg config.LogConfig, console io.Writer) (*zap.Logger, func() error, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	if console == nil {
		console = os.Stderr
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleEncCfg := encCfg
	consoleEncCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncCfg), zapcore.AddSync(console), level),
	}

	var file *lj.Logger
	if cfg.File != "" {
		file = &lj.Logger{
			Filename:   cfg.File,
			MaxSize:    valOr(cfg.MaxSizeMB, DefaultLogMaxSizeMB),
			MaxBackups: valOr(cfg.MaxBackups, DefaultLogMaxBackups),
			MaxAge:     valOr(cfg.MaxAgeDays, DefaultLogMaxAgeDays),
			Compress:   cfg.Compress,
		}
		// The audit file always records debug and up.
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(file), zapcore.DebugLevel))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	closeFn := func() error {
		_ = logger.Sync()
		if file != nil {
			return file.Close()
		}
		return nil
	}
	return logger, closeFn, nil
}

func valOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
