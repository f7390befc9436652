package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/alexhholmes/folioevict"
	"github.com/alexhholmes/folioevict/internal/config"
	"github.com/alexhholmes/folioevict/logger"
)

// newLogger builds the configured backend. The returned func flushes it.
func newLogger(cfg config.LoggingConfig, w io.Writer) (folioevict.Logger, func(), error) {
	level := strings.ToLower(cfg.Level)

	switch cfg.Backend {
	case "logrus":
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level: %w", err)
		}
		l := logrus.New()
		l.SetOutput(w)
		l.SetLevel(lvl)
		return logger.NewLogrus(l), func() {}, nil

	default:
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level: %w", err)
		}
		encoderCfg := zap.NewDevelopmentEncoderConfig()
		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderCfg),
			zapcore.AddSync(w),
			lvl,
		)
		l := zap.New(core)
		return logger.NewZap(l), func() { _ = l.Sync() }, nil
	}
}
