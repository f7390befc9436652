package logger

import (
	"go.uber.org/zap"

	"github.com/alexhholmes/folioevict"
)

// Zap wraps a zap.Logger to implement folioevict.Logger. Run fields such as
// path, reason and byte totals arrive as alternating key-value pairs, which
// is the sugared logger's *w calling convention.
type Zap struct {
	sugar *zap.SugaredLogger
}

// NewZap creates a folioevict.Logger from a zap.Logger.
func NewZap(logger *zap.Logger) folioevict.Logger {
	return &Zap{sugar: logger.Sugar()}
}

// Error logs an error message with key-value pairs.
func (z *Zap) Error(msg string, args ...any) {
	z.sugar.Errorw(msg, args...)
}

// Warn logs a warning message with key-value pairs.
func (z *Zap) Warn(msg string, args ...any) {
	z.sugar.Warnw(msg, args...)
}

// Info logs an info message with key-value pairs.
func (z *Zap) Info(msg string, args ...any) {
	z.sugar.Infow(msg, args...)
}

// Debug logs a debug message with key-value pairs.
func (z *Zap) Debug(msg string, args ...any) {
	z.sugar.Debugw(msg, args...)
}
