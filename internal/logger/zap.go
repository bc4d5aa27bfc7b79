// Package logger backs the contracts.Logger abstraction with zap.
package logger

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/miditape/miditape/sdk/contracts"
)

// ZapLogger implements contracts.Logger on top of a zap.Logger.
type ZapLogger struct {
	logger *zap.Logger
	level  zap.AtomicLevel
}

// NewZapLogger creates a production-configured zap logger at InfoLevel.
func NewZapLogger() contracts.Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{logger: logger, level: level}
}

// Nop returns a logger that discards everything, for tests.
func Nop() contracts.Logger {
	return &ZapLogger{logger: zap.NewNop(), level: zap.NewAtomicLevel()}
}

func (z *ZapLogger) Info(msg string, fields ...contracts.Field) {
	z.logger.Info(msg, unwrap(fields)...)
}

func (z *ZapLogger) Error(msg string, fields ...contracts.Field) {
	z.logger.Error(msg, unwrap(fields)...)
}

func (z *ZapLogger) Debug(msg string, fields ...contracts.Field) {
	z.logger.Debug(msg, unwrap(fields)...)
}

func (z *ZapLogger) Warn(msg string, fields ...contracts.Field) {
	z.logger.Warn(msg, unwrap(fields)...)
}

func (z *ZapLogger) Fatal(msg string, fields ...contracts.Field) {
	z.logger.Fatal(msg, unwrap(fields)...)
}

// Field returns a fresh field builder.
func (z *ZapLogger) Field() contracts.Field {
	return zapField{}
}

// SetLevel maps the contract level onto the zap atomic level.
func (z *ZapLogger) SetLevel(level contracts.LogLevel) {
	switch level {
	case contracts.DebugLevel:
		z.level.SetLevel(zapcore.DebugLevel)
	case contracts.ErrorLevel:
		z.level.SetLevel(zapcore.ErrorLevel)
	case contracts.WarnLevel:
		z.level.SetLevel(zapcore.WarnLevel)
	case contracts.FatalLevel:
		z.level.SetLevel(zapcore.FatalLevel)
	default:
		z.level.SetLevel(zapcore.InfoLevel)
	}
}

func unwrap(fields []contracts.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if zf, ok := f.(zapField); ok {
			out = append(out, zf.field)
		}
	}
	return out
}

// zapField carries one zap.Field behind the contracts.Field builder.
type zapField struct {
	field zap.Field
}

func (zapField) Bool(key string, val bool) contracts.Field {
	return zapField{field: zap.Bool(key, val)}
}

func (zapField) Int(key string, val int) contracts.Field {
	return zapField{field: zap.Int(key, val)}
}

func (zapField) Float64(key string, val float64) contracts.Field {
	return zapField{field: zap.Float64(key, val)}
}

func (zapField) String(key string, val string) contracts.Field {
	return zapField{field: zap.String(key, val)}
}

func (zapField) Time(key string, val time.Time) contracts.Field {
	return zapField{field: zap.Time(key, val)}
}

func (zapField) Int64(key string, val int64) contracts.Field {
	return zapField{field: zap.Int64(key, val)}
}

func (zapField) Error(key string, val error) contracts.Field {
	return zapField{field: zap.NamedError(key, val)}
}

func (zapField) Uint64(key string, val uint64) contracts.Field {
	return zapField{field: zap.Uint64(key, val)}
}

func (zapField) Uint8(key string, val uint8) contracts.Field {
	return zapField{field: zap.Uint8(key, val)}
}
