package logger

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pharmalink/ledger/internal/types"
)

const slowQueryThreshold = 200 * time.Millisecond

// gormLogger adapts Logger to gorm's logger.Interface
type gormLogger struct {
	logger *Logger
	level  gormlogger.LogLevel
}

// GetGormLogger returns a gorm-compatible logger honouring the configured db log level
func (l *Logger) GetGormLogger(level types.LogLevel) gormlogger.Interface {
	gl := gormlogger.Warn
	switch level {
	case types.LogLevelDebug:
		gl = gormlogger.Info
	case types.LogLevelError:
		gl = gormlogger.Error
	}
	return &gormLogger{logger: l, level: gl}
}

func (g *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &gormLogger{logger: g.logger, level: level}
}

func (g *gormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Info {
		g.logger.WithContext(ctx).Infof(msg, args...)
	}
}

func (g *gormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Warn {
		g.logger.WithContext(ctx).Warnf(msg, args...)
	}
}

func (g *gormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Error {
		g.logger.WithContext(ctx).Errorf(msg, args...)
	}
}

func (g *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && g.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		g.logger.WithContext(ctx).Errorw("db_query_failed",
			"sql", sql,
			"rows", rows,
			"elapsed_ms", elapsed.Milliseconds(),
			"error", err,
		)
	case elapsed > slowQueryThreshold && g.level >= gormlogger.Warn:
		sql, rows := fc()
		g.logger.WithContext(ctx).Warnw("db_slow_query",
			"sql", sql,
			"rows", rows,
			"elapsed_ms", elapsed.Milliseconds(),
		)
	case g.level >= gormlogger.Info:
		sql, rows := fc()
		g.logger.WithContext(ctx).Debugw("db_query",
			"sql", sql,
			"rows", rows,
			"elapsed_ms", elapsed.Milliseconds(),
		)
	}
}
