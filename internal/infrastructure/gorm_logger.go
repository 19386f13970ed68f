package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/mateusmacedo/go-reservas/pkg/application"
)

// gormLoggerAdapter envia os logs do gorm para o AppLogger. Consultas lentas viram warn,
// as demais vão para trace.
type gormLoggerAdapter struct {
	appLogger     application.AppLogger
	level         gormLogger.LogLevel
	slowThreshold time.Duration
}

func NewGormLogger(appLogger application.AppLogger, slowThreshold time.Duration) gormLogger.Interface {
	if slowThreshold <= 0 {
		slowThreshold = 200 * time.Millisecond
	}
	return &gormLoggerAdapter{
		appLogger:     appLogger,
		level:         gormLogger.Warn,
		slowThreshold: slowThreshold,
	}
}

func (l *gormLoggerAdapter) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormLoggerAdapter) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormLogger.Info {
		l.appLogger.Info(ctx, fmt.Sprintf(msg, args...), map[string]interface{}{"component": "gorm"})
	}
}

func (l *gormLoggerAdapter) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormLogger.Warn {
		l.appLogger.Warn(ctx, fmt.Sprintf(msg, args...), map[string]interface{}{"component": "gorm"})
	}
}

func (l *gormLoggerAdapter) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormLogger.Error {
		l.appLogger.Error(ctx, fmt.Sprintf(msg, args...), map[string]interface{}{"component": "gorm"})
	}
}

func (l *gormLoggerAdapter) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormLogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := map[string]interface{}{
		"component": "gorm",
		"sql":       sql,
		"rows":      rows,
		"elapsed":   elapsed.String(),
	}

	switch {
	case err != nil && l.level >= gormLogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		application.LogError(ctx, l.appLogger, "query failed", err, fields)
	case elapsed > l.slowThreshold && l.level >= gormLogger.Warn:
		application.LogWarn(ctx, l.appLogger, "slow query", nil, fields)
	case l.level >= gormLogger.Info:
		application.LogTrace(ctx, l.appLogger, "query", fields)
	}
}
