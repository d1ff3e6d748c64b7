package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andrewpaige1/flashcards-api/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	defaultSlowThreshold = 200 * time.Millisecond
	defaultGormLogLevel  = gormlogger.Warn
)

// gormZapLogger sends gorm's query log through the application logger.
type gormZapLogger struct {
	log                       *logger.Logger
	slowThreshold             time.Duration
	ignoreRecordNotFoundError bool
	logLevel                  gormlogger.LogLevel
}

func newGormLogger(log *logger.Logger, levelValue string) (gormlogger.Interface, error) {
	level := defaultGormLogLevel
	var levelErr error
	if strings.TrimSpace(levelValue) != "" {
		level, levelErr = parseGormLogLevel(levelValue)
	}
	return &gormZapLogger{
		log:                       log.With("component", "gorm"),
		slowThreshold:             defaultSlowThreshold,
		ignoreRecordNotFoundError: true,
		logLevel:                  level,
	}, levelErr
}

func (l *gormZapLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.logLevel = level
	return &clone
}

func (l *gormZapLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.enabled(gormlogger.Info) {
		l.log.Info(fmt.Sprintf(msg, data...))
	}
}

func (l *gormZapLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.enabled(gormlogger.Warn) {
		l.log.Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *gormZapLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.enabled(gormlogger.Error) {
		l.log.Error(fmt.Sprintf(msg, data...))
	}
}

func (l *gormZapLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.logLevel == gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil:
		if l.ignoreRecordNotFoundError && errors.Is(err, gorm.ErrRecordNotFound) {
			return
		}
		if l.enabled(gormlogger.Error) {
			l.log.Error("gorm query error", "elapsed", elapsed, "rows", rows, "sql", sql, "error", err)
		}
	case l.slowThreshold > 0 && elapsed > l.slowThreshold:
		if l.enabled(gormlogger.Warn) {
			l.log.Warn("gorm slow query", "elapsed", elapsed, "rows", rows, "sql", sql, "threshold", l.slowThreshold)
		}
	default:
		if l.enabled(gormlogger.Info) {
			l.log.Debug("gorm query", "elapsed", elapsed, "rows", rows, "sql", sql)
		}
	}
}

func (l *gormZapLogger) enabled(level gormlogger.LogLevel) bool {
	return l.logLevel != gormlogger.Silent && l.logLevel >= level
}

func parseGormLogLevel(value string) (gormlogger.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "silent":
		return gormlogger.Silent, nil
	case "error":
		return gormlogger.Error, nil
	case "warn":
		return gormlogger.Warn, nil
	case "info":
		return gormlogger.Info, nil
	default:
		return defaultGormLogLevel, fmt.Errorf("invalid gorm log level %q", value)
	}
}
