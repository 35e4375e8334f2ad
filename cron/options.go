package cron

import (
	"fmt"
	"io"
	"time"

	stagehand "github.com/goliatone/go-stagehand"
)

// LogLevel represents different logging levels
type LogLevel int

const (
	LogLevelSilent LogLevel = iota
	LogLevelError
	LogLevelInfo
	LogLevelDebug
)

// Parser represents a cron expression parser type
type Parser int

const (
	DefaultParser Parser = iota
	StandardParser
	SecondsParser
)

type Option func(*Scheduler)

// WithLocation sets the timezone location for the scheduler
func WithLocation(loc *time.Location) Option {
	return func(cs *Scheduler) {
		cs.location = loc
	}
}

// WithLogger routes the scheduler's own logs through logger.
func WithLogger(logger stagehand.Logger) Option {
	return func(cs *Scheduler) {
		cs.logger = logger
	}
}

// WithLogWriter sets a custom writer for logging
func WithLogWriter(writer io.Writer) Option {
	return func(cs *Scheduler) {
		cs.logWriter = writer
	}
}

func WithLogLevel(level LogLevel) Option {
	return func(cs *Scheduler) {
		cs.logLevel = level
	}
}

// WithErrorHandler receives job errors and recovered job panics.
func WithErrorHandler(handler func(error)) Option {
	return func(cs *Scheduler) {
		if handler == nil {
			handler = func(error) {}
		}
		cs.errorHandler = handler
	}
}

func WithParser(p Parser) Option {
	return func(cs *Scheduler) {
		cs.parser = p
	}
}

// loggerAdapter adapts a stagehand logger to robfig/cron's logger. Cron
// passes key/value pairs, which become fields.
type loggerAdapter struct {
	logger stagehand.Logger
	level  LogLevel
}

func (l *loggerAdapter) Info(msg string, keysAndValues ...any) {
	if l.level >= LogLevelInfo {
		stagehand.WithLoggerFields(l.logger, pairs(keysAndValues)).Debug("cron: %s", msg)
	}
}

func (l *loggerAdapter) Error(err error, msg string, keysAndValues ...any) {
	if l.level < LogLevelError {
		return
	}
	fields := pairs(keysAndValues)
	if err != nil {
		fields["error"] = err.Error()
	}
	stagehand.WithLoggerFields(l.logger, fields).Error("cron: %s", msg)
}

func pairs(keysAndValues []any) map[string]any {
	fields := make(map[string]any, len(keysAndValues)/2+1)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}

// errorHandlerAdapter adapts a simple error handler function to implement cron.Logger
type errorHandlerAdapter struct {
	handler func(error)
}

func (e *errorHandlerAdapter) Info(string, ...any) {}

func (e *errorHandlerAdapter) Error(err error, msg string, keysAndValues ...any) {
	if e.handler == nil {
		return
	}
	if err == nil {
		err = fmt.Errorf("%s %v", msg, keysAndValues)
	}
	e.handler(err)
}
