package cli

import (
	"context"
	"io"
	"strings"

	"github.com/goliatone/go-logger/glog"

	stagehand "github.com/goliatone/go-stagehand"
)

// glogLogger adapts a go-logger logger to stagehand.Logger.
type glogLogger struct {
	logger glog.Logger
}

func (l glogLogger) Trace(msg string, args ...any) { l.logger.Trace(msg, args...) }
func (l glogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l glogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l glogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l glogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }
func (l glogLogger) Fatal(msg string, args ...any) { l.logger.Fatal(msg, args...) }

func (l glogLogger) WithContext(ctx context.Context) stagehand.Logger {
	return glogLogger{logger: l.logger.WithContext(ctx)}
}

func (l glogLogger) WithFields(fields map[string]any) stagehand.Logger {
	if fl, ok := l.logger.(glog.FieldsLogger); ok {
		return glogLogger{logger: fl.WithFields(fields)}
	}
	return l
}

// NewLogger builds the binary's logger. Format "json" emits JSON lines,
// anything else the console layout.
func NewLogger(w io.Writer, level, format string) stagehand.Logger {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = "info"
	}

	var base glog.Logger
	if strings.EqualFold(format, "json") {
		base = glog.NewLogger(
			glog.WithWriter(w),
			glog.WithLoggerTypeJSON(),
			glog.WithLevel(level),
		)
	} else {
		base = glog.NewLogger(
			glog.WithWriter(w),
			glog.WithLevel(level),
		)
	}
	return glogLogger{logger: base}
}
