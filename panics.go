package stagehand

import (
	"fmt"
	"runtime"
	"strings"
)

// PanicLogger receives a recovered panic. stack holds one frame per two
// lines, starting at the function that panicked.
type PanicLogger func(funcName string, err any, stack []byte, fields ...map[string]any)

// MakePanicHandler returns a function meant to be deferred directly; it
// recovers a panic and reports it through logger.
func MakePanicHandler(logger PanicLogger) func(funcName string, fields ...map[string]any) {
	return func(funcName string, fields ...map[string]any) {
		if err := recover(); err != nil {
			logger(funcName, err, captureStack(), fields...)
		}
	}
}

// LoggerPanicLogger reports recovered panics as error entries on logger. The
// call site fields travel with the entry next to the panic value and stack.
func LoggerPanicLogger(logger Logger) PanicLogger {
	logger = NormalizeLogger(logger)
	return func(funcName string, err any, stack []byte, fields ...map[string]any) {
		report := map[string]any{
			"panic_type": fmt.Sprintf("%T", err),
			"stack":      string(stack),
		}
		for _, f := range fields {
			report = mergeFields(f, report)
		}
		WithLoggerFields(logger, report).Error("recovered from panic in %s: %v", funcName, err)
	}
}

// captureStack renders the goroutine's frames below the panic, without the
// runtime's own panic machinery or the recovering handler.
func captureStack() []byte {
	pcs := make([]uintptr, 64)
	// skip runtime.Callers, captureStack and the deferred handler
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var all []runtime.Frame
	for {
		frame, more := frames.Next()
		all = append(all, frame)
		if !more {
			break
		}
	}

	start := 0
	for i, frame := range all {
		if frame.Function == "runtime.gopanic" {
			start = i + 1
		}
	}

	var sb strings.Builder
	for _, frame := range all[start:] {
		if strings.HasPrefix(frame.Function, "runtime.") {
			continue
		}
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
	}
	return []byte(sb.String())
}
