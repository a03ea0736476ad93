package telemetry

import (
	"fmt"
	"strings"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap/zapcore"
)

// SentryCore implements zapcore.Core and reports Error and higher entries to Sentry.
type SentryCore struct {
	zapcore.LevelEnabler
	fields []zapcore.Field
}

// NewSentryCore creates a SentryCore using the current Sentry hub.
func NewSentryCore(enab zapcore.LevelEnabler) *SentryCore {
	return &SentryCore{LevelEnabler: enab}
}

// With adds structured context to the Core.
func (c *SentryCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(append([]zapcore.Field(nil), c.fields...), fields...)
	return &clone
}

// Check determines whether the supplied Entry should be logged.
func (c *SentryCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) && ent.Level >= zapcore.ErrorLevel {
		return ce.AddCore(ent, c)
	}
	return ce
}

// Write sends the entry to Sentry as an exception event.
func (c *SentryCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	hub := sentry.CurrentHub()
	if hub.Client() == nil {
		return nil
	}

	all := append(append([]zapcore.Field(nil), c.fields...), fields...)

	enc := zapcore.NewMapObjectEncoder()
	var errorValues []string
	for _, field := range all {
		if field.Type == zapcore.ErrorType {
			if err, ok := field.Interface.(error); ok {
				errorValues = append(errorValues, err.Error())
			}
			continue
		}
		field.AddTo(enc)
	}

	event := sentry.NewEvent()
	event.Level = sentryLevel(ent.Level)
	event.Message = ent.Message
	event.Logger = ent.LoggerName
	event.Extra = enc.Fields

	value := ent.Message
	if len(errorValues) > 0 {
		value = fmt.Sprintf("%s: %s", ent.Message, strings.Join(errorValues, "; "))
	}

	module, function := splitFunction(ent.Caller.Function)
	event.Exception = []sentry.Exception{{
		Type:       function,
		Value:      value,
		Module:     module,
		Stacktrace: sentry.NewStacktrace(),
	}}

	hub.CaptureEvent(event)
	return nil
}

// Sync implements zapcore.Core.
func (c *SentryCore) Sync() error {
	return nil
}

func sentryLevel(level zapcore.Level) sentry.Level {
	switch level {
	case zapcore.ErrorLevel:
		return sentry.LevelError
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return sentry.LevelFatal
	default:
		return sentry.LevelInfo
	}
}

// splitFunction separates "github.com/a/b/pkg.(*T).Method" into its package
// path and the trailing function name.
func splitFunction(function string) (string, string) {
	if function == "" {
		return "", ""
	}

	lastSlash := strings.LastIndexByte(function, '/')
	dot := strings.IndexByte(function[lastSlash+1:], '.')
	if dot < 0 {
		return "", function
	}
	dot += lastSlash + 1

	lastDot := strings.LastIndexByte(function, '.')
	return function[:dot], function[lastDot+1:]
}
