package ftp

import (
	gnlog "github.com/fclairamb/go-log"

	"github.com/ftpgram/ftpgram/internal/logger"
)

// engineLogger forwards the protocol engine's log events to the process
// logger. Engine chatter stays at debug except for explicit error events.
type engineLogger struct {
	keyvals []any
}

var _ gnlog.Logger = (*engineLogger)(nil)

func newEngineLogger() gnlog.Logger {
	return &engineLogger{}
}

func (l *engineLogger) merge(keyvals []any) []any {
	if len(l.keyvals) == 0 {
		return keyvals
	}
	merged := make([]any, 0, len(l.keyvals)+len(keyvals))
	merged = append(merged, l.keyvals...)
	merged = append(merged, keyvals...)
	return merged
}

func (l *engineLogger) Debug(event string, keyvals ...any) {
	logger.Debug(event, l.merge(keyvals)...)
}

func (l *engineLogger) Info(event string, keyvals ...any) {
	logger.Debug(event, l.merge(keyvals)...)
}

func (l *engineLogger) Warn(event string, keyvals ...any) {
	logger.Warn(event, l.merge(keyvals)...)
}

func (l *engineLogger) Error(event string, keyvals ...any) {
	logger.Error(event, l.merge(keyvals)...)
}

func (l *engineLogger) Panic(event string, keyvals ...any) {
	logger.Error(event, l.merge(keyvals)...)
	panic(event)
}

func (l *engineLogger) With(keyvals ...any) gnlog.Logger {
	return &engineLogger{keyvals: l.merge(keyvals)}
}
