package logger

import "sync/atomic"

type holder struct{ l Logger }

// defLogger is the package level logger, replaced atomically by SetLogger.
var defLogger atomic.Pointer[holder]

func init() {
	defLogger.Store(&holder{l: NewSlog(InfoLevel, false)})
}

// Debug logs at debug level on the package level logger.
func Debug(msg string, keysAndValues ...any) { GetLogger().Debug(msg, keysAndValues...) }

// Info logs at info level on the package level logger.
func Info(msg string, keysAndValues ...any) { GetLogger().Info(msg, keysAndValues...) }

// Warn logs at warn level on the package level logger.
func Warn(msg string, keysAndValues ...any) { GetLogger().Warn(msg, keysAndValues...) }

// Error logs at error level on the package level logger.
func Error(msg string, keysAndValues ...any) { GetLogger().Error(msg, keysAndValues...) }

// Fatal logs at fatal level on the package level logger.
func Fatal(msg string, keysAndValues ...any) { GetLogger().Fatal(msg, keysAndValues...) }

// SetLevel changes the level of the package level logger.
func SetLevel(level LogLevel) { GetLogger().SetLevel(level) }

// GetLogger returns the package level logger.
func GetLogger() Logger {
	return defLogger.Load().l
}

// SetLogger replaces the package level logger, e.g. with one writing to a rotated file.
// A nil l is ignored.
func SetLogger(l Logger) {
	if l != nil {
		defLogger.Store(&holder{l: l})
	}
}

// With returns a child of the package level logger.
func With(keyValues ...any) Logger {
	return GetLogger().With(keyValues...)
}
