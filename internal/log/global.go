package log

import "sync/atomic"

var defaultLogger atomic.Pointer[Logger]

// SetDefaultLogger installs the process logger used by components built
// without one. Passing nil restores the lazily built default.
func SetDefaultLogger(logger *Logger) {
	defaultLogger.Store(logger)
}

// DefaultLogger returns the process logger. The first call without an
// installed logger builds one from DefaultConfig.
func DefaultLogger() *Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	l := Default()
	if defaultLogger.CompareAndSwap(nil, l) {
		return l
	}
	if cur := defaultLogger.Load(); cur != nil {
		return cur
	}
	return l
}
