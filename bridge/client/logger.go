package client

// Logger is the leveled keysAndValues logging contract used throughout the
// bridge. It is satisfied by the zerolog adapter in package bridge and is
// compatible with retryablehttp.LeveledLogger.
type Logger interface {
	Error(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

type nopLogger struct{}

func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Debug(string, ...interface{}) {}

// NopLogger discards all log output.
var NopLogger Logger = nopLogger{}
