package bridge

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/synology-community/dsm-mqtt-bridge/bridge/client"
)

// zeroLogger adapts zerolog to the keysAndValues Logger contract shared by
// the client, coordinator and publisher.
type zeroLogger struct {
	l zerolog.Logger
}

// NewLogger builds the bridge logger. Unknown levels fall back to info.
func NewLogger(level string) client.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().Timestamp().Logger()
	return &zeroLogger{l: l}
}

func (z *zeroLogger) Error(msg string, keysAndValues ...interface{}) {
	withFields(z.l.Error(), keysAndValues).Msg(msg)
}

func (z *zeroLogger) Warn(msg string, keysAndValues ...interface{}) {
	withFields(z.l.Warn(), keysAndValues).Msg(msg)
}

func (z *zeroLogger) Info(msg string, keysAndValues ...interface{}) {
	withFields(z.l.Info(), keysAndValues).Msg(msg)
}

func (z *zeroLogger) Debug(msg string, keysAndValues ...interface{}) {
	withFields(z.l.Debug(), keysAndValues).Msg(msg)
}

func withFields(ev *zerolog.Event, keysAndValues []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, keysAndValues[i+1])
	}
	return ev
}
