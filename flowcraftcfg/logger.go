package flowcraftcfg

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is spec §6's four-method logger contract: debug/info/warn/error,
// each taking a message and an optional structured context. A nil
// implementation is acceptable per spec, which is what NullLogger is for.
type Logger interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

// zerologLogger adapts zerolog.Logger to the Logger contract.
type zerologLogger struct {
	z zerolog.Logger
}

// NewLogger builds a Logger writing human-readable console output at the
// given level (debug/info/warn/error; defaults to info on an unknown or
// empty value).
func NewLogger(level string) Logger {
	z := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger().
		Level(parseLevel(level))
	return &zerologLogger{z: z}
}

func parseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return parsed
}

func (l *zerologLogger) Debug(msg string, fields map[string]any) { l.log(l.z.Debug(), msg, fields) }
func (l *zerologLogger) Info(msg string, fields map[string]any)  { l.log(l.z.Info(), msg, fields) }
func (l *zerologLogger) Warn(msg string, fields map[string]any)  { l.log(l.z.Warn(), msg, fields) }
func (l *zerologLogger) Error(msg string, fields map[string]any) { l.log(l.z.Error(), msg, fields) }

func (l *zerologLogger) log(event *zerolog.Event, msg string, fields map[string]any) {
	if len(fields) > 0 {
		event = event.Fields(fields)
	}
	event.Msg(msg)
}

// NullLogger discards everything, for tests and hosts that don't want
// FlowCraft's own logging.
type NullLogger struct{}

func (NullLogger) Debug(string, map[string]any) {}
func (NullLogger) Info(string, map[string]any)  {}
func (NullLogger) Warn(string, map[string]any)  {}
func (NullLogger) Error(string, map[string]any) {}
