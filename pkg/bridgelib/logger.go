package bridgelib

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// Level is the severity of a log message. Lower values are more severe.
type Level int

const (
	LevelError Level = iota
	LevelInfo
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLevel maps a configured level name to its Level. Unknown names
// are a configuration error.
func ParseLevel(name string) (Level, error) {
	switch name {
	case "error":
		return LevelError, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	}
	return 0, fmt.Errorf("unknown log level %q", name)
}

// Fields carries optional structured data attached to a message.
type Fields map[string]any

// Sink receives every message that passes the threshold filter. An
// empty message is a visual separator: sinks render it as a blank
// line, not a formatted entry.
type Sink func(level Level, msg string, fields Fields)

// Logger filters messages against a threshold before handing them to
// its sink. A message at level L is emitted iff L <= threshold.
type Logger struct {
	threshold Level
	sink      Sink
}

// NewLogger builds a logger over sink. A nil sink discards everything.
func NewLogger(threshold Level, sink Sink) *Logger {
	if sink == nil {
		sink = func(Level, string, Fields) {}
	}
	return &Logger{threshold: threshold, sink: sink}
}

// Log emits msg when level passes the threshold. A level outside the
// defined set is a programming error and panics naming the value.
func (l *Logger) Log(level Level, msg string, fields Fields) {
	if level < LevelError || level > LevelDebug {
		panic(fmt.Sprintf("bridgelib: log called with unknown level %d", int(level)))
	}
	if level > l.threshold {
		return
	}
	l.sink(level, msg, fields)
}

func (l *Logger) Error(msg string, fields Fields) { l.Log(LevelError, msg, fields) }
func (l *Logger) Info(msg string, fields Fields)  { l.Log(LevelInfo, msg, fields) }
func (l *Logger) Debug(msg string, fields Fields) { l.Log(LevelDebug, msg, fields) }

// NewConsoleSink builds the default sink: a timestamped zerolog console
// writer on w. Empty messages print as a bare blank line.
func NewConsoleSink(w io.Writer) Sink {
	zl := zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	return func(level Level, msg string, fields Fields) {
		if msg == "" {
			fmt.Fprintln(w)
			return
		}
		var ev *zerolog.Event
		switch level {
		case LevelError:
			ev = zl.Error()
		case LevelDebug:
			ev = zl.Debug()
		default:
			ev = zl.Info()
		}
		for k, v := range fields {
			ev = ev.Interface(k, v)
		}
		ev.Msg(msg)
	}
}
