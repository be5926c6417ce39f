// Package zlog adapts github.com/rs/zerolog to logiface, for the binaries in
// this module.
package zlog

import (
	"io"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"
)

type (
	// Event is a logiface.Event backed by a *zerolog.Event.
	Event struct {
		logiface.UnimplementedEvent
		Z   *zerolog.Event
		msg string
		lvl logiface.Level
	}

	// Logger implements logiface.EventFactory and logiface.Writer.
	Logger struct {
		Z zerolog.Logger
	}
)

var (
	// compile time assertions

	_ logiface.Event                = (*Event)(nil)
	_ logiface.EventFactory[*Event] = (*Logger)(nil)
	_ logiface.Writer[*Event]       = (*Logger)(nil)
)

// New builds a logiface logger writing JSON lines to w, at the given level.
func New(w io.Writer, level logiface.Level) *logiface.Logger[logiface.Event] {
	return NewFromZerolog(zerolog.New(w).With().Timestamp().Logger(), level)
}

// NewConsole builds a logiface logger writing human-readable lines to w.
func NewConsole(w io.Writer, level logiface.Level) *logiface.Logger[logiface.Event] {
	return NewFromZerolog(zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).With().Timestamp().Logger(), level)
}

// NewFromZerolog wraps an existing zerolog.Logger.
func NewFromZerolog(z zerolog.Logger, level logiface.Level) *logiface.Logger[logiface.Event] {
	l := &Logger{Z: z}
	return logiface.New[*Event](
		logiface.WithEventFactory[*Event](l),
		logiface.WithWriter[*Event](l),
		logiface.WithLevel[*Event](level),
	).Logger()
}

// ParseLevel maps a level name (as accepted by logiface, e.g. "debug",
// "info", "warning", "err") to a logiface.Level.
func ParseLevel(s string) (logiface.Level, bool) {
	for l := logiface.LevelEmergency; l <= logiface.LevelTrace; l++ {
		if l.String() == s {
			return l, true
		}
	}
	switch s {
	case "warn":
		return logiface.LevelWarning, true
	case "error":
		return logiface.LevelError, true
	case "disabled", "off":
		return logiface.LevelDisabled, true
	}
	return logiface.LevelDisabled, false
}

func (x *Event) Level() logiface.Level {
	if x != nil {
		return x.lvl
	}
	return logiface.LevelDisabled
}

func (x *Event) AddField(key string, val any) {
	x.Z.Interface(key, val)
}

func (x *Event) AddMessage(msg string) bool {
	x.msg = msg
	return true
}

func (x *Event) AddError(err error) bool {
	x.Z.Err(err)
	return true
}

func (x *Event) AddString(key string, val string) bool {
	x.Z.Str(key, val)
	return true
}

func (x *Event) AddInt(key string, val int) bool {
	x.Z.Int(key, val)
	return true
}

func (x *Event) AddUint64(key string, val uint64) bool {
	x.Z.Uint64(key, val)
	return true
}

func (x *Event) AddBool(key string, val bool) bool {
	x.Z.Bool(key, val)
	return true
}

func (x *Event) AddDuration(key string, val time.Duration) bool {
	x.Z.Dur(key, val)
	return true
}

func (x *Event) AddTime(key string, val time.Time) bool {
	x.Z.Time(key, val)
	return true
}

func (x *Logger) NewEvent(level logiface.Level) *Event {
	if !level.Enabled() {
		return nil
	}
	r := Event{
		lvl: level,
	}
	switch level {
	case logiface.LevelTrace:
		r.Z = x.Z.Trace()
	case logiface.LevelDebug:
		r.Z = x.Z.Debug()
	case logiface.LevelInformational:
		r.Z = x.Z.Info()
	case logiface.LevelNotice, logiface.LevelWarning:
		r.Z = x.Z.Warn()
	case logiface.LevelError:
		r.Z = x.Z.Error()
	default:
		// critical and above; never exit or panic on behalf of a library
		r.Z = x.Z.WithLevel(zerolog.ErrorLevel)
	}
	return &r
}

func (x *Logger) Write(event *Event) error {
	event.Z.Msg(event.msg)
	return nil
}
