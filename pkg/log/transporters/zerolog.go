// Package transporters contains log.Transporter implementations.
package transporters

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"postgrab/pkg/log"
)

// Zerolog renders entries with zerolog, as line-delimited JSON or as
// human-readable console output.
type Zerolog struct {
	logger zerolog.Logger
}

// NewZerolog writes JSON entries to w.
func NewZerolog(w io.Writer) *Zerolog {
	return &Zerolog{logger: zerolog.New(w)}
}

// NewZerologConsole writes colourless console lines to w.
func NewZerologConsole(w io.Writer) *Zerolog {
	return NewZerolog(zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05"})
}

// NewStdout writes JSON entries to os.Stdout, or console lines when pretty.
func NewStdout(pretty bool) *Zerolog {
	if pretty {
		return NewZerologConsole(os.Stdout)
	}
	return NewZerolog(os.Stdout)
}

func (z *Zerolog) Name() string {
	return "zerolog"
}

// Write emits the entry. Fatal entries are written at fatal level without
// exiting the process.
func (z *Zerolog) Write(entry log.Entry) error {
	ev := z.logger.WithLevel(zerologLevel(entry.Level)).
		Time(zerolog.TimestampFieldName, entry.Timestamp.UTC())
	if entry.Caller != "" {
		ev = ev.Str(zerolog.CallerFieldName, entry.Caller)
	}
	if entry.RequestID != "" {
		ev = ev.Str("request_id", entry.RequestID)
	}
	if len(entry.Fields) > 0 {
		ev = ev.Fields(entry.Fields)
	}
	ev.Msg(entry.Message)
	return nil
}

func (z *Zerolog) Close() error {
	return nil
}

func zerologLevel(l log.Level) zerolog.Level {
	switch l {
	case log.Trace:
		return zerolog.TraceLevel
	case log.Debug:
		return zerolog.DebugLevel
	case log.Info:
		return zerolog.InfoLevel
	case log.Warn:
		return zerolog.WarnLevel
	case log.Error:
		return zerolog.ErrorLevel
	case log.Fatal:
		return zerolog.FatalLevel
	default:
		return zerolog.NoLevel
	}
}
