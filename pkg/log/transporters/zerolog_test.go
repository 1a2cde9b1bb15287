package transporters_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"postgrab/pkg/log"
	"postgrab/pkg/log/transporters"
)

func TestZerolog_Write_JSON(t *testing.T) {
	var buf bytes.Buffer
	tr := transporters.NewZerolog(&buf)

	err := tr.Write(log.Entry{
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:     log.Warn,
		Caller:    "embed.go:42",
		RequestID: "req-9",
		Message:   "slide wait timed out",
		Fields:    map[string]any{"advance": 3},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		`"level":"warn"`,
		`"message":"slide wait timed out"`,
		`"request_id":"req-9"`,
		`"caller":"embed.go:42"`,
		`"advance":3`,
		`"time":"2026-01-02T03:04:05Z"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestZerolog_Write_FatalDoesNotExit(t *testing.T) {
	var buf bytes.Buffer
	tr := transporters.NewZerolog(&buf)

	_ = tr.Write(log.Entry{Timestamp: time.Now(), Level: log.Fatal, Message: "bye", Fields: map[string]any{}})

	if !strings.Contains(buf.String(), `"level":"fatal"`) {
		t.Errorf("got %s", buf.String())
	}
}

func TestZerologConsole_Write(t *testing.T) {
	var buf bytes.Buffer
	tr := transporters.NewZerologConsole(&buf)

	_ = tr.Write(log.Entry{Timestamp: time.Now(), Level: log.Info, Message: "chrome started", Fields: map[string]any{}})

	out := buf.String()
	if !strings.Contains(out, "INF") || !strings.Contains(out, "chrome started") {
		t.Errorf("got %q", out)
	}
}
