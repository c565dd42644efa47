package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestLvlFromString(t *testing.T) {
	cases := map[string]Lvl{
		"debug": LvlDebug,
		"WARN":  LvlWarn,
		"5":     LvlTrace,
		"nope":  LvlInfo,
	}
	for in, want := range cases {
		if got := LvlFromString(in); got != want {
			t.Fatalf("LvlFromString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestStreamHandlerWritesFormattedRecord(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(nil)
	l.SetHandler(StreamHandler(&buf, TerminalFormat()))
	l.Info("hello", "key", "value")
	out := buf.String()
	if !strings.Contains(out, "hello") || !strings.Contains(out, "key=value") {
		t.Fatalf("unexpected log line: %q", out)
	}
}

func TestLvlFilterHandlerDropsVerbose(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(nil)
	l.SetHandler(LvlFilterHandler(LvlWarn, StreamHandler(&buf, TerminalFormat())))
	l.Info("should be dropped")
	l.Warn("should appear")
	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info record leaked through warn filter: %q", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Fatalf("warn record missing: %q", out)
	}
}

func TestNewDerivesContext(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(nil)
	l.SetHandler(StreamHandler(&buf, TerminalFormat()))
	child := l.New("run", "abc123")
	child.Info("crawling", "peer", "mc://a:1")
	out := buf.String()
	if !strings.Contains(out, "run=abc123") || !strings.Contains(out, "peer=mc://a:1") {
		t.Fatalf("missing inherited/own context: %q", out)
	}
}

func TestOddContextIsPadded(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(nil)
	l.SetHandler(StreamHandler(&buf, TerminalFormat()))
	l.Info("oops", "key")
	if !strings.Contains(buf.String(), "LOG_ERROR_MISSING_VALUE") {
		t.Fatalf("expected missing-value sentinel, got %q", buf.String())
	}
}
