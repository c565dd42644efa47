// Package log provides leveled, structured logging in the style the rest
// of this codebase's teacher lineage (go-ethereum-derived node code) uses:
// log.Info("message", "key", value, "key2", value2) rather than a
// formatted string. No logging call here sits on a correctness path —
// every crawl decision is made independently of whether logging succeeds.
package log

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-stack/stack"
)

// Lvl is a log priority level, most to least severe.
type Lvl int

const (
	LvlCrit Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

func (l Lvl) String() string {
	switch l {
	case LvlCrit:
		return "CRIT"
	case LvlError:
		return "ERROR"
	case LvlWarn:
		return "WARN"
	case LvlInfo:
		return "INFO"
	case LvlDebug:
		return "DEBUG"
	case LvlTrace:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// LvlFromString parses a level name or the geth-style numeric 0-5 level.
// Unrecognized input falls back to LvlInfo rather than erroring, since a
// bad MY_LOG_LEVEL value shouldn't stop the crawl from starting.
func LvlFromString(s string) Lvl {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		switch {
		case n <= int(LvlCrit):
			return LvlCrit
		case n >= int(LvlTrace):
			return LvlTrace
		default:
			return Lvl(n)
		}
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "crit", "critical":
		return LvlCrit
	case "error", "err":
		return LvlError
	case "warn", "warning":
		return LvlWarn
	case "info":
		return LvlInfo
	case "debug", "dbug":
		return LvlDebug
	case "trace":
		return LvlTrace
	default:
		return LvlInfo
	}
}

// Record is one log event, passed through a Handler chain.
type Record struct {
	Time    time.Time
	Lvl     Lvl
	Msg     string
	Ctx     []interface{}
	Call    stack.Call
	HasCall bool
}

// Logger writes leveled, structured messages to its Handler.
type Logger interface {
	New(ctx ...interface{}) Logger
	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})
	SetHandler(h Handler)
}

type logger struct {
	ctx []interface{}
	h   *swapHandler
}

// swapHandler lets Root()'s handler be replaced after loggers derived
// from it via New() have already been constructed.
type swapHandler struct {
	handler Handler
}

func (s *swapHandler) Log(r *Record) error { return s.handler.Log(r) }

func newLogger(ctx []interface{}) *logger {
	return &logger{ctx: ctx, h: new(swapHandler)}
}

func (l *logger) write(msg string, lvl Lvl, ctx []interface{}, skip int) {
	r := &Record{
		Time: time.Now(),
		Lvl:  lvl,
		Msg:  msg,
		Ctx:  newContext(l.ctx, ctx),
	}
	if lvl >= LvlDebug {
		r.Call = stack.Caller(skip)
		r.HasCall = true
	}
	_ = l.h.Log(r)
}

func (l *logger) New(ctx ...interface{}) Logger {
	child := &logger{ctx: newContext(l.ctx, ctx), h: new(swapHandler)}
	child.SetHandler(l.h)
	return child
}

func (l *logger) SetHandler(h Handler) { l.h.handler = h }

func (l *logger) Trace(msg string, ctx ...interface{}) { l.write(msg, LvlTrace, ctx, 2) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.write(msg, LvlDebug, ctx, 2) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.write(msg, LvlInfo, ctx, 2) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.write(msg, LvlWarn, ctx, 2) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.write(msg, LvlError, ctx, 2) }
func (l *logger) Crit(msg string, ctx ...interface{}) {
	l.write(msg, LvlCrit, ctx, 2)
	os.Exit(1)
}

func newContext(prefix []interface{}, suffix []interface{}) []interface{} {
	normalized := normalize(suffix)
	total := make([]interface{}, 0, len(prefix)+len(normalized))
	total = append(total, prefix...)
	total = append(total, normalized...)
	return total
}

// normalize pads an odd-length key/value list with a sentinel value so a
// careless caller ("missing value" bugs) never panics downstream.
func normalize(ctx []interface{}) []interface{} {
	if len(ctx)%2 != 0 {
		ctx = append(ctx, "LOG_ERROR_MISSING_VALUE")
	}
	return ctx
}

var root = newLogger(nil)

func init() {
	lvl := LvlInfo
	if env := os.Getenv("MY_LOG_LEVEL"); env != "" {
		lvl = LvlFromString(env)
	}
	root.SetHandler(LvlFilterHandler(lvl, StreamHandler(Stderr, TerminalFormat())))
}

// Root returns the root logger, the default sink for New()'s children.
func Root() Logger { return root }

// SetLevel replaces the root logger's filter level, preserving its
// output destination and format.
func SetLevel(lvl Lvl) {
	root.SetHandler(LvlFilterHandler(lvl, StreamHandler(Stderr, TerminalFormat())))
}

// New derives a child logger of Root() carrying the given context pairs
// on every subsequent call.
func New(ctx ...interface{}) Logger { return root.New(ctx...) }

func Trace(msg string, ctx ...interface{}) { root.write(msg, LvlTrace, ctx, 2) }
func Debug(msg string, ctx ...interface{}) { root.write(msg, LvlDebug, ctx, 2) }
func Info(msg string, ctx ...interface{})  { root.write(msg, LvlInfo, ctx, 2) }
func Warn(msg string, ctx ...interface{})  { root.write(msg, LvlWarn, ctx, 2) }
func Error(msg string, ctx ...interface{}) { root.write(msg, LvlError, ctx, 2) }
func Crit(msg string, ctx ...interface{}) {
	root.write(msg, LvlCrit, ctx, 2)
	os.Exit(1)
}
