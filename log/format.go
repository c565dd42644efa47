package log

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Format turns a Record into the bytes a Handler writes out.
type Format interface {
	Format(r *Record) []byte
}

type formatFunc func(*Record) []byte

func (f formatFunc) Format(r *Record) []byte { return f(r) }

var levelColor = map[Lvl]*color.Color{
	LvlCrit:  color.New(color.FgMagenta, color.Bold),
	LvlError: color.New(color.FgRed, color.Bold),
	LvlWarn:  color.New(color.FgYellow),
	LvlInfo:  color.New(color.FgGreen),
	LvlDebug: color.New(color.FgCyan),
	LvlTrace: color.New(color.FgWhite),
}

// TerminalFormat renders records as "LVL[timestamp] msg key=value ...",
// colorizing the level when stderr is an interactive terminal. Windows
// consoles that don't understand ANSI escapes are handled transparently
// via go-colorable; go-isatty decides whether color escapes are emitted
// at all.
func TerminalFormat() Format {
	useColor := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	return formatFunc(func(r *Record) []byte {
		var b strings.Builder
		lvl := r.Lvl.String()
		if useColor {
			if c, ok := levelColor[r.Lvl]; ok {
				lvl = c.Sprint(padLevel(r.Lvl.String()))
			}
		} else {
			lvl = padLevel(r.Lvl.String())
		}
		fmt.Fprintf(&b, "%s[%s] %s", lvl, r.Time.Format("2006-01-02T15:04:05.000"), r.Msg)
		for i := 0; i+1 < len(r.Ctx); i += 2 {
			fmt.Fprintf(&b, " %v=%v", r.Ctx[i], formatValue(r.Ctx[i+1]))
		}
		if r.HasCall {
			fmt.Fprintf(&b, " caller=%+v", r.Call)
		}
		b.WriteByte('\n')
		return []byte(b.String())
	})
}

func padLevel(s string) string {
	for len(s) < 5 {
		s += " "
	}
	return s
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case error:
		return x.Error()
	case string:
		if strings.ContainsAny(x, " \t\"") {
			return strconvQuote(x)
		}
		return x
	default:
		return fmt.Sprintf("%v", x)
	}
}

func strconvQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// Stderr wraps os.Stderr with Windows ANSI-escape translation so the
// colorized TerminalFormat output renders correctly in cmd.exe/PowerShell
// as well as real terminals.
var Stderr = colorable.NewColorableStderr()
