// Package report displays diagnostics and progress messages. A Reporter is
// synchronized: its methods can be called from multiple goroutines.
package report

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/pterm/pterm"
)

type Level int

// Enumeration of the log levels. Each level displays everything the levels
// below it display.
const (
	LevelSilent  Level = iota // Displays no output.
	LevelError                // Displays only errors.
	LevelWarn                 // Displays warnings and errors.
	LevelVerbose              // Displays all messages.
)

var levelNames = map[string]Level{
	"silent":  LevelSilent,
	"error":   LevelError,
	"warn":    LevelWarn,
	"verbose": LevelVerbose,
}

func ParseLevel(s string) (Level, error) {
	if lvl, ok := levelNames[s]; ok {
		return lvl, nil
	}

	return LevelSilent, fmt.Errorf("unknown log level %q", s)
}

var (
	ErrorStyle   = pterm.NewStyle(pterm.FgRed, pterm.Bold)
	WarnStyle    = pterm.NewStyle(pterm.FgYellow, pterm.Bold)
	SuccessStyle = pterm.NewStyle(pterm.FgLightGreen)
	InfoStyle    = pterm.NewStyle(pterm.FgCyan)
)

type Reporter struct {
	m *sync.Mutex

	out   io.Writer
	level Level
	color bool

	errors int
}

// NewReporter returns a Reporter writing to stderr.
func NewReporter(level Level, color bool) *Reporter {
	return NewReporterTo(os.Stderr, level, color)
}

func NewReporterTo(out io.Writer, level Level, color bool) *Reporter {
	return &Reporter{
		m:     &sync.Mutex{},
		out:   out,
		level: level,
		color: color,
	}
}

// Error displays a failed compilation. Compile errors already start with
// their file:line:col location.
func (r *Reporter) Error(err error) {
	r.m.Lock()
	defer r.m.Unlock()

	r.errors++
	if r.level >= LevelError {
		r.println(ErrorStyle, "error:", err.Error())
	}
}

func (r *Reporter) Warn(format string, args ...interface{}) {
	r.m.Lock()
	defer r.m.Unlock()

	if r.level >= LevelWarn {
		r.println(WarnStyle, "warning:", fmt.Sprintf(format, args...))
	}
}

func (r *Reporter) Info(format string, args ...interface{}) {
	r.m.Lock()
	defer r.m.Unlock()

	if r.level >= LevelVerbose {
		r.println(InfoStyle, "info:", fmt.Sprintf(format, args...))
	}
}

// Compiled displays a successful compilation of src into dst.
func (r *Reporter) Compiled(src, dst string) {
	r.m.Lock()
	defer r.m.Unlock()

	if r.level >= LevelVerbose {
		r.println(SuccessStyle, "compiled", fmt.Sprintf("%s -> %s", src, dst))
	}
}

// Summary displays the outcome of a batch build.
func (r *Reporter) Summary(total int, elapsed time.Duration) {
	r.m.Lock()
	defer r.m.Unlock()

	if r.level < LevelVerbose {
		return
	}

	msg := fmt.Sprintf("%d of %d file(s) compiled in %s", total-r.errors, total, elapsed.Round(time.Millisecond))
	if r.errors > 0 {
		r.println(ErrorStyle, "failed", msg)
		return
	}

	r.println(SuccessStyle, "done", msg)
}

// Errors returns the number of errors reported so far.
func (r *Reporter) Errors() int {
	r.m.Lock()
	defer r.m.Unlock()

	return r.errors
}

func (r *Reporter) println(style *pterm.Style, tag, msg string) {
	if r.color {
		tag = style.Sprint(tag)
	}

	fmt.Fprintln(r.out, tag, msg)
}
