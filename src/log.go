package svftap

import (
	"os"

	"github.com/charmbracelet/log"
)

/*-------------------------------------------------------------
 *
 * Purpose:	Leveled, categorized logging. The reference tool this was
 *		built from hand-rolled an ANSI color-tag system
 *		(text_color_set/dw_printf) because its core was cgo; here
 *		there's no such boundary, so the categories (info, error,
 *		debug, overrun-warning) become structured log fields on a
 *		real logging library instead of color codes.
 *
 *--------------------------------------------------------------*/

// Logger wraps *log.Logger with the category vocabulary the parser and
// HAL backends use, and a "trace" level below Debug for the original
// tool's character-by-character echo mode.
type Logger struct {
	*log.Logger
	traceEnabled bool
}

// NewLogger builds a Logger writing to stderr at the given level name
// ("trace", "debug", "info", "warn", "error").
func NewLogger(levelName string) *Logger {
	lvl, err := log.ParseLevel(levelName)
	if err != nil {
		lvl = log.InfoLevel
	}
	trace := levelName == "trace"
	if trace {
		lvl = log.DebugLevel
	}
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           lvl,
	})
	return &Logger{Logger: l, traceEnabled: trace}
}

// Tracef logs one raw cleaned-lexer character when trace mode is on,
// mirroring the reference tool's unconditional printf("%c", c) echo.
func (l *Logger) Tracef(format string, args ...interface{}) {
	if l == nil || !l.traceEnabled {
		return
	}
	l.Debugf(format, args...)
}

// ParseErrorLogged records a non-fatal ParseError at the severity-
// appropriate level; Overrun is a warning, everything else an error
// (all of them are swallowed by the caller regardless of level).
func (l *Logger) ParseErrorLogged(err *ParseError) {
	if l == nil || err == nil {
		return
	}
	switch err.Severity {
	case SeverityOverrun:
		l.Warn(err.Error(), "category", err.Severity.String(), "offset", err.Offset)
	default:
		l.Error(err.Error(), "category", err.Severity.String(), "offset", err.Offset)
	}
}
