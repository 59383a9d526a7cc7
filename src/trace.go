package svftap

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lestrrat-go/strftime"
)

/*-------------------------------------------------------------
 *
 * Purpose:	Per-day transaction trace log: one line per completed
 *		SIR/SDR HAL transaction, recording its kind, the number of
 *		plans handed to the HAL and the mismatch count. Mirrors the reference tool's daily-log-name feature
 *		(log_init(daily_names=true, ...)) using strftime layouts
 *		instead of hand-built date strings.
 *
 *--------------------------------------------------------------*/

const traceNamePattern = "svftap-%Y%m%d.log"

// TraceLog appends one line per SIR/SDR HAL transaction to a daily-rotated file
// under dir. A zero-value TraceLog (dir == "") is a no-op sink.
type TraceLog struct {
	dir string
	cur string
	f   *os.File
}

func NewTraceLog(dir string) *TraceLog {
	return &TraceLog{dir: dir}
}

func (t *TraceLog) fileNameFor(now time.Time) (string, error) {
	return strftime.Format(traceNamePattern, now)
}

func (t *TraceLog) rotateIfNeeded(now time.Time) error {
	if t.dir == "" {
		return nil
	}
	name, err := t.fileNameFor(now)
	if err != nil {
		return err
	}
	if name == t.cur && t.f != nil {
		return nil
	}
	if t.f != nil {
		t.f.Close()
	}
	full := filepath.Join(t.dir, name)
	f, err := os.OpenFile(full, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	t.f = f
	t.cur = name
	return nil
}

// Record appends one completed-command line; errors are non-fatal (a
// trace log is diagnostic, never load-bearing for the parse itself).
func (t *TraceLog) Record(now time.Time, cmd CommandKind, plans []TransmissionPlan, mismatches int) {
	if t.dir == "" {
		return
	}
	if err := t.rotateIfNeeded(now); err != nil {
		return
	}
	fmt.Fprintf(t.f, "%s %s regions=%d mismatches=%d\n", now.Format(time.RFC3339), cmd, len(plans), mismatches)
}

func (t *TraceLog) Close() error {
	if t.f == nil {
		return nil
	}
	return t.f.Close()
}
