package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/notexe/reminder-cli/internal/daemon"
)

// FormatDaemonStatus renders liveness and the last heartbeat.
func (f *Formatter) FormatDaemonStatus(st daemon.Status, now time.Time, interval time.Duration) string {
	var lines []string
	switch {
	case st.Running && st.Stale(now, interval):
		lines = append(lines, f.FormatWarning(fmt.Sprintf("Daemon is running (PID: %d) but has not completed a cycle recently", st.PID)))
	case st.Running:
		lines = append(lines, f.FormatSuccess(fmt.Sprintf("Daemon is running (PID: %d)", st.PID)))
	default:
		lines = append(lines, f.FormatFailure("Daemon is not running"))
	}

	if !st.HasHeartbeat {
		return strings.Join(lines, "\n")
	}
	hb := st.Heartbeat
	if st.Running {
		lines = append(lines, "  "+f.field("Started", f.FormatTime(hb.StartedAt)))
		lines = append(lines, "  "+f.field("Fired", plural(hb.Fired, "reminder")))
	}
	if !hb.LastCycleAt.IsZero() {
		lines = append(lines, "  "+f.field("Last cycle", f.FormatTime(hb.LastCycleAt)+
			f.FormatDim(" ("+humanize.RelTime(hb.LastCycleAt, now, "ago", "from now")+")")))
	}
	if hb.LastError != "" {
		lines = append(lines, "  "+f.field("Last error", f.render(ErrorStyle, hb.LastError)))
	}
	return strings.Join(lines, "\n")
}

// FormatLogInfo renders the log location and usage against maxSizeMB.
// rotated is the combined size of the rotated backups.
func (f *Formatter) FormatLogInfo(path string, current, rotated int64, maxSizeMB int) string {
	lines := []string{
		f.field("Log file", path),
		f.field("Size", fmt.Sprintf("%s / %s", humanize.IBytes(uint64(current)), humanize.IBytes(uint64(maxSizeMB)<<20))),
	}
	if rotated > 0 {
		lines = append(lines, f.field("Backups", humanize.IBytes(uint64(rotated))))
	}
	return strings.Join(lines, "\n")
}

func (f *Formatter) FormatLogLines(lines []string) string {
	if len(lines) == 0 {
		return "No logs found."
	}
	if !f.colored {
		return strings.Join(lines, "\n")
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		switch {
		case strings.Contains(line, "\tERROR\t"):
			out[i] = ErrorStyle.Render(line)
		case strings.Contains(line, "\tWARN\t"):
			out[i] = WarningStyle.Render(line)
		default:
			out[i] = line
		}
	}
	return strings.Join(out, "\n")
}
