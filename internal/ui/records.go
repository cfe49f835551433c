package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/notexe/reminder-cli/internal/reminder"
)

const titleWidth = 28

func scheduleType(rec reminder.Record) string {
	if rec.Schedule.IsRecurring() {
		return "Recurring"
	}
	return "One-time"
}

func describeSchedule(rec reminder.Record, f *Formatter) string {
	if expr, ok := rec.Schedule.Cron(); ok {
		return expr
	}
	at, _ := rec.Schedule.FireAt()
	return f.FormatTime(at)
}

// FormatList renders records as a table ordered as given. Paused rows are
// yellow, completed rows dim, and the type column distinguishes one-time
// from recurring schedules.
func (f *Formatter) FormatList(records []reminder.Record) string {
	if len(records) == 0 {
		return "No reminders found."
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		next := f.FormatTime(rec.NextFireAt)
		if rec.Completed {
			next = "-"
		}
		rows = append(rows, []string{
			rec.ShortID(),
			truncate(rec.Title, titleWidth),
			next,
			scheduleType(rec),
			rec.Status(),
		})
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("ID", "Title", "Next Trigger", "Type", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if !f.colored {
				return cell
			}
			if row == table.HeaderRow {
				return cell.Inherit(HeaderStyle)
			}
			rec := records[row]
			switch {
			case rec.Completed:
				return cell.Inherit(CompletedStyle)
			case rec.Paused:
				return cell.Inherit(PausedStyle)
			case col == 3 && rec.Schedule.IsRecurring():
				return cell.Inherit(RecurringStyle)
			case col == 3:
				return cell.Inherit(OneShotStyle)
			}
			return cell
		})
	if f.colored {
		t = t.BorderStyle(lipgloss.NewStyle().Foreground(BorderColor))
	}

	return t.String()
}

// FormatRecord renders every field of rec for the show command. now is
// used for the relative next-trigger hint.
func (f *Formatter) FormatRecord(rec reminder.Record, now time.Time) string {
	lines := []string{
		f.field("ID", rec.ID),
		f.field("Title", f.render(HeaderStyle, rec.Title)),
	}
	if len(rec.Tags) > 0 {
		lines = append(lines, f.field("Tags", strings.Join(rec.Tags, ", ")))
	}
	lines = append(lines, f.field("Type", scheduleType(rec)))
	if expr, ok := rec.Schedule.Cron(); ok {
		lines = append(lines, f.field("Cron", expr))
	}
	lines = append(lines, f.field("Created", f.FormatTime(rec.CreatedAt)))

	if !rec.Completed {
		next := f.FormatTime(rec.NextFireAt)
		if !rec.Paused {
			next += f.FormatDim(" (" + humanize.RelTime(rec.NextFireAt, now, "ago", "from now") + ")")
		}
		lines = append(lines, f.field("Next", next))
	}
	if rec.LastFiredAt != nil {
		lines = append(lines, f.field("Last fired", f.FormatTime(*rec.LastFiredAt)))
	}
	lines = append(lines, f.field("Status", rec.Status()))

	if rec.Description != "" {
		lines = append(lines, "", f.renderMarkdown(rec.Description))
	}
	return strings.Join(lines, "\n")
}

// FormatSummary renders the short confirmation shown after add and edit.
func (f *Formatter) FormatSummary(headline string, rec reminder.Record) string {
	lines := []string{
		f.FormatSuccess(headline),
		"  " + f.field("ID", fmt.Sprintf("%s (short: %s)", rec.ID, rec.ShortID())),
		"  " + f.field("Title", rec.Title),
	}
	if rec.Description != "" {
		lines = append(lines, "  "+f.field("Description", rec.Description))
	}
	if len(rec.Tags) > 0 {
		lines = append(lines, "  "+f.field("Tags", strings.Join(rec.Tags, ", ")))
	}
	lines = append(lines, "  "+f.field("Schedule", describeSchedule(rec, f)))
	if !rec.Completed {
		lines = append(lines, "  "+f.field("Next trigger", f.FormatTime(rec.NextFireAt)))
	}
	return strings.Join(lines, "\n")
}

func (f *Formatter) FormatTags(tags []reminder.TagCount) string {
	if len(tags) == 0 {
		return "No tags found."
	}
	lines := []string{f.render(HeaderStyle, "Tags:")}
	for _, tc := range tags {
		lines = append(lines, fmt.Sprintf("  %s %s", f.render(AccentStyle, tc.Tag), f.FormatDim("("+plural(tc.Count, "reminder")+")")))
	}
	return strings.Join(lines, "\n")
}

func (f *Formatter) FormatImport(result reminder.ImportResult) string {
	lines := []string{
		f.FormatSuccess("Import completed:"),
		fmt.Sprintf("  Imported: %s", plural(result.Imported, "reminder")),
	}
	if result.Skipped > 0 {
		lines = append(lines, fmt.Sprintf("  Skipped:  %s (duplicate IDs, use --overwrite to replace)", plural(result.Skipped, "reminder")))
	}
	return strings.Join(lines, "\n")
}
