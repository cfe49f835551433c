package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (f *Formatter) FormatWelcome(version string) string {
	title := fmt.Sprintf("Reminder shell • %s", version)
	help := "Type help for commands, exit to quit"
	if !f.colored {
		return strings.Join([]string{"", title, help, ""}, "\n")
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 1).
		Render(HeaderStyle.Render(title) + "\n" + LabelStyle.Render(help))
	return "\n" + box + "\n"
}

var shellCommands = []struct{ section, cmd, desc string }{
	{"Reminders", "add -t <title> (-T <when> | -c <cron>)", "Add a reminder"},
	{"Reminders", "list [--tag t] [--all]", "List reminders"},
	{"Reminders", "show <id>", "Show one reminder"},
	{"Reminders", "edit <id> [flags]", "Change a reminder"},
	{"Reminders", "pause|resume|delete [id]", "Without an ID, pick from a list"},
	{"Reminders", "clean", "Remove completed one-time reminders"},
	{"Reminders", "tags", "Count reminders per tag"},
	{"Daemon", "daemon start|stop|status", "Control the background daemon"},
	{"Daemon", "logs show|info|clear", "Inspect the daemon log"},
	{"Shell", "help", "Show this help"},
	{"Shell", "exit", "Leave the shell"},
}

func (f *Formatter) FormatShellHelp() string {
	lines := []string{"", f.render(HeaderStyle, "Commands")}
	section := ""
	for _, c := range shellCommands {
		if c.section != section {
			section = c.section
			lines = append(lines, "", f.render(AccentStyle.Bold(true), section))
		}
		lines = append(lines, fmt.Sprintf("  %s %s", f.render(SuccessStyle.UnsetBold(), fmt.Sprintf("%-40s", c.cmd)), c.desc))
	}
	lines = append(lines, "",
		f.FormatDim("  Quote arguments with spaces: add -t \"Call mom\" -T \"tomorrow 9am\""),
		f.FormatDim("  Ctrl+D to exit"),
		"")
	return strings.Join(lines, "\n")
}

// FormatPrompt returns a styled input prompt
func (f *Formatter) FormatPrompt() string {
	if f.colored {
		return lipgloss.NewStyle().Foreground(BorderColor).Render("reminder") +
			SuccessStyle.Render(" > ")
	}
	return "reminder > "
}
