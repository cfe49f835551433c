package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/notexe/reminder-cli/internal/reminder"
	"github.com/notexe/reminder-cli/internal/ui"
	"github.com/spf13/pflag"
)

var version = "dev"

func (a *App) commands() *command {
	return &command{
		name:    "reminder",
		summary: "A CLI reminder tool with cron support",
		subs: []*command{
			a.addCommand(),
			a.listCommand(),
			a.showCommand(),
			a.editCommand(),
			a.deleteCommand(),
			a.pauseCommand(),
			a.resumeCommand(),
			a.cleanCommand(),
			a.tagsCommand(),
			a.exportCommand(),
			a.importCommand(),
			a.daemonCommand(),
			a.logsCommand(),
			a.shellCommand(),
			{
				name:    "version",
				summary: "Print the version",
				run: func(context.Context, *pflag.FlagSet, []string) error {
					a.println("reminder " + version)
					return nil
				},
			},
		},
	}
}

func (a *App) addCommand() *command {
	return &command{
		name:    "add",
		summary: "Add a new reminder",
		usage:   `reminder add -t <title> (-T <time> | -c <cron>) [flags]`,
		flags: func(fs *pflag.FlagSet) {
			fs.StringP("title", "t", "", "title of the reminder")
			fs.StringP("description", "d", "", "description of the reminder")
			fs.StringP("time", "T", "", `one-time: "2025-12-25 10:00", "30m", "2h", "tomorrow 9am", "next monday 14:00"`)
			fs.StringP("cron", "c", "", `recurring: "0 0 9 * * *" or "every day at 9am"`)
			fs.StringSlice("tags", nil, "comma-separated tags")
		},
		run: func(ctx context.Context, fs *pflag.FlagSet, args []string) error {
			svc, err := a.reminders()
			if err != nil {
				return err
			}

			title, _ := fs.GetString("title")
			if title == "" && len(args) > 0 {
				title = strings.Join(args, " ")
			}
			req := reminder.AddRequest{Title: title}
			req.Description, _ = fs.GetString("description")
			req.At, _ = fs.GetString("time")
			req.Cron, _ = fs.GetString("cron")
			req.Tags, _ = fs.GetStringSlice("tags")

			rec, err := svc.Add(ctx, req)
			if err != nil {
				return err
			}
			a.println(a.formatter.FormatSummary("Reminder added successfully!", rec))
			return nil
		},
	}
}

func (a *App) listCommand() *command {
	return &command{
		name:    "list",
		summary: "List reminders",
		flags: func(fs *pflag.FlagSet) {
			fs.String("tag", "", "only reminders with this tag")
			fs.BoolP("all", "a", false, "include completed reminders")
			fs.Bool("paused", false, "only paused reminders")
			fs.Bool("json", false, "output as JSON")
		},
		run: func(ctx context.Context, fs *pflag.FlagSet, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			svc, err := a.reminders()
			if err != nil {
				return err
			}

			var filter reminder.Filter
			filter.Tag, _ = fs.GetString("tag")
			filter.IncludeCompleted, _ = fs.GetBool("all")
			filter.OnlyPaused, _ = fs.GetBool("paused")

			records, err := svc.List(ctx, filter)
			if err != nil {
				return err
			}
			if asJSON, _ := fs.GetBool("json"); asJSON {
				return a.writeJSON(records)
			}
			a.println(a.formatter.FormatList(records))
			return nil
		},
	}
}

func (a *App) showCommand() *command {
	return &command{
		name:    "show",
		summary: "Show details of a reminder",
		usage:   "reminder show <id> [--json]",
		flags: func(fs *pflag.FlagSet) {
			fs.Bool("json", false, "output as JSON")
		},
		run: func(ctx context.Context, fs *pflag.FlagSet, args []string) error {
			svc, err := a.reminders()
			if err != nil {
				return err
			}
			id, err := a.resolveID(ctx, args, "Show which reminder?", reminder.Filter{IncludeCompleted: true})
			if err != nil {
				return err
			}

			rec, err := svc.Get(ctx, id)
			if err != nil {
				return err
			}
			if asJSON, _ := fs.GetBool("json"); asJSON {
				return a.writeJSON(rec)
			}
			a.println(a.formatter.FormatRecord(rec, a.clock.Now()))
			return nil
		},
	}
}

func (a *App) editCommand() *command {
	return &command{
		name:    "edit",
		summary: "Edit an existing reminder",
		usage:   "reminder edit <id> [flags]",
		flags: func(fs *pflag.FlagSet) {
			fs.StringP("id", "i", "", "ID or short ID prefix (alternative to the argument)")
			fs.StringP("title", "t", "", "new title")
			fs.StringP("description", "D", "", "new description")
			fs.StringP("time", "T", "", "new one-time schedule")
			fs.StringP("cron", "c", "", "new recurring schedule")
			fs.StringSlice("add-tags", nil, "tags to add")
			fs.StringSlice("remove-tags", nil, "tags to remove")
		},
		run: func(ctx context.Context, fs *pflag.FlagSet, args []string) error {
			svc, err := a.reminders()
			if err != nil {
				return err
			}

			req := reminder.EditRequest{}
			req.ID, _ = fs.GetString("id")
			if req.ID == "" {
				if req.ID, err = a.resolveID(ctx, args, "Edit which reminder?", reminder.Filter{IncludeCompleted: true}); err != nil {
					return err
				}
			}
			if fs.Changed("title") {
				title, _ := fs.GetString("title")
				req.Title = &title
			}
			if fs.Changed("description") {
				description, _ := fs.GetString("description")
				req.Description = &description
			}
			req.At, _ = fs.GetString("time")
			req.Cron, _ = fs.GetString("cron")
			req.AddTags, _ = fs.GetStringSlice("add-tags")
			req.RemoveTags, _ = fs.GetStringSlice("remove-tags")

			rec, err := svc.Edit(ctx, req)
			if err != nil {
				return err
			}
			a.println(a.formatter.FormatSummary("Reminder updated successfully", rec))
			return nil
		},
	}
}

func (a *App) deleteCommand() *command {
	return &command{
		name:    "delete",
		summary: "Delete a reminder",
		usage:   "reminder delete <id> [--yes]",
		flags: func(fs *pflag.FlagSet) {
			fs.StringP("id", "i", "", "ID or short ID prefix (alternative to the argument)")
			fs.BoolP("yes", "y", false, "do not ask for confirmation")
		},
		run: func(ctx context.Context, fs *pflag.FlagSet, args []string) error {
			svc, err := a.reminders()
			if err != nil {
				return err
			}

			id, _ := fs.GetString("id")
			if id == "" {
				if id, err = a.resolveID(ctx, args, "Delete which reminder?", reminder.Filter{IncludeCompleted: true}); err != nil {
					return err
				}
			}

			if yes, _ := fs.GetBool("yes"); !yes && a.interactive {
				rec, err := svc.Get(ctx, id)
				if err != nil {
					return err
				}
				question := fmt.Sprintf("Delete %q (%s)?", rec.Title, rec.ShortID())
				if !ui.Confirm(question, a.cfg.UI.ColoredOutput, a.in, a.out) {
					a.println("Cancelled.")
					return nil
				}
			}

			rec, err := svc.Delete(ctx, id)
			if err != nil {
				return err
			}
			a.println(a.formatter.FormatSuccess(fmt.Sprintf("Reminder deleted successfully (ID: %s)", rec.ID)))
			return nil
		},
	}
}

func (a *App) pauseCommand() *command {
	return &command{
		name:    "pause",
		summary: "Pause a reminder",
		usage:   "reminder pause <id>",
		run: func(ctx context.Context, _ *pflag.FlagSet, args []string) error {
			svc, err := a.reminders()
			if err != nil {
				return err
			}
			id, err := a.resolveID(ctx, args, "Pause which reminder?", reminder.Filter{})
			if err != nil {
				return err
			}
			rec, err := svc.Pause(ctx, id)
			if err != nil {
				return err
			}
			a.println(a.formatter.FormatSuccess(fmt.Sprintf("Reminder paused (ID: %s)", rec.ShortID())))
			return nil
		},
	}
}

func (a *App) resumeCommand() *command {
	return &command{
		name:    "resume",
		summary: "Resume a paused reminder",
		usage:   "reminder resume <id>",
		run: func(ctx context.Context, _ *pflag.FlagSet, args []string) error {
			svc, err := a.reminders()
			if err != nil {
				return err
			}
			id, err := a.resolveID(ctx, args, "Resume which reminder?", reminder.Filter{OnlyPaused: true})
			if err != nil {
				return err
			}
			rec, err := svc.Resume(ctx, id)
			if err != nil {
				return err
			}
			a.println(a.formatter.FormatSuccess(fmt.Sprintf("Reminder resumed (ID: %s), next trigger %s",
				rec.ShortID(), a.formatter.FormatTime(rec.NextFireAt))))
			return nil
		},
	}
}

func (a *App) cleanCommand() *command {
	return &command{
		name:    "clean",
		summary: "Remove completed one-time reminders",
		run: func(ctx context.Context, _ *pflag.FlagSet, _ []string) error {
			svc, err := a.reminders()
			if err != nil {
				return err
			}
			removed, err := svc.Clean(ctx)
			if err != nil {
				return err
			}
			if len(removed) == 0 {
				a.println("No completed reminders to clean")
				return nil
			}
			a.println(a.formatter.FormatSuccess(fmt.Sprintf("Cleaned %d completed reminder(s)", len(removed))))
			return nil
		},
	}
}

func (a *App) tagsCommand() *command {
	return &command{
		name:    "tags",
		summary: "List tags with reminder counts",
		run: func(ctx context.Context, _ *pflag.FlagSet, _ []string) error {
			svc, err := a.reminders()
			if err != nil {
				return err
			}
			tags, err := svc.Tags(ctx)
			if err != nil {
				return err
			}
			a.println(a.formatter.FormatTags(tags))
			return nil
		},
	}
}

func (a *App) exportCommand() *command {
	return &command{
		name:    "export",
		summary: "Export reminders to a JSON or YAML file",
		flags: func(fs *pflag.FlagSet) {
			fs.StringP("output", "o", "reminders_export.json", "output file; .yaml or .yml writes YAML")
		},
		run: func(ctx context.Context, fs *pflag.FlagSet, _ []string) error {
			svc, err := a.reminders()
			if err != nil {
				return err
			}
			path, _ := fs.GetString("output")
			count, err := svc.Export(ctx, path)
			if err != nil {
				return err
			}
			a.println(a.formatter.FormatSuccess(fmt.Sprintf("Exported %d reminder(s) to %s", count, path)))
			return nil
		},
	}
}

func (a *App) importCommand() *command {
	return &command{
		name:    "import",
		summary: "Import reminders from a JSON or YAML file",
		usage:   "reminder import -i <file> [--overwrite]",
		flags: func(fs *pflag.FlagSet) {
			fs.StringP("input", "i", "", "input file")
			fs.BoolP("overwrite", "f", false, "replace reminders that have the same ID")
		},
		run: func(ctx context.Context, fs *pflag.FlagSet, args []string) error {
			svc, err := a.reminders()
			if err != nil {
				return err
			}
			path, _ := fs.GetString("input")
			if path == "" && len(args) > 0 {
				path = args[0]
			}
			if path == "" {
				return errors.New("an input file is required (--input)")
			}
			overwrite, _ := fs.GetBool("overwrite")

			result, err := svc.Import(ctx, path, overwrite)
			if err != nil {
				return err
			}
			a.println(a.formatter.FormatImport(result))
			return nil
		},
	}
}

// resolveID returns the ID argument, or lets the user pick one of the
// reminders matching filter when running interactively.
func (a *App) resolveID(ctx context.Context, args []string, question string, filter reminder.Filter) (string, error) {
	if len(args) > 1 {
		return "", fmt.Errorf("unexpected argument: %s", args[1])
	}
	if len(args) == 1 {
		return args[0], nil
	}
	if !a.interactive {
		return "", errors.New("a reminder ID is required")
	}

	svc, err := a.reminders()
	if err != nil {
		return "", err
	}
	records, err := svc.List(ctx, filter)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", errors.New("no matching reminders")
	}

	options := make([]ui.SelectorOption, len(records))
	for i, rec := range records {
		options[i] = ui.SelectorOption{Label: rec.ShortID(), Description: rec.Title}
	}
	choice, err := ui.NewSelector(question, options, a.cfg.UI.ColoredOutput, a.in, a.out).Run()
	if err != nil {
		return "", err
	}
	return records[choice].ID, nil
}

func (a *App) writeJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	a.println(string(data))
	return nil
}
