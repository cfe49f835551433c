// Command mcp-reminder exposes reminder management over the Model Context
// Protocol so assistants can schedule and inspect reminders.
//
// Usage:
//
//	./mcp-reminder                 # Start MCP server (stdio)
//	./mcp-reminder --config FILE   # Use a specific configuration file
//	./mcp-reminder --help          # Show help
//
// The server shares its database with the reminder CLI and daemon.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jmhodges/clock"
	"github.com/mark3labs/mcp-go/server"
	"github.com/notexe/reminder-cli/internal/config"
	"github.com/notexe/reminder-cli/internal/logging"
	"github.com/notexe/reminder-cli/internal/reminder"
	"github.com/spf13/pflag"
)

func main() {
	flags := pflag.NewFlagSet("mcp-reminder", pflag.ContinueOnError)
	configPath := flags.String("config", config.GetDefaultConfigPath(), "Path to configuration file")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp()
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.EnsureDataDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Stdout carries the protocol, so logs only go to the file.
	logger, closeLog, err := logging.New(logging.Options{
		Path:      cfg.LogPath(),
		Level:     cfg.Log.Level,
		MaxSizeMB: cfg.Log.MaxSizeMB,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	store, err := reminder.NewStore(cfg.DatabasePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	service := reminder.NewService(store, clock.New(), logger.Named("mcp"))
	s := reminder.NewServer(service)

	if err := server.ServeStdio(s.MCPServer()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Printf(`MCP Reminder Server - Reminder management via MCP protocol

USAGE:
    mcp-reminder                 Start MCP server (communicates via stdio)
    mcp-reminder --config FILE   Load configuration from FILE
                                 Default: %s
    mcp-reminder --help          Show this help

ENVIRONMENT:
    REMINDER_DATA_DIR  Directory holding the database and log
    REMINDER_DB_PATH   Path to SQLite database file

TOOLS:
    add_reminder         Add a reminder (title, when or cron, description, tags)
    list_reminders       List reminders (tag, include_completed, paused_only)
    get_due_reminders    Get active reminders that are due now
    edit_reminder        Change title, description, schedule or tags
    pause_reminder       Pause a reminder
    resume_reminder      Resume a paused reminder
    delete_reminder      Delete a reminder permanently
    clean_reminders      Remove completed one-time reminders

CONFIGURATION:
    Register with an MCP client:
    {
      "mcpServers": {
        "reminder": {
          "command": "/path/to/mcp-reminder",
          "args": []
        }
      }
    }
`, config.GetDefaultConfigPath())
}
