package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "reminder"
	serverVersion = "1.0.0"
)

// Server is the MCP server for reminder management.
type Server struct {
	mcpServer *server.MCPServer
	service   *Service
}

// NewServer creates a new Reminder MCP server backed by the given service.
func NewServer(service *Service) *Server {
	s := &Server{
		service: service,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

const (
	whenHelp = "One-shot time: '2025-12-25 10:00', RFC3339, '30m', '2h', 'tomorrow 9am', 'next monday 14:00'"
	cronHelp = "Recurrence: six-field cron 'sec min hour dom month dow' or a phrase like 'every day at 9am', 'every weekday at 8:30'"
	idHelp   = "Reminder ID or a unique prefix of at least 4 characters"
)

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("add_reminder",
			mcp.WithDescription("Add a reminder. Give either 'when' for a one-shot reminder or 'cron' for a recurring one."),
			mcp.WithString("title", mcp.Required(), mcp.Description("Reminder title")),
			mcp.WithString("when", mcp.Description(whenHelp)),
			mcp.WithString("cron", mcp.Description(cronHelp)),
			mcp.WithString("description", mcp.Description("Optional description")),
			mcp.WithString("tags", mcp.Description("Comma-separated tags")),
		),
		s.handleAddReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List reminders ordered by next fire time"),
			mcp.WithString("tag", mcp.Description("Only reminders carrying this tag")),
			mcp.WithBoolean("include_completed", mcp.Description("Include completed one-shot reminders")),
			mcp.WithBoolean("paused_only", mcp.Description("Only paused reminders")),
		),
		s.handleListReminders,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_due_reminders",
			mcp.WithDescription("Get active reminders that are due now or overdue"),
		),
		s.handleGetDueReminders,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("edit_reminder",
			mcp.WithDescription("Edit a reminder. Setting 'when' or 'cron' replaces its schedule."),
			mcp.WithString("id", mcp.Required(), mcp.Description(idHelp)),
			mcp.WithString("title", mcp.Description("New title")),
			mcp.WithString("description", mcp.Description("New description")),
			mcp.WithString("when", mcp.Description(whenHelp)),
			mcp.WithString("cron", mcp.Description(cronHelp)),
			mcp.WithString("add_tags", mcp.Description("Comma-separated tags to add")),
			mcp.WithString("remove_tags", mcp.Description("Comma-separated tags to remove")),
		),
		s.handleEditReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("pause_reminder",
			mcp.WithDescription("Pause a reminder so it does not fire"),
			mcp.WithString("id", mcp.Required(), mcp.Description(idHelp)),
		),
		s.handlePauseReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("resume_reminder",
			mcp.WithDescription("Resume a paused reminder; recurring schedules restart from now"),
			mcp.WithString("id", mcp.Required(), mcp.Description(idHelp)),
		),
		s.handleResumeReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_reminder",
			mcp.WithDescription("Delete a reminder permanently"),
			mcp.WithString("id", mcp.Required(), mcp.Description(idHelp)),
		),
		s.handleDeleteReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("clean_reminders",
			mcp.WithDescription("Remove all completed one-shot reminders"),
		),
		s.handleCleanReminders,
	)
}

func (s *Server) handleAddReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	added, err := s.service.Add(ctx, AddRequest{
		Title:       req.GetString("title", ""),
		Description: req.GetString("description", ""),
		Tags:        splitList(req.GetString("tags", "")),
		At:          req.GetString("when", ""),
		Cron:        req.GetString("cron", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add reminder: %v", err)), nil
	}
	return jsonResult(added)
}

func (s *Server) handleListReminders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := s.service.List(ctx, Filter{
		Tag:              req.GetString("tag", ""),
		IncludeCompleted: req.GetBool("include_completed", false),
		OnlyPaused:       req.GetBool("paused_only", false),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reminders: %v", err)), nil
	}

	if len(records) == 0 {
		return mcp.NewToolResultText("No reminders found."), nil
	}
	return jsonResult(records)
}

func (s *Server) handleGetDueReminders(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := s.service.Due(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get due reminders: %v", err)), nil
	}

	if len(records) == 0 {
		return mcp.NewToolResultText("No due reminders."), nil
	}
	return jsonResult(records)
}

func (s *Server) handleEditReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	edit := EditRequest{
		ID:         req.GetString("id", ""),
		At:         req.GetString("when", ""),
		Cron:       req.GetString("cron", ""),
		AddTags:    splitList(req.GetString("add_tags", "")),
		RemoveTags: splitList(req.GetString("remove_tags", "")),
	}
	if v := req.GetString("title", ""); v != "" {
		edit.Title = &v
	}
	if v := req.GetString("description", ""); v != "" {
		edit.Description = &v
	}

	updated, err := s.service.Edit(ctx, edit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to edit reminder: %v", err)), nil
	}
	return jsonResult(updated)
}

func (s *Server) handlePauseReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	paused, err := s.service.Pause(ctx, req.GetString("id", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to pause reminder: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s paused.", paused.ShortID())), nil
}

func (s *Server) handleResumeReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resumed, err := s.service.Resume(ctx, req.GetString("id", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to resume reminder: %v", err)), nil
	}
	return jsonResult(resumed)
}

func (s *Server) handleDeleteReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deleted, err := s.service.Delete(ctx, req.GetString("id", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete reminder: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s (%s) deleted.", deleted.ShortID(), deleted.Title)), nil
}

func (s *Server) handleCleanReminders(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	removed, err := s.service.Clean(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to clean reminders: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Removed %d completed reminder(s).", len(removed))), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(output)), nil
}

// splitList splits a comma-separated list, dropping blank items.
func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
