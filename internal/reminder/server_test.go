package reminder

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "want text content, got %T", result.Content[0])
	return text.Text, result.IsError
}

func TestServerTools(t *testing.T) {
	service, _, _ := newTestService(t)
	server := NewServer(service)
	require.NotNil(t, server.MCPServer())

	text, isError := callTool(t, server.handleAddReminder, map[string]any{
		"title": "Review PRs",
		"cron":  "every weekday at 9am",
		"tags":  "work, code",
	})
	require.False(t, isError, text)
	var added Record
	require.NoError(t, json.Unmarshal([]byte(text), &added))
	assert.Equal(t, []string{"code", "work"}, added.Tags)
	expression, _ := added.Schedule.Cron()
	assert.Equal(t, "0 0 9 * * MON-FRI", expression)

	text, isError = callTool(t, server.handleListReminders, map[string]any{"tag": "code"})
	require.False(t, isError, text)
	var listed []Record
	require.NoError(t, json.Unmarshal([]byte(text), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, added.ID, listed[0].ID)

	text, isError = callTool(t, server.handleEditReminder, map[string]any{
		"id":          added.ShortID(),
		"title":       "Review pull requests",
		"remove_tags": "code",
	})
	require.False(t, isError, text)
	var edited Record
	require.NoError(t, json.Unmarshal([]byte(text), &edited))
	assert.Equal(t, "Review pull requests", edited.Title)
	assert.Equal(t, []string{"work"}, edited.Tags)

	text, isError = callTool(t, server.handlePauseReminder, map[string]any{"id": added.ID})
	require.False(t, isError, text)
	assert.Contains(t, text, "paused")

	text, isError = callTool(t, server.handleResumeReminder, map[string]any{"id": added.ID})
	require.False(t, isError, text)

	text, isError = callTool(t, server.handleGetDueReminders, nil)
	require.False(t, isError, text)
	assert.Equal(t, "No due reminders.", text)

	text, isError = callTool(t, server.handleCleanReminders, nil)
	require.False(t, isError, text)
	assert.Contains(t, text, "Removed 0")

	text, isError = callTool(t, server.handleDeleteReminder, map[string]any{"id": added.ID})
	require.False(t, isError, text)
	assert.Contains(t, text, "deleted")

	text, isError = callTool(t, server.handleListReminders, nil)
	require.False(t, isError, text)
	assert.Equal(t, "No reminders found.", text)
}

func TestServerToolErrors(t *testing.T) {
	service, _, _ := newTestService(t)
	server := NewServer(service)

	text, isError := callTool(t, server.handleAddReminder, map[string]any{"title": "x", "when": "someday"})
	assert.True(t, isError)
	assert.Contains(t, text, "someday")

	text, isError = callTool(t, server.handleAddReminder, map[string]any{"title": "x"})
	assert.True(t, isError)
	assert.Contains(t, text, "invalid")

	text, isError = callTool(t, server.handleDeleteReminder, map[string]any{"id": "0123456"})
	assert.True(t, isError)
	assert.Contains(t, text, "not found")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, splitList(" a, ,b c,"))
	assert.Nil(t, splitList(""))
}
