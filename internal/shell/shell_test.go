package shell

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/notexe/reminder-cli/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"", []string{}},
		{"   list  ", []string{"list"}},
		{`add -t "Call mom" -T "tomorrow 9am"`, []string{"add", "-t", "Call mom", "-T", "tomorrow 9am"}},
		{`add -t 'it''s' -c 'every day at 9am'`, []string{"add", "-t", "its", "-c", "every day at 9am"}},
		{`edit abcd --title "say \"hi\""`, []string{"edit", "abcd", "--title", `say "hi"`}},
		{`add -t a\ b`, []string{"add", "-t", "a b"}},
		{`add -t ""`, []string{"add", "-t", ""}},
		{`-c '0 0 9 * * *'`, []string{"-c", "0 0 9 * * *"}},
	}
	for _, test := range tests {
		t.Run(test.line, func(t *testing.T) {
			got, err := Split(test.line)
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}

	_, err := Split(`add -t "open`)
	assert.ErrorContains(t, err, "unterminated")
	_, err = Split(`add \`)
	assert.ErrorContains(t, err, "unterminated")
	_, err = Split(`add -t lunch; delete abcd`)
	assert.ErrorContains(t, err, "not supported")

	got, err := Split(`add -t "lunch; then coffee"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"add", "-t", "lunch; then coffee"}, got)
}

type recordingExecutor struct {
	calls [][]string
	err   error
}

func (r *recordingExecutor) Execute(_ context.Context, args []string) error {
	r.calls = append(r.calls, args)
	return r.err
}

func newTestShell() (*Shell, *recordingExecutor, *bytes.Buffer) {
	exec := &recordingExecutor{}
	var out bytes.Buffer
	return &Shell{executor: exec, formatter: ui.NewFormatter(false, ""), out: &out, version: "test"}, exec, &out
}

func TestHandleForwardsCommands(t *testing.T) {
	sh, exec, _ := newTestShell()

	assert.False(t, sh.handle(context.Background(), `add -t "Stand-up" -c "every weekday at 9:30"`))
	assert.False(t, sh.handle(context.Background(), "   "))
	require.Len(t, exec.calls, 1)
	assert.Equal(t, []string{"add", "-t", "Stand-up", "-c", "every weekday at 9:30"}, exec.calls[0])
}

func TestHandlePrintsErrors(t *testing.T) {
	sh, exec, out := newTestShell()
	exec.err = errors.New(`reminder "zzzz" not found`)

	assert.False(t, sh.handle(context.Background(), "show zzzz"))
	assert.Contains(t, out.String(), `Error: reminder "zzzz" not found`)

	out.Reset()
	assert.False(t, sh.handle(context.Background(), `add -t "oops`))
	assert.Contains(t, out.String(), "Error: unterminated")
}

func TestHandleBuiltins(t *testing.T) {
	sh, exec, out := newTestShell()

	assert.False(t, sh.handle(context.Background(), "help"))
	assert.Contains(t, out.String(), "daemon start|stop|status")

	assert.False(t, sh.handle(context.Background(), "daemon run"))
	assert.False(t, sh.handle(context.Background(), "shell"))
	assert.Empty(t, exec.calls)

	assert.True(t, sh.handle(context.Background(), "exit"))
	assert.Contains(t, out.String(), "Goodbye!")
}
