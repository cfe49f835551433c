package daemon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemdUnit(t *testing.T) {
	unit, err := SystemdUnit(AutostartOptions{Executable: "/usr/local/bin/reminder", ConfigPath: "/etc/reminder.yaml"})
	require.NoError(t, err)
	assert.Contains(t, unit, "ExecStart=/usr/local/bin/reminder --config /etc/reminder.yaml daemon run\n")
	assert.Contains(t, unit, "Restart=always")
	assert.Contains(t, unit, "WantedBy=default.target")
}

func TestLaunchdPlist(t *testing.T) {
	plist, err := LaunchdPlist(AutostartOptions{Executable: "/opt/bin/reminder"})
	require.NoError(t, err)
	assert.Contains(t, plist, "<string>com.notexe.reminder-cli</string>")
	assert.Contains(t, plist, "        <string>/opt/bin/reminder</string>\n        <string>daemon</string>\n        <string>run</string>\n    </array>")
	assert.NotContains(t, plist, "--config")
}

func TestInstallAutostart(t *testing.T) {
	home := t.TempDir()
	opts := AutostartOptions{Executable: "/usr/bin/reminder"}

	inst, err := InstallAutostart("linux", home, opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config/systemd/user/reminder-cli.service"), inst.Path)
	assert.Equal(t, "systemctl --user enable --now reminder-cli", inst.Enable)
	data, err := os.ReadFile(inst.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ExecStart=/usr/bin/reminder daemon run")

	inst, err = InstallAutostart("darwin", home, opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Library/LaunchAgents/com.notexe.reminder-cli.plist"), inst.Path)
	assert.FileExists(t, inst.Path)

	_, err = InstallAutostart("windows", home, opts)
	assert.ErrorContains(t, err, "not supported")
}
