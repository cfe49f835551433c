package daemon

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

const launchdLabel = "com.notexe.reminder-cli"

// AutostartOptions describe the command the service manager should run.
type AutostartOptions struct {
	Executable string
	ConfigPath string // Passed as --config when set
}

func (o AutostartOptions) args() []string {
	args := []string{o.Executable}
	if o.ConfigPath != "" {
		args = append(args, "--config", o.ConfigPath)
	}
	return append(args, "daemon", "run")
}

var systemdTemplate = template.Must(template.New("systemd").Parse(`[Unit]
Description=Reminder CLI daemon
After=network.target

[Service]
Type=simple
ExecStart={{ range $i, $a := .Args }}{{ if $i }} {{ end }}{{ $a }}{{ end }}
Restart=always
RestartSec=10

[Install]
WantedBy=default.target
`))

var launchdTemplate = template.Must(template.New("launchd").Parse(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>{{ .Label }}</string>
    <key>ProgramArguments</key>
    <array>
{{- range .Args }}
        <string>{{ . }}</string>
{{- end }}
    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <true/>
</dict>
</plist>
`))

// SystemdUnit renders a systemd user service running the daemon.
func SystemdUnit(opts AutostartOptions) (string, error) {
	return render(systemdTemplate, opts)
}

// LaunchdPlist renders a launchd agent running the daemon.
func LaunchdPlist(opts AutostartOptions) (string, error) {
	return render(launchdTemplate, opts)
}

func render(tmpl *template.Template, opts AutostartOptions) (string, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, struct {
		Label string
		Args  []string
	}{launchdLabel, opts.args()})
	if err != nil {
		return "", fmt.Errorf("failed to render %s unit: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// Installation is the result of InstallAutostart.
type Installation struct {
	Path   string
	Enable string // Command the user runs to activate the unit
}

// InstallAutostart writes the service definition for goos below home.
func InstallAutostart(goos, home string, opts AutostartOptions) (Installation, error) {
	var (
		inst    Installation
		content string
		err     error
	)

	switch goos {
	case "linux":
		inst.Path = filepath.Join(home, ".config", "systemd", "user", "reminder-cli.service")
		inst.Enable = "systemctl --user enable --now reminder-cli"
		content, err = SystemdUnit(opts)
	case "darwin":
		inst.Path = filepath.Join(home, "Library", "LaunchAgents", launchdLabel+".plist")
		inst.Enable = "launchctl load " + inst.Path
		content, err = LaunchdPlist(opts)
	default:
		return Installation{}, fmt.Errorf("autostart is not supported on %s; run 'reminder daemon start' from your login scripts", goos)
	}
	if err != nil {
		return Installation{}, err
	}

	if err := os.MkdirAll(filepath.Dir(inst.Path), 0o755); err != nil {
		return Installation{}, fmt.Errorf("failed to create %s: %w", filepath.Dir(inst.Path), err)
	}
	if err := os.WriteFile(inst.Path, []byte(content), 0o644); err != nil {
		return Installation{}, fmt.Errorf("failed to write %s: %w", inst.Path, err)
	}
	return inst, nil
}
