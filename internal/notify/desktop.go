package notify

import (
	"context"

	"github.com/gen2brain/beeep"
)

func init() {
	beeep.AppName = "reminder"
}

// Desktop shows a notification through the platform notifier via beeep
// (D-Bus or notify-send on Linux and the BSDs, osascript on macOS, toast
// on Windows).
type Desktop struct {
	show func(title, message string, icon any) error
}

func NewDesktop() *Desktop {
	return &Desktop{show: beeep.Notify}
}

func (d *Desktop) Notify(ctx context.Context, title, description string) error {
	if err := ctx.Err(); err != nil {
		return &NotificationError{Backend: "desktop", Err: err}
	}
	if err := d.show(title, description, ""); err != nil {
		return &NotificationError{Backend: "desktop", Err: err}
	}
	return nil
}
