package term

import (
	"github.com/gen2brain/beeep"
)

// DesktopNotifier shows notifications through the OS notification center.
type DesktopNotifier struct {
	AppIcon string
}

func (n DesktopNotifier) Notify(title, message string) error {
	return beeep.Notify(title, message, n.AppIcon)
}
