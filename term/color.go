package term

import (
	"sync"

	"github.com/fatih/color"
	"github.com/muesli/termenv"
)

var IsDarkBg = termenv.HasDarkBackground()

var ColorHiGreen color.Attribute
var ColorHiMagenta color.Attribute
var ColorHiRed color.Attribute
var ColorHiYellow color.Attribute
var ColorHiCyan color.Attribute
var ColorHiBlue color.Attribute

func init() {
	setPalette(IsDarkBg)
}

func setPalette(dark bool) {
	if dark {
		ColorHiGreen = color.FgHiGreen
		ColorHiMagenta = color.FgHiMagenta
		ColorHiRed = color.FgHiRed
		ColorHiYellow = color.FgHiYellow
		ColorHiCyan = color.FgHiCyan
		ColorHiBlue = color.FgHiBlue
	} else {
		ColorHiGreen = color.FgGreen
		ColorHiMagenta = color.FgMagenta
		ColorHiRed = color.FgRed
		ColorHiYellow = color.FgYellow
		ColorHiCyan = color.FgCyan
		ColorHiBlue = color.FgBlue
	}
}

// Theme is the terminal's presentation state. The settings cache pushes the
// darkMode preference into it.
type Theme struct {
	mu   sync.Mutex
	dark bool
}

var CurrentTheme = &Theme{dark: IsDarkBg}

func (t *Theme) SetDarkMode(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dark = enabled
	setPalette(enabled)
}

func (t *Theme) DarkMode() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dark
}
