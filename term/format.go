package term

import (
	"fmt"
	"strings"
	"time"

	shared "uniforum/shared"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"
)

const maxWidth = 80

func GetMarkdown(input string) (string, error) {
	width := min(getTerminalWidth(), maxWidth)

	style := "light"
	if CurrentTheme.DarkMode() {
		style = "dark"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return "", err
	}

	return r.Render(input)
}

func GetPlain(input string) string {
	width := getTerminalWidth()

	s := wordwrap.String(input, min(width-2, maxWidth))

	// add padding
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = "  " + lines[i]
	}
	s = strings.Join(lines, "\n")

	c := "234"
	if CurrentTheme.DarkMode() {
		c = "251"
	}

	return termenv.String(s).Foreground(termenv.ANSI256.Color(c)).String()
}

var roleColors = map[shared.Role]string{
	shared.RoleStudent: "#0C5449",
	shared.RoleFaculty: "#6B2C91",
	shared.RoleStaff:   "#1F4E79",
	shared.RoleAlumni:  "#8A6D1F",
	shared.RoleAdmin:   "#A11D33",
}

func RoleBadge(role shared.Role) string {
	if role == "" {
		return ""
	}
	bg, ok := roleColors[role]
	if !ok {
		bg = "#444444"
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color(bg)).
		Padding(0, 1).
		Render(string(role))
}

func Avatar(name string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#0C5449")).
		Padding(0, 1).
		Render(shared.Initials(name))
}

// PostHeader renders the boxed title line shown above a post body.
func PostHeader(post *shared.Post, now time.Time) string {
	width := min(getTerminalWidth(), maxWidth) - 2

	author := "Unknown"
	var role shared.Role
	if post.Author != nil {
		author = post.Author.Name
		role = post.Author.Role
	}

	title := color.New(color.Bold).Sprint(post.Title)
	meta := fmt.Sprintf("%s %s · %s · %s", author, RoleBadge(role), post.ContentType, shared.TimeAgo(post.CreatedAt, now))

	border := lipgloss.Color("#444")
	if !CurrentTheme.DarkMode() {
		border = lipgloss.Color("#bbb")
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, meta))
}
