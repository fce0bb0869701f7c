package term

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var CmdDesc = map[string][2]string{
	"sign-in":         {"", "sign in to your forum account"},
	"sign-up":         {"", "create an account"},
	"feed":            {"f", "show the post feed"},
	"post":            {"", "create, edit or delete a post"},
	"comment":         {"", "comment on a post"},
	"like":            {"", "like or unlike a post"},
	"save":            {"", "save or unsave a post"},
	"saved":           {"", "list saved posts"},
	"topics":          {"", "list topics"},
	"subforums":       {"sf", "list sub-forums"},
	"notifications":   {"n", "show notifications"},
	"settings":        {"", "show settings"},
	"search":          {"", "search people, posts and sub-forums"},
	"sign-out":        {"", "sign out and clear local data"},
	"verify":          {"", "activate your account from the email link"},
	"forgot-password": {"", "email yourself a password reset link"},
	"reset-password":  {"", "choose a new password from a reset link"},
	"whoami":          {"", "show the signed in user"},
	"profile":         {"", "update your profile"},
	"events":          {"", "list upcoming events"},
	"uncomment":       {"", "delete a comment"},
	"follow":          {"", "follow or unfollow a topic"},
	"subforum":        {"", "create a sub-forum"},
	"subscribe":       {"", "join or leave a sub-forum"},
	"read":            {"", "mark notifications as read"},
	"set":             {"", "change a setting"},
	"report":          {"", "report content to the moderators"},
	"dev-server":      {"", "run a local forum server with demo data"},
}

func PrintCmds(prefix string, cmds ...string) {
	for _, cmd := range cmds {
		config, ok := CmdDesc[cmd]
		if !ok {
			continue
		}

		alias := config[0]
		desc := config[1]
		if alias != "" && strings.HasPrefix(cmd, alias) {
			cmd = strings.Replace(cmd, alias, fmt.Sprintf("(%s)", alias), 1)
		}
		styled := color.New(color.Bold, color.FgHiWhite, color.BgCyan).Sprintf(" uniforum %s ", cmd)

		fmt.Printf("%s%s 👉 %s\n", prefix, styled, desc)
	}
}

func ClearCurrentLine() {
	fmt.Print("\033[2K\r")
}

func GetDivisionLine() string {
	return strings.Repeat("─", min(getTerminalWidth(), maxWidth))
}

func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		// not a tty
		return maxWidth
	}
	return width
}
