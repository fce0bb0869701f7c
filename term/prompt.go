package term

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cqroot/prompt"
	"github.com/cqroot/prompt/input"
	"github.com/eiannone/keyboard"
	"github.com/fatih/color"
)

// Quitting any prompt (esc or ctrl+c) leaves the CLI cleanly.

// passwordAttempts bounds how often a mismatched confirmation is re-asked.
const passwordAttempts = 3

// lineReader asks one question and returns the raw answer.
type lineReader func(msg string) (string, error)

func readLine(msg, def string, opts ...input.Option) (string, error) {
	res, err := prompt.New().Ask(msg).Input(def, opts...)
	if errors.Is(err, prompt.ErrUserQuit) {
		os.Exit(0)
	}
	return res, err
}

func readSecret(msg string) (string, error) {
	return readLine(msg, "", input.WithEchoMode(input.EchoPassword))
}

func warnInput(msg string) {
	color.New(color.Bold, ColorHiRed).Println("🚨 " + msg)
}

// GetUserStringInput reads a free-text answer such as a post body or a
// profile field. Surrounding whitespace is dropped.
func GetUserStringInput(msg string) (string, error) {
	return GetUserStringInputWithDefault(msg, "")
}

func GetUserStringInputWithDefault(msg, def string) (string, error) {
	res, err := readLine(msg, def)
	if err != nil {
		return "", fmt.Errorf("failed to read answer to %q: %w", msg, err)
	}
	return strings.TrimSpace(res), nil
}

// GetRequiredUserStringInput keeps asking until the answer isn't blank.
func GetRequiredUserStringInput(msg string) (string, error) {
	for {
		res, err := GetUserStringInput(msg)
		if err != nil {
			return "", err
		}
		if res != "" {
			return res, nil
		}
		warnInput(strings.TrimSuffix(msg, ":") + " can't be blank")
	}
}

// GetUserPasswordInput reads a password without echoing it. The answer is
// returned untrimmed.
func GetUserPasswordInput(msg string) (string, error) {
	res, err := readSecret(msg)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return res, nil
}

// GetConfirmedPasswordInput asks for a new password twice, masked, and
// re-asks both when they differ or the first is empty.
func GetConfirmedPasswordInput(msg, confirmMsg string) (string, error) {
	return confirmPassword(readSecret, warnInput, msg, confirmMsg)
}

func confirmPassword(read lineReader, warn func(string), msg, confirmMsg string) (string, error) {
	for attempt := 1; attempt <= passwordAttempts; attempt++ {
		password, err := read(msg)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		if password == "" {
			warn("Password can't be blank")
			continue
		}

		again, err := read(confirmMsg)
		if err != nil {
			return "", fmt.Errorf("failed to read password confirmation: %w", err)
		}
		if again == password {
			return password, nil
		}
		warn("Passwords don't match, try again")
	}
	return "", fmt.Errorf("passwords didn't match after %d attempts", passwordAttempts)
}

func readKey() (rune, error) {
	if err := keyboard.Open(); err != nil {
		return 0, fmt.Errorf("failed to open keyboard: %w", err)
	}
	defer keyboard.Close()

	char, key, err := keyboard.GetKey()
	if err != nil {
		return 0, fmt.Errorf("failed to read keypress: %w", err)
	}
	if key == keyboard.KeyCtrlC || key == keyboard.KeyEsc {
		fmt.Println()
		os.Exit(0)
	}
	return char, nil
}

// yesNo maps a keypress to an answer; ok is false for any other key.
func yesNo(char rune) (yes, ok bool) {
	switch char {
	case 'y', 'Y':
		return true, true
	case 'n', 'N':
		return false, true
	}
	return false, false
}

// ConfirmYesNo asks a single-key question, e.g. before deleting a post.
func ConfirmYesNo(fmtStr string, fmtArgs ...interface{}) (bool, error) {
	question := fmt.Sprintf(fmtStr, fmtArgs...)
	for {
		color.New(ColorHiMagenta, color.Bold).Printf("%s [y/n] > ", question)

		char, err := readKey()
		if err != nil {
			return false, err
		}
		fmt.Println(string(char))

		if yes, ok := yesNo(char); ok {
			return yes, nil
		}
		warnInput("Press y or n")
	}
}
