package term

import (
	"fmt"
	"os"
	"strings"

	shared "uniforum/shared"

	"github.com/fatih/color"
)

func OutputSimpleError(msg string, args ...interface{}) {
	msg = fmt.Sprintf(msg, args...)
	fmt.Fprintln(os.Stderr, color.New(ColorHiRed, color.Bold).Sprint("🚨 "+shared.Capitalize(msg)))
}

// OutputWarning reports a failure that did not lose any work, such as a
// post kept locally after its sync failed.
func OutputWarning(msg string, args ...interface{}) {
	StopSpinner()
	msg = fmt.Sprintf(msg, args...)
	fmt.Fprintln(os.Stderr, color.New(ColorHiYellow, color.Bold).Sprint("⚠️  "+shared.Capitalize(msg)))
}

func OutputErrorAndExit(msg string, args ...interface{}) {
	StopSpinner()

	msg = fmt.Sprintf(msg, args...)

	displayMsg := ""
	errorParts := strings.Split(msg, ": ")

	addedErrors := map[string]bool{}

	if len(errorParts) > 1 {
		i := 0
		for _, part := range errorParts {
			// don't repeat the same error message
			if addedErrors[strings.ToLower(part)] {
				continue
			}

			if i != 0 {
				displayMsg += "\n"
			}
			for n := 0; n < i; n++ {
				displayMsg += "  "
			}
			if i > 0 {
				displayMsg += "→ "
			}

			s := shared.Capitalize(part)
			if i == 0 {
				s = "🚨 " + s
			}
			displayMsg += s

			addedErrors[strings.ToLower(part)] = true
			i++
		}
	} else {
		displayMsg = "🚨 " + shared.Capitalize(msg)
	}

	fmt.Fprintln(os.Stderr, color.New(ColorHiRed, color.Bold).Sprint(displayMsg))
	os.Exit(1)
}

// HandleApiError prints apiErr with a hint for the error types the user can
// act on, then exits.
func HandleApiError(apiErr *shared.ApiError) {
	StopSpinner()

	switch apiErr.Type {
	case shared.ApiErrorTypeInvalidToken:
		OutputSimpleError("Your session has expired or you are not signed in")
		fmt.Println()
		PrintCmds("", "sign-in")
		os.Exit(1)
	case shared.ApiErrorTypeNetwork:
		OutputErrorAndExit("Could not reach the forum: %s", apiErr.Msg)
	case shared.ApiErrorTypeForbidden:
		OutputErrorAndExit("Not allowed: %s", apiErr.Msg)
	}

	OutputErrorAndExit("%s", apiErr.Msg)
}
