package cmd

import (
	"context"
	"fmt"

	"uniforum/term"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var signInCmd = &cobra.Command{
	Use:   "sign-in",
	Short: "Sign in to your forum account",
	Args:  cobra.NoArgs,
	Run:   signIn,
}

var signOutCmd = &cobra.Command{
	Use:   "sign-out",
	Short: "Sign out and clear local data",
	Args:  cobra.NoArgs,
	Run:   signOut,
}

func init() {
	RootCmd.AddCommand(signInCmd)
	RootCmd.AddCommand(signOutCmd)

	signInCmd.Flags().StringP("username", "u", "", "Username or email")
}

func signIn(cmd *cobra.Command, args []string) {
	username, err := cmd.Flags().GetString("username")
	if err != nil {
		term.OutputErrorAndExit("Error getting username: %v", err)
	}

	if username == "" {
		username, err = term.GetRequiredUserStringInput("Username or email:")
		if err != nil {
			term.OutputErrorAndExit("Error reading username: %v", err)
		}
	}

	password, err := term.GetUserPasswordInput("Password:")
	if err != nil {
		term.OutputErrorAndExit("Error reading password: %v", err)
	}

	ctx := context.Background()

	term.StartSpinner("Signing in...")
	apiErr := Forum.Auth.SignIn(ctx, username, password)
	term.StopSpinner()

	if apiErr != nil {
		term.OutputErrorAndExit("Error signing in: %v", apiErr.Msg)
	}

	user := Forum.Auth.Current()
	Forum.Settings.Load(ctx)

	fmt.Printf("✅ Signed in as %s %s\n", color.New(color.Bold, term.ColorHiGreen).Sprint(user.DisplayName()), term.RoleBadge(user.Role))
	fmt.Println()
	term.PrintCmds("", "feed", "topics", "subforums")
}

func signOut(cmd *cobra.Command, args []string) {
	term.StartSpinner("")
	Forum.Auth.SignOut(context.Background())
	term.StopSpinner()

	fmt.Println("👋 Signed out")
}
