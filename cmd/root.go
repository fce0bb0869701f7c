package cmd

import (
	"uniforum/api"
	"uniforum/term"

	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   `uniforum [command] [flags]`,
	Short: "uniforum: your campus forum in the terminal",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		host, _ := cmd.Flags().GetString("host")
		if host != "" && api.Client != nil {
			api.Client.SetHost(host)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, args)
	},
}

func init() {
	RootCmd.PersistentFlags().String("host", "", "Forum api host (defaults to $UNIFORUM_API_HOST)")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		term.OutputErrorAndExit("Error executing root command: %v", err)
	}
}

func run(cmd *cobra.Command, args []string) {
	if Forum == nil || !Forum.Credentials.HasAccessToken() {
		term.PrintCmds("", "sign-in", "sign-up", "forgot-password")
		return
	}
	term.PrintCmds("", "feed", "post", "topics", "subforums", "notifications", "search", "settings")
}
