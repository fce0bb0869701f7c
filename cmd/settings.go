package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	shared "uniforum/shared"
	"uniforum/term"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show settings",
	Args:  cobra.NoArgs,
	Run:   settings,
}

var setCmd = &cobra.Command{
	Use:   "set <key> <true|false>",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	Run:   set,
}

var settingDescriptions = map[string]string{
	shared.SettingEmailNotifications:   "Email me about activity",
	shared.SettingPushNotifications:    "Desktop notifications while watching",
	shared.SettingMentionNotifications: "Notify me when I'm mentioned",
	shared.SettingPublicProfile:        "Anyone can see my profile",
	shared.SettingShowOnlineStatus:     "Show when I'm online",
	shared.SettingDarkMode:             "Dark theme for rendered posts",
}

func init() {
	RootCmd.AddCommand(settingsCmd)
	RootCmd.AddCommand(setCmd)

	settingsCmd.Flags().Bool("reset", false, "Restore the default settings")
}

func settings(cmd *cobra.Command, args []string) {
	mustResolveAuth()

	reset, _ := cmd.Flags().GetBool("reset")
	if reset {
		confirmed, err := term.ConfirmYesNo("Restore all settings to their defaults?")
		if err != nil {
			term.OutputErrorAndExit("Error getting confirmation: %v", err)
		}
		if !confirmed {
			return
		}

		term.StartSpinner("")
		_, apiErr := Forum.Settings.Reset(context.Background())
		term.StopSpinner()

		if apiErr != nil {
			term.OutputWarning("Defaults restored locally but not synced: %v", apiErr.Msg)
		} else {
			fmt.Println("✅ Settings reset")
		}
		fmt.Println()
	}

	current := Forum.Settings.Settings()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Value", "Description"})
	table.SetAutoWrapText(false)

	for _, key := range current.Keys() {
		value := current.Get(key)
		valueColor := tablewriter.FgHiRedColor
		if value {
			valueColor = tablewriter.FgHiGreenColor
		}
		table.Rich([]string{key, strconv.FormatBool(value), settingDescriptions[key]}, []tablewriter.Colors{
			{tablewriter.Bold},
			{valueColor},
			{},
		})
	}

	table.Render()

	if apiErr := Forum.Settings.Err(); apiErr != nil {
		fmt.Println()
		term.OutputWarning("Showing locally saved settings: %v", apiErr.Msg)
	}

	fmt.Println()
	term.PrintCmds("", "set")
}

func set(cmd *cobra.Command, args []string) {
	mustResolveAuth()

	key := args[0]
	value, err := strconv.ParseBool(args[1])
	if err != nil {
		term.OutputErrorAndExit("Value for %s must be true or false", key)
	}

	if !shared.IsDocumentedSetting(key) {
		term.OutputWarning("%s isn't a standard setting, saving it anyway", key)
	}

	term.StartSpinner("")
	_, apiErr := Forum.Settings.Set(context.Background(), key, value)
	term.StopSpinner()

	if apiErr != nil {
		if apiErr.IsAuth() {
			term.HandleApiError(apiErr)
		}
		term.OutputWarning("Saved locally but not synced: %v", apiErr.Msg)
		return
	}

	fmt.Printf("✅ %s = %t\n", key, value)
}
