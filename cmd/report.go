package cmd

import (
	"context"
	"fmt"
	"strings"

	"uniforum/api"
	shared "uniforum/shared"
	"uniforum/term"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report <post|comment|user> <target-id>",
	Short: "Report content to the moderators",
	Args:  cobra.ExactArgs(2),
	Run:   report,
}

func init() {
	RootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringP("reason", "r", "", "Why you're reporting this")
}

func report(cmd *cobra.Command, args []string) {
	mustResolveAuth()

	reportType := shared.ReportType(strings.ToLower(args[0]))
	switch reportType {
	case shared.ReportTypePost, shared.ReportTypeComment, shared.ReportTypeUser:
	default:
		term.OutputErrorAndExit("Can only report a post, comment or user, got %q", args[0])
	}

	reason, _ := cmd.Flags().GetString("reason")
	if strings.TrimSpace(reason) == "" {
		var err error
		reason, err = term.GetRequiredUserStringInput("Reason:")
		if err != nil {
			term.OutputErrorAndExit("Error reading reason: %v", err)
		}
	}

	term.StartSpinner("")
	res, apiErr := api.Client.ReportContent(context.Background(), shared.ReportRequest{
		Type:     reportType,
		TargetId: args[1],
		Reason:   reason,
	})
	term.StopSpinner()

	if apiErr != nil {
		term.HandleApiError(apiErr)
	}

	fmt.Printf("🚩 Reported. Reference %s\n", res.ReportId)
}
