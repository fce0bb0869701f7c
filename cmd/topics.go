package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"uniforum/term"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List topics",
	Args:  cobra.NoArgs,
	Run:   topics,
}

var followCmd = &cobra.Command{
	Use:   "follow <topic-id>",
	Short: "Follow or unfollow a topic",
	Args:  cobra.ExactArgs(1),
	Run:   follow,
}

func init() {
	RootCmd.AddCommand(topicsCmd)
	RootCmd.AddCommand(followCmd)

	topicsCmd.Flags().Bool("following", false, "Only topics you follow")
}

func mustLoadTopics(ctx context.Context) {
	term.StartSpinner("")
	_, apiErr := Forum.Topics.Load(ctx)
	term.StopSpinner()

	if apiErr != nil {
		term.HandleApiError(apiErr)
	}
}

func topics(cmd *cobra.Command, args []string) {
	mustResolveAuth()
	mustLoadTopics(context.Background())

	onlyFollowing, _ := cmd.Flags().GetBool("following")
	list := Forum.Topics.Topics()
	if onlyFollowing {
		list = Forum.Topics.Following()
	}

	if len(list) == 0 {
		fmt.Println("🤷‍♂️ No topics")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Id", "Topic", "Description", "Followers", ""})
	table.SetAutoWrapText(false)

	for _, t := range list {
		following := ""
		if t.Following {
			following = "✓ following"
		}
		table.Rich([]string{
			t.Id,
			t.Name,
			t.Description,
			strconv.Itoa(t.Followers),
			following,
		}, []tablewriter.Colors{
			{tablewriter.Bold},
			{tablewriter.FgHiGreenColor, tablewriter.Bold},
			{},
			{},
			{tablewriter.FgHiCyanColor},
		})
	}

	table.Render()

	fmt.Println()
	term.PrintCmds("", "feed")
}

func follow(cmd *cobra.Command, args []string) {
	mustResolveAuth()

	ctx := context.Background()
	mustLoadTopics(ctx)

	term.StartSpinner("")
	topic, apiErr := Forum.Topics.ToggleFollow(ctx, args[0])
	term.StopSpinner()

	if apiErr != nil {
		term.OutputErrorAndExit("Error updating follow: %v", apiErr.Msg)
	}

	if topic.Following {
		fmt.Printf("✅ Following %s (%d followers)\n", topic.Name, topic.Followers)
	} else {
		fmt.Printf("Unfollowed %s\n", topic.Name)
	}
}
