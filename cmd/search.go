package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"uniforum/lib"
	shared "uniforum/shared"
	"uniforum/term"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search people, posts and sub-forums",
	Args:  cobra.MinimumNArgs(1),
	Run:   search,
}

func init() {
	RootCmd.AddCommand(searchCmd)
}

func search(cmd *cobra.Command, args []string) {
	mustResolveAuth()

	query := strings.Join(args, " ")
	if len([]rune(strings.TrimSpace(query))) < lib.MinSearchLength {
		term.OutputErrorAndExit("Search for at least %d characters", lib.MinSearchLength)
	}

	term.StartSpinner("")
	res, apiErr := Forum.Search.Search(context.Background(), query)
	term.StopSpinner()

	if apiErr != nil {
		if apiErr.IsAuth() {
			term.HandleApiError(apiErr)
		}
		term.OutputWarning("Search is unavailable, showing matches from cached posts: %v", apiErr.Msg)
	}

	if res.Empty() {
		fmt.Printf("🤷‍♂️ Nothing matches %q\n", query)
		return
	}

	if len(res.People) > 0 {
		fmt.Println(color.New(color.Bold, term.ColorHiCyan).Sprint("People"))
		table := tablewriter.NewWriter(os.Stdout)
		table.SetAutoWrapText(false)
		for _, p := range res.People {
			table.Append([]string{p.Name, string(p.Role), p.Id})
		}
		table.Render()
		fmt.Println()
	}

	if len(res.Posts) > 0 {
		fmt.Println(color.New(color.Bold, term.ColorHiCyan).Sprint("Posts"))
		renderPostTable(res.Posts, 0)
		fmt.Println()
	}

	if len(res.Subforums) > 0 {
		fmt.Println(color.New(color.Bold, term.ColorHiCyan).Sprint("Sub-forums"))
		table := tablewriter.NewWriter(os.Stdout)
		table.SetAutoWrapText(false)
		for _, sf := range res.Subforums {
			table.Append([]string{sf.Id, sf.Name, shared.SubforumCategoryLabels[sf.Category]})
		}
		table.Render()
	}
}
