package cmd

import (
	"context"
	"fmt"

	"uniforum/lib"
	shared "uniforum/shared"
	"uniforum/term"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"
)

var subforumsCmd = &cobra.Command{
	Use:     "subforums",
	Aliases: []string{"sf"},
	Short:   "List sub-forums by category",
	Args:    cobra.NoArgs,
	Run:     subforums,
}

var subforumCmd = &cobra.Command{
	Use:   "subforum",
	Short: "Manage sub-forums",
}

var subforumNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a sub-forum",
	Args:  cobra.ExactArgs(1),
	Run:   newSubforum,
}

var subscribeCmd = &cobra.Command{
	Use:   "subscribe <subforum-id>",
	Short: "Join or leave a sub-forum",
	Args:  cobra.ExactArgs(1),
	Run:   subscribe,
}

var categoryOrder = []shared.SubforumCategory{
	shared.SubforumCategoryAcademics,
	shared.SubforumCategoryCampusLife,
	shared.SubforumCategoryCareer,
	shared.SubforumCategoryGeneral,
	shared.SubforumCategoryStudentOnly,
	shared.SubforumCategoryFacultyStaff,
}

func init() {
	RootCmd.AddCommand(subforumsCmd)
	RootCmd.AddCommand(subforumCmd)
	RootCmd.AddCommand(subscribeCmd)
	subforumCmd.AddCommand(subforumNewCmd)

	subforumsCmd.Flags().Bool("all", false, "Include sub-forums your role can't access")
	subforumsCmd.Flags().Bool("joined", false, "Only sub-forums you've joined")

	subforumNewCmd.Flags().StringP("description", "d", "", "Description")
	subforumNewCmd.Flags().StringP("category", "c", string(shared.SubforumCategoryGeneral), "Category")
	subforumNewCmd.Flags().String("color", "", "Accent color")
}

func mustLoadSubforums(ctx context.Context) {
	term.StartSpinner("")
	_, apiErr := Forum.Subforums.Load(ctx)
	term.StopSpinner()

	if apiErr != nil {
		term.HandleApiError(apiErr)
	}
}

func subforums(cmd *cobra.Command, args []string) {
	mustResolveAuth()
	mustLoadSubforums(context.Background())

	all, _ := cmd.Flags().GetBool("all")
	joined, _ := cmd.Flags().GetBool("joined")

	role := Forum.Auth.Current().Role
	var list []*shared.SubForum
	switch {
	case joined:
		list = Forum.Subforums.Subscribed()
	case all:
		list = Forum.Subforums.Subforums()
	default:
		list = Forum.Subforums.Accessible(role)
	}

	if len(list) == 0 {
		fmt.Println("🤷‍♂️ No sub-forums")
		return
	}

	byCategory := lib.ByCategory(list)

	tree := treeprint.New()
	for _, category := range categoryOrder {
		subs := byCategory[category]
		if len(subs) == 0 {
			continue
		}
		branch := tree.AddBranch(color.New(color.Bold, term.ColorHiCyan).Sprint(shared.SubforumCategoryLabels[category]))
		for _, sf := range subs {
			label := fmt.Sprintf("%s %s · %d members", color.New(color.Bold).Sprint(sf.Name), color.New(color.Faint).Sprintf("(%s)", sf.Id), sf.Members)
			if sf.Subscribed {
				label += color.New(term.ColorHiGreen).Sprint(" ✓ joined")
			}
			if !sf.CanAccess(role) {
				label += color.New(term.ColorHiRed).Sprint(" 🔒")
			} else if !sf.CanPost(role) {
				label += color.New(color.Faint).Sprint(" read-only")
			}
			branch.AddNode(label)
		}
	}

	fmt.Print(tree.String())
	fmt.Println()
	term.PrintCmds("", "feed")
}

func newSubforum(cmd *cobra.Command, args []string) {
	mustResolveAuth()

	description, _ := cmd.Flags().GetString("description")
	category, _ := cmd.Flags().GetString("category")
	accent, _ := cmd.Flags().GetString("color")

	if _, ok := shared.SubforumCategoryLabels[shared.SubforumCategory(category)]; !ok {
		term.OutputErrorAndExit("Unknown category %q", category)
	}

	term.StartSpinner("")
	sf, apiErr := Forum.Subforums.Create(context.Background(), shared.SubforumDraft{
		Name:        args[0],
		Description: description,
		Category:    shared.SubforumCategory(category),
		Color:       accent,
	})
	term.StopSpinner()

	if apiErr != nil {
		term.OutputErrorAndExit("Error creating sub-forum: %v", apiErr.Msg)
	}

	fmt.Printf("✅ Created %s (%s)\n", color.New(color.Bold, term.ColorHiGreen).Sprint(sf.Name), sf.Id)
}

func subscribe(cmd *cobra.Command, args []string) {
	mustResolveAuth()

	ctx := context.Background()
	mustLoadSubforums(ctx)

	term.StartSpinner("")
	sf, apiErr := Forum.Subforums.ToggleSubscribe(ctx, args[0])
	term.StopSpinner()

	if apiErr != nil {
		term.OutputErrorAndExit("Error updating membership: %v", apiErr.Msg)
	}

	if sf.Subscribed {
		fmt.Printf("✅ Joined %s\n", sf.Name)
	} else {
		fmt.Printf("Left %s\n", sf.Name)
	}
}
