package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	shared "uniforum/shared"
	"uniforum/term"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed in account",
	Args:  cobra.NoArgs,
	Run:   whoami,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update your profile",
	Args:  cobra.NoArgs,
	Run:   profile,
}

func init() {
	RootCmd.AddCommand(whoamiCmd)
	RootCmd.AddCommand(profileCmd)

	profileCmd.Flags().String("name", "", "Display name")
	profileCmd.Flags().String("bio", "", "Short bio")
	profileCmd.Flags().String("major", "", "Major")
	profileCmd.Flags().String("classification", "", "Classification")
	profileCmd.Flags().String("department", "", "Department")
	profileCmd.Flags().String("avatar", "", "Avatar url")
}

func whoami(cmd *cobra.Command, args []string) {
	mustResolveAuth()

	ctx := context.Background()

	// errors are kept on the caches; the counts below just use what loaded
	term.StartSpinner("")
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		Forum.Posts.Load(gctx)
		return nil
	})
	g.Go(func() error {
		Forum.Notifications.Load(gctx)
		return nil
	})
	g.Wait()
	term.StopSpinner()

	user := Forum.Auth.Current()

	fmt.Printf("%s %s %s\n", term.Avatar(user.DisplayName()), color.New(color.Bold, term.ColorHiGreen).Sprint(user.DisplayName()), term.RoleBadge(user.Role))
	fmt.Printf("@%s · %s\n", user.Username, user.Email)
	if user.Bio != "" {
		fmt.Println()
		fmt.Println(term.GetPlain(user.Bio))
	}
	fmt.Println()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoWrapText(false)
	addRow := func(k, v string) {
		if v != "" {
			table.Append([]string{k, v})
		}
	}
	addRow("Major", user.Major)
	addRow("Classification", user.Classification)
	addRow("Department", user.Department)
	addRow("Verified", strconv.FormatBool(user.EmailVerified))
	addRow("Posts", strconv.Itoa(len(Forum.Posts.Mine())))
	addRow("Saved", strconv.Itoa(len(Forum.Posts.Saved())))
	addRow("Unread", strconv.Itoa(Forum.Notifications.UnreadCount()))
	table.Render()
}

func profile(cmd *cobra.Command, args []string) {
	mustResolveAuth()

	var update shared.ProfileUpdate
	changed := false
	for flag, target := range map[string]**string{
		"name":           &update.Name,
		"bio":            &update.Bio,
		"major":          &update.Major,
		"classification": &update.Classification,
		"department":     &update.Department,
		"avatar":         &update.Avatar,
	} {
		if !cmd.Flags().Changed(flag) {
			continue
		}
		v, _ := cmd.Flags().GetString(flag)
		*target = &v
		changed = true
	}

	if !changed {
		fmt.Println("🤷‍♂️ Nothing to update")
		fmt.Println()
		fmt.Println("Pass one or more of --name, --bio, --major, --classification, --department, --avatar")
		return
	}

	term.StartSpinner("")
	apiErr := Forum.Auth.UpdateUser(context.Background(), update)
	term.StopSpinner()

	if apiErr != nil {
		if apiErr.Type == shared.ApiErrorTypeValidation {
			term.OutputErrorAndExit("Error updating profile: %v", apiErr.Msg)
		}
		term.OutputWarning("Profile updated locally but not saved: %v", apiErr.Msg)
		return
	}

	fmt.Println("✅ Profile updated")
}
