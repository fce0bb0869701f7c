package cmd

import (
	"context"
	"fmt"
	"time"

	"uniforum/lib"
	shared "uniforum/shared"
	"uniforum/term"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Create, edit, show or delete a post",
}

var postNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a post",
	Args:  cobra.NoArgs,
	Run:   newPost,
}

var postEditCmd = &cobra.Command{
	Use:   "edit <post-id>",
	Short: "Edit one of your posts",
	Args:  cobra.ExactArgs(1),
	Run:   editPost,
}

var postRmCmd = &cobra.Command{
	Use:     "rm <post-id>",
	Aliases: []string{"delete"},
	Short:   "Delete one of your posts",
	Args:    cobra.ExactArgs(1),
	Run:     deletePost,
}

var postShowCmd = &cobra.Command{
	Use:   "show <post-id>",
	Short: "Show a post with its comments",
	Args:  cobra.ExactArgs(1),
	Run:   showPost,
}

func init() {
	RootCmd.AddCommand(postCmd)
	postCmd.AddCommand(postNewCmd)
	postCmd.AddCommand(postEditCmd)
	postCmd.AddCommand(postRmCmd)
	postCmd.AddCommand(postShowCmd)

	for _, c := range []*cobra.Command{postNewCmd, postEditCmd} {
		c.Flags().StringP("title", "t", "", "Title")
		c.Flags().StringP("body", "b", "", "Body (markdown)")
		c.Flags().String("type", "", "discussion, question, event, announcement or poll")
		c.Flags().String("event-date", "", "Event date (YYYY-MM-DD)")
		c.Flags().String("event-time", "", "Event time")
		c.Flags().String("event-place", "", "Event location")
	}
	postNewCmd.Flags().String("topic", "", "Topic id")
	postNewCmd.Flags().String("subforum", "", "Sub-forum id")

	postRmCmd.Flags().BoolP("force", "f", false, "Don't ask for confirmation")
}

func newPost(cmd *cobra.Command, args []string) {
	mustResolveAuth()

	var draft shared.PostDraft
	draft.Title, _ = cmd.Flags().GetString("title")
	draft.Body, _ = cmd.Flags().GetString("body")
	contentType, _ := cmd.Flags().GetString("type")
	draft.ContentType = shared.ContentType(contentType)
	draft.TopicId, _ = cmd.Flags().GetString("topic")
	draft.SubforumId, _ = cmd.Flags().GetString("subforum")
	draft.EventDate, _ = cmd.Flags().GetString("event-date")
	draft.EventTime, _ = cmd.Flags().GetString("event-time")
	draft.EventPlace, _ = cmd.Flags().GetString("event-place")

	var err error
	if draft.Title == "" {
		draft.Title, err = term.GetRequiredUserStringInput("Title:")
		if err != nil {
			term.OutputErrorAndExit("Error reading title: %v", err)
		}
	}
	if draft.Body == "" {
		draft.Body, err = term.GetUserStringInput("Body:")
		if err != nil {
			term.OutputErrorAndExit("Error reading body: %v", err)
		}
	}

	term.StartSpinner("Posting...")
	post, apiErr := Forum.Posts.Create(context.Background(), draft)
	term.StopSpinner()

	if apiErr != nil {
		if post == nil {
			term.OutputErrorAndExit("Error creating post: %v", apiErr.Msg)
		}
		term.OutputWarning("Post saved locally as %s but not published: %v", post.Id, apiErr.Msg)
		return
	}

	fmt.Printf("✅ Posted %s\n", color.New(color.Bold, term.ColorHiCyan).Sprint(post.Id))
}

func editPost(cmd *cobra.Command, args []string) {
	mustResolveAuth()

	ctx := context.Background()
	id := args[0]
	mustGetPost(ctx, id)

	var patch shared.PostPatch
	changed := false
	for flag, target := range map[string]**string{
		"title":       &patch.Title,
		"body":        &patch.Body,
		"event-date":  &patch.EventDate,
		"event-time":  &patch.EventTime,
		"event-place": &patch.EventPlace,
	} {
		if !cmd.Flags().Changed(flag) {
			continue
		}
		v, _ := cmd.Flags().GetString(flag)
		*target = &v
		changed = true
	}
	if cmd.Flags().Changed("type") {
		v, _ := cmd.Flags().GetString("type")
		ct := shared.ContentType(v)
		patch.ContentType = &ct
		changed = true
	}

	if !changed {
		term.OutputErrorAndExit("Nothing to change: pass --title, --body, --type or an --event-* flag")
	}

	term.StartSpinner("")
	_, apiErr := Forum.Posts.Update(ctx, id, patch)
	term.StopSpinner()

	if apiErr != nil {
		switch apiErr.Type {
		case shared.ApiErrorTypeValidation, shared.ApiErrorTypeForbidden, shared.ApiErrorTypeNotFound:
			term.OutputErrorAndExit("Error editing post: %v", apiErr.Msg)
		}
		term.OutputWarning("Edit kept locally but not saved: %v", apiErr.Msg)
		return
	}

	fmt.Println("✅ Post updated")
}

func deletePost(cmd *cobra.Command, args []string) {
	mustResolveAuth()

	ctx := context.Background()
	id := args[0]
	post := mustGetPost(ctx, id)

	if !lib.CanModifyPost(Forum.Auth.Current(), post) {
		term.OutputErrorAndExit("Only the author can delete this post")
	}

	force, _ := cmd.Flags().GetBool("force")
	if !force {
		ok, err := term.ConfirmYesNo("Delete %q?", shared.Truncate(post.Title, 40))
		if err != nil {
			term.OutputErrorAndExit("Error getting confirmation: %v", err)
		}
		if !ok {
			return
		}
	}

	term.StartSpinner("")
	apiErr := Forum.Posts.Delete(ctx, id)
	term.StopSpinner()

	if apiErr != nil {
		if apiErr.Type == shared.ApiErrorTypeForbidden || apiErr.Type == shared.ApiErrorTypeNotFound {
			term.OutputErrorAndExit("Error deleting post: %v", apiErr.Msg)
		}
		term.OutputWarning("Post hidden locally but the server delete failed: %v", apiErr.Msg)
		return
	}

	fmt.Println("🗑️  Post deleted")
}

func showPost(cmd *cobra.Command, args []string) {
	mustResolveAuth()

	post := mustGetPost(context.Background(), args[0])
	now := time.Now()

	fmt.Println(term.PostHeader(post, now))

	if post.ContentType == shared.ContentTypeEvent && post.EventDate != "" {
		when := post.EventDate
		if post.EventTime != "" {
			when += " " + post.EventTime
		}
		fmt.Printf("📅 %s", when)
		if post.EventPlace != "" {
			fmt.Printf(" · 📍 %s", post.EventPlace)
		}
		fmt.Println()
	}

	if post.Body != "" {
		md, err := term.GetMarkdown(post.Body)
		if err != nil {
			fmt.Println(term.GetPlain(post.Body))
		} else {
			fmt.Print(md)
		}
	}

	likes := fmt.Sprintf("♥ %d", post.Likes)
	if post.Liked {
		likes = color.New(term.ColorHiMagenta, color.Bold).Sprint(likes)
	}
	fmt.Printf("%s · 💬 %d\n", likes, post.CommentCount)

	if len(post.Comments) == 0 {
		return
	}

	fmt.Println(term.GetDivisionLine())
	fmt.Println(color.New(color.Bold).Sprint("Comments"))

	user := Forum.Auth.Current()
	tree := treeprint.New()
	for _, c := range post.Comments {
		author := "Unknown"
		if c.Author != nil {
			author = c.Author.Name
		}
		label := fmt.Sprintf("%s · %s", color.New(color.Bold).Sprint(author), shared.TimeAgo(c.CreatedAt, now))
		if lib.CanDeleteComment(user, post, c) {
			label += color.New(color.Faint).Sprintf(" [%s]", c.Id)
		}
		tree.AddBranch(label).AddNode(c.Text)
	}
	fmt.Print(tree.String())
}
