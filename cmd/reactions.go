package cmd

import (
	"context"
	"fmt"
	"strings"

	"uniforum/lib"
	shared "uniforum/shared"
	"uniforum/term"

	"github.com/spf13/cobra"
)

var likeCmd = &cobra.Command{
	Use:   "like <post-id>",
	Short: "Like or unlike a post",
	Args:  cobra.ExactArgs(1),
	Run:   like,
}

var saveCmd = &cobra.Command{
	Use:   "save <post-id>",
	Short: "Save or unsave a post",
	Args:  cobra.ExactArgs(1),
	Run:   save,
}

var commentCmd = &cobra.Command{
	Use:   "comment <post-id> [text]",
	Short: "Comment on a post",
	Args:  cobra.MinimumNArgs(1),
	Run:   comment,
}

var uncommentCmd = &cobra.Command{
	Use:   "uncomment <post-id> <comment-id>",
	Short: "Delete a comment",
	Args:  cobra.ExactArgs(2),
	Run:   uncomment,
}

func init() {
	RootCmd.AddCommand(likeCmd)
	RootCmd.AddCommand(saveCmd)
	RootCmd.AddCommand(commentCmd)
	RootCmd.AddCommand(uncommentCmd)
}

func like(cmd *cobra.Command, args []string) {
	mustResolveAuth()

	ctx := context.Background()
	mustGetPost(ctx, args[0])

	term.StartSpinner("")
	post, apiErr := Forum.Posts.ToggleLike(ctx, args[0])
	term.StopSpinner()

	if apiErr != nil {
		term.OutputErrorAndExit("Error toggling like: %v", apiErr.Msg)
	}

	if post.Liked {
		fmt.Printf("♥ Liked (%d)\n", post.Likes)
	} else {
		fmt.Printf("♡ Unliked (%d)\n", post.Likes)
	}
}

func save(cmd *cobra.Command, args []string) {
	mustResolveAuth()

	ctx := context.Background()
	mustGetPost(ctx, args[0])

	term.StartSpinner("")
	post, apiErr := Forum.Posts.ToggleSave(ctx, args[0])
	term.StopSpinner()

	if apiErr != nil {
		term.OutputErrorAndExit("Error toggling save: %v", apiErr.Msg)
	}

	if post.Saved {
		fmt.Println("🔖 Saved")
	} else {
		fmt.Println("Removed from saved")
	}
}

func comment(cmd *cobra.Command, args []string) {
	mustResolveAuth()

	ctx := context.Background()
	postId := args[0]
	mustGetPost(ctx, postId)

	text := strings.Join(args[1:], " ")
	if text == "" {
		var err error
		text, err = term.GetRequiredUserStringInput("Comment:")
		if err != nil {
			term.OutputErrorAndExit("Error reading comment: %v", err)
		}
	}

	term.StartSpinner("")
	c, apiErr := Forum.Posts.AddComment(ctx, postId, text)
	term.StopSpinner()

	if apiErr != nil {
		if c == nil {
			term.OutputErrorAndExit("Error adding comment: %v", apiErr.Msg)
		}
		term.OutputWarning("Comment kept locally but not posted: %v", apiErr.Msg)
		return
	}

	fmt.Printf("💬 Commented (%s)\n", c.Id)
}

func uncomment(cmd *cobra.Command, args []string) {
	mustResolveAuth()

	ctx := context.Background()
	postId, commentId := args[0], args[1]
	post := mustGetPost(ctx, postId)

	var target *shared.Comment
	for _, c := range post.Comments {
		if c.Id == commentId {
			target = c
			break
		}
	}
	if target == nil {
		term.OutputErrorAndExit("Comment %s not found on post %s", commentId, postId)
	}
	if !lib.CanDeleteComment(Forum.Auth.Current(), post, target) {
		term.OutputErrorAndExit("You can only delete your own comments or comments on your posts")
	}

	term.StartSpinner("")
	apiErr := Forum.Posts.DeleteComment(ctx, postId, commentId)
	term.StopSpinner()

	if apiErr != nil {
		term.OutputErrorAndExit("Error deleting comment: %v", apiErr.Msg)
	}

	fmt.Println("🗑️  Comment deleted")
}
