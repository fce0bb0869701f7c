package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"uniforum/lib"
	shared "uniforum/shared"
	"uniforum/term"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var feedCmd = &cobra.Command{
	Use:     "feed",
	Aliases: []string{"f"},
	Short:   "Show the post feed",
	Args:    cobra.NoArgs,
	Run:     feed,
}

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "List saved posts",
	Args:  cobra.NoArgs,
	Run:   saved,
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List upcoming events",
	Args:  cobra.NoArgs,
	Run:   events,
}

func init() {
	RootCmd.AddCommand(feedCmd)
	RootCmd.AddCommand(savedCmd)
	RootCmd.AddCommand(eventsCmd)

	feedCmd.Flags().String("topic", "", "Only posts in this topic (id or name)")
	feedCmd.Flags().String("subforum", "", "Only posts in this sub-forum")
	feedCmd.Flags().String("author", "", "Only posts by this user id")
	feedCmd.Flags().Bool("mine", false, "Only your posts")
	feedCmd.Flags().IntP("limit", "n", 25, "Max posts to show")
}

// mustLoadPosts refreshes the post cache. A failed refresh with a cached
// snapshot still on hand only warns.
func mustLoadPosts(ctx context.Context) {
	term.StartSpinner("")
	_, apiErr := Forum.Posts.Load(ctx)
	term.StopSpinner()

	if apiErr == nil {
		return
	}
	if len(Forum.Posts.Posts()) == 0 || apiErr.IsAuth() {
		term.HandleApiError(apiErr)
	}
	term.OutputWarning("Couldn't refresh the feed, showing cached posts: %v", apiErr.Msg)
}

// mustGetPost returns the cached post, loading the feed first if it isn't
// there yet.
func mustGetPost(ctx context.Context, id string) *shared.Post {
	post := Forum.Posts.Get(id)
	if post != nil {
		return post
	}

	mustLoadPosts(ctx)

	post = Forum.Posts.Get(id)
	if post == nil {
		term.OutputErrorAndExit("Post %s not found", id)
	}
	return post
}

func feed(cmd *cobra.Command, args []string) {
	mustResolveAuth()

	topic, _ := cmd.Flags().GetString("topic")
	subforum, _ := cmd.Flags().GetString("subforum")
	author, _ := cmd.Flags().GetString("author")
	mine, _ := cmd.Flags().GetBool("mine")
	limit, _ := cmd.Flags().GetInt("limit")

	ctx := context.Background()

	term.StartSpinner("")
	var postsErr, topicsErr *shared.ApiError
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, postsErr = Forum.Posts.Load(gctx)
		return nil
	})
	if topic != "" {
		g.Go(func() error {
			_, topicsErr = Forum.Topics.Load(gctx)
			return nil
		})
	}
	g.Wait()
	term.StopSpinner()

	if postsErr != nil {
		if len(Forum.Posts.Posts()) == 0 || postsErr.IsAuth() {
			term.HandleApiError(postsErr)
		}
		term.OutputWarning("Couldn't refresh the feed, showing cached posts: %v", postsErr.Msg)
	}

	posts := Forum.Posts.Posts()
	if topic != "" {
		topicId := topic
		if topicsErr == nil {
			for _, t := range Forum.Topics.Topics() {
				if strings.EqualFold(t.Name, topic) {
					topicId = t.Id
					break
				}
			}
		}
		posts = lib.PostsByTopic(posts, topicId)
	}
	if subforum != "" {
		posts = lib.PostsBySubforum(posts, subforum)
	}
	if author != "" {
		posts = lib.PostsByAuthor(posts, author)
	}
	if mine {
		posts = lib.PostsByAuthor(posts, Forum.Auth.Current().Id)
	}

	renderPostTable(posts, limit)

	fmt.Println()
	term.PrintCmds("", "post", "like", "comment", "save")
}

func saved(cmd *cobra.Command, args []string) {
	mustResolveAuth()
	mustLoadPosts(context.Background())

	renderPostTable(Forum.Posts.Saved(), 0)
}

func events(cmd *cobra.Command, args []string) {
	mustResolveAuth()
	mustLoadPosts(context.Background())

	posts := Forum.Posts.UpcomingEvents()
	if len(posts) == 0 {
		fmt.Println("🤷‍♂️ No upcoming events")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Id", "Event", "Date", "Time", "Place"})
	table.SetAutoWrapText(false)

	for _, p := range posts {
		table.Rich([]string{
			p.Id,
			shared.Truncate(p.Title, 40),
			p.EventDate,
			p.EventTime,
			p.EventPlace,
		}, []tablewriter.Colors{
			{tablewriter.Bold},
			{tablewriter.FgHiGreenColor, tablewriter.Bold},
		})
	}

	table.Render()
}

func renderPostTable(posts []*shared.Post, limit int) {
	if len(posts) == 0 {
		fmt.Println("🤷‍♂️ No posts")
		fmt.Println()
		term.PrintCmds("", "post")
		return
	}

	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}

	now := time.Now()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Id", "Title", "Author", "Type", "♥", "💬", "Posted"})
	table.SetAutoWrapText(false)

	for _, p := range posts {
		author := ""
		if p.Author != nil {
			author = p.Author.Name
		}

		likes := strconv.Itoa(p.Likes)
		if p.Liked {
			likes += " ✓"
		}

		title := shared.Truncate(p.Title, 40)
		if p.Saved {
			title = "🔖 " + title
		}
		if lib.IsLocalPostId(p.Id) {
			title = "⏳ " + title
		}

		row := []string{
			p.Id,
			title,
			author,
			string(p.ContentType),
			likes,
			strconv.Itoa(p.CommentCount),
			shared.TimeAgo(p.CreatedAt, now),
		}

		if p.Liked {
			table.Rich(row, []tablewriter.Colors{
				{tablewriter.Bold},
				{tablewriter.Bold},
				{},
				{},
				{tablewriter.FgHiMagentaColor, tablewriter.Bold},
			})
		} else {
			table.Rich(row, []tablewriter.Colors{
				{tablewriter.Bold},
				{tablewriter.Bold},
			})
		}
	}

	table.Render()
}
