package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	shared "uniforum/shared"
	"uniforum/term"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

const defaultPollInterval = 30 * time.Second

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"n"},
	Short:   "Show notifications",
	Args:    cobra.NoArgs,
	Run:     notifications,
}

var readCmd = &cobra.Command{
	Use:   "read [notification-id]",
	Short: "Mark a notification, or all of them, as read",
	Args:  cobra.MaximumNArgs(1),
	Run:   read,
}

func init() {
	RootCmd.AddCommand(notificationsCmd)
	RootCmd.AddCommand(readCmd)

	notificationsCmd.Flags().BoolP("watch", "w", false, "Keep polling and show desktop notifications for new activity")
	notificationsCmd.Flags().Duration("interval", defaultPollInterval, "Polling interval with --watch")

	readCmd.Flags().BoolP("all", "a", false, "Mark everything as read")
}

var notificationIcons = map[shared.NotificationType]string{
	shared.NotificationTypeLike:    "♥",
	shared.NotificationTypeComment: "💬",
	shared.NotificationTypeMention: "@",
	shared.NotificationTypeFollow:  "➕",
	shared.NotificationTypeSystem:  "📣",
}

func notifications(cmd *cobra.Command, args []string) {
	mustResolveAuth()

	watch, _ := cmd.Flags().GetBool("watch")
	interval, _ := cmd.Flags().GetDuration("interval")

	if watch {
		watchNotifications(interval)
		return
	}

	term.StartSpinner("")
	list, apiErr := Forum.Notifications.Load(context.Background())
	term.StopSpinner()

	if apiErr != nil {
		term.HandleApiError(apiErr)
	}

	if len(list) == 0 {
		fmt.Println("🤷‍♂️ No notifications")
		return
	}

	now := time.Now()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Id", "", "Notification", "When"})
	table.SetAutoWrapText(false)

	for _, n := range list {
		text := n.Message
		if n.ActorName != "" {
			text = n.ActorName + " " + text
		}
		row := []string{n.Id, notificationIcons[n.Type], text, shared.TimeAgo(n.CreatedAt, now)}
		if n.Read {
			table.Append(row)
		} else {
			table.Rich(row, []tablewriter.Colors{
				{tablewriter.Bold},
				{},
				{tablewriter.FgHiGreenColor, tablewriter.Bold},
			})
		}
	}

	table.Render()

	fmt.Printf("\n%d unread\n", Forum.Notifications.UnreadCount())
}

func watchNotifications(interval time.Duration) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println(color.New(color.Bold, term.ColorHiCyan).Sprintf("👀 Watching for notifications every %s. Ctrl+C to stop.", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		fresh, apiErr := Forum.Notifications.Poll(ctx)
		if apiErr != nil {
			if apiErr.IsAuth() {
				term.HandleApiError(apiErr)
			}
			term.OutputWarning("Error checking notifications: %v", apiErr.Msg)
		}
		for _, n := range fresh {
			fmt.Printf("%s %s %s\n", notificationIcons[n.Type], color.New(color.Bold).Sprint(n.ActorName), n.Message)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func read(cmd *cobra.Command, args []string) {
	mustResolveAuth()

	all, _ := cmd.Flags().GetBool("all")
	if !all && len(args) == 0 {
		term.OutputErrorAndExit("Pass a notification id or --all")
	}

	ctx := context.Background()

	term.StartSpinner("")
	_, apiErr := Forum.Notifications.Load(ctx)
	if apiErr == nil {
		if all {
			apiErr = Forum.Notifications.MarkAllRead(ctx)
		} else {
			apiErr = Forum.Notifications.MarkRead(ctx, args[0])
		}
	}
	term.StopSpinner()

	if apiErr != nil {
		term.OutputErrorAndExit("Error marking read: %v", apiErr.Msg)
	}

	fmt.Println("✅ Marked as read")
}
