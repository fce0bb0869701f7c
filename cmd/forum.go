package cmd

import (
	"context"
	"fmt"
	"os"

	"uniforum/auth"
	"uniforum/lib"
	"uniforum/term"
)

// ForumDeps is the object graph main wires up before Execute.
type ForumDeps struct {
	Credentials   *auth.Credentials
	Auth          *auth.Store
	Posts         *lib.PostCache
	Settings      *lib.SettingsCache
	Notifications *lib.NotificationCache
	Topics        *lib.TopicCache
	Subforums     *lib.SubforumCache
	Search        *lib.Searcher
}

var Forum *ForumDeps

func SetForum(f *ForumDeps) {
	Forum = f
}

// mustResolveAuth restores the session from the stored tokens and pulls in
// the user's settings, exiting with a sign-in hint when there is no session.
func mustResolveAuth() {
	if !Forum.Credentials.HasAccessToken() {
		fmt.Println("🔑 You're not signed in")
		fmt.Println()
		term.PrintCmds("", "sign-in", "sign-up")
		os.Exit(1)
	}

	ctx := context.Background()

	term.StartSpinner("")
	apiErr := Forum.Auth.Rehydrate(ctx)
	if apiErr == nil {
		// falls back to the local snapshot on failure
		Forum.Settings.Load(ctx)
	}
	term.StopSpinner()

	if apiErr != nil {
		term.HandleApiError(apiErr)
	}
}
