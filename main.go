package main

import (
	"log"

	"uniforum/api"
	"uniforum/auth"
	"uniforum/cmd"
	"uniforum/fs"
	"uniforum/lib"
	shared "uniforum/shared"
	"uniforum/storage"
	"uniforum/term"

	"gopkg.in/natefinch/lumberjack.v2"
)

func init() {
	err := fs.EnsureHomeDir()
	if err != nil {
		term.OutputErrorAndExit("Error setting up home dir: %v", err)
	}

	// set up a rotating file logger
	log.SetOutput(&lumberjack.Logger{
		Filename:   fs.HomeLogPath,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	})

	// inter-package dependency injections to avoid circular imports
	store := storage.NewFileStorage(fs.HomeUniforumDir)
	creds := auth.NewCredentials(store)
	api.Client = api.New(api.DefaultHost(), creds)

	authStore := auth.NewStore(api.Client, creds)
	settings := lib.NewSettingsCache(api.Client, store, term.CurrentTheme)
	posts := lib.NewPostCache(api.Client, authStore, store)
	notifications := lib.NewNotificationCache(api.Client, settings, term.DesktopNotifier{})
	topics := lib.NewTopicCache(api.Client)
	subforums := lib.NewSubforumCache(api.Client)

	resetCaches := func() {
		posts.Reset()
		notifications.Reset()
		topics.Reset()
		subforums.Reset()
		settings.Clear()
	}

	settings.OnChange(authStore.SetSettings)
	authStore.OnSignOut(func() {
		resetCaches()
		if err := store.Remove(storage.KeyOwner); err != nil {
			log.Printf("Error removing snapshot owner: %v\n", err)
		}
	})
	authStore.OnSignIn(func(user *shared.User) {
		lib.ClaimSnapshots(store, user.Id, resetCaches)
	})

	cmd.SetForum(&cmd.ForumDeps{
		Credentials:   creds,
		Auth:          authStore,
		Posts:         posts,
		Settings:      settings,
		Notifications: notifications,
		Topics:        topics,
		Subforums:     subforums,
		Search:        lib.NewSearcher(api.Client, posts),
	})
}

func main() {
	cmd.Execute()
}
