package lib

import (
	"context"
	"sync"
	"testing"
	"time"

	shared "uniforum/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu     sync.Mutex
	titles []string
}

func (r *recordingNotifier) Notify(title, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, title)
	return nil
}

func TestNotificationsMarkReadRollback(t *testing.T) {
	remote := &fakeForum{
		notifications: func() ([]*shared.Notification, *shared.ApiError) {
			return []*shared.Notification{
				{Id: "n1", Type: shared.NotificationTypeLike, Message: "Bob liked your post"},
				{Id: "n2", Type: shared.NotificationTypeComment, Message: "Bob commented", Read: true},
			}, nil
		},
		markRead: func(id string) *shared.ApiError { return errOffline },
	}
	cache := NewNotificationCache(remote, nil, nil)

	_, apiErr := cache.Load(context.Background())
	require.Nil(t, apiErr)
	assert.Equal(t, 1, cache.UnreadCount())

	apiErr = cache.MarkRead(context.Background(), "n1")
	require.NotNil(t, apiErr)
	assert.Equal(t, 1, cache.UnreadCount())

	apiErr = cache.MarkRead(context.Background(), "missing")
	require.NotNil(t, apiErr)
	assert.Equal(t, shared.ApiErrorTypeNotFound, apiErr.Type)
}

func TestNotificationsMarkAllRead(t *testing.T) {
	fail := true
	remote := &fakeForum{
		notifications: func() ([]*shared.Notification, *shared.ApiError) {
			return []*shared.Notification{{Id: "n1"}, {Id: "n2"}, {Id: "n3", Read: true}}, nil
		},
		markAllRead: func() *shared.ApiError {
			if fail {
				return errServer
			}
			return nil
		},
	}
	cache := NewNotificationCache(remote, nil, nil)
	cache.Load(context.Background())

	require.NotNil(t, cache.MarkAllRead(context.Background()))
	assert.Equal(t, 2, cache.UnreadCount())

	fail = false
	require.Nil(t, cache.MarkAllRead(context.Background()))
	assert.Equal(t, 0, cache.UnreadCount())
}

func TestNotificationsPoll(t *testing.T) {
	batch := []*shared.Notification{{Id: "n1", Message: "old"}}
	remote := &fakeForum{
		notifications: func() ([]*shared.Notification, *shared.ApiError) {
			res := make([]*shared.Notification, len(batch))
			for i, n := range batch {
				c := *n
				res[i] = &c
			}
			return res, nil
		},
	}
	settings := NewSettingsCache(&fakeForum{}, nil, nil)
	notifier := &recordingNotifier{}
	cache := NewNotificationCache(remote, settings, notifier)

	fresh, apiErr := cache.Poll(context.Background())
	require.Nil(t, apiErr)
	assert.Empty(t, fresh, "first poll only sets the baseline")

	batch = append(batch, &shared.Notification{Id: "n2", Type: shared.NotificationTypeMention, Message: "@alice see this"})
	fresh, apiErr = cache.Poll(context.Background())
	require.Nil(t, apiErr)
	require.Len(t, fresh, 1)
	assert.Equal(t, "n2", fresh[0].Id)
	assert.Equal(t, []string{"You were mentioned"}, notifier.titles)

	settings.Set(context.Background(), shared.SettingPushNotifications, false)
	batch = append(batch, &shared.Notification{Id: "n3", Message: "quiet"})
	fresh, _ = cache.Poll(context.Background())
	assert.Len(t, fresh, 1)
	assert.Len(t, notifier.titles, 1, "push disabled, no desktop notification")
}

func TestTopicToggleFollow(t *testing.T) {
	fail := false
	remote := &fakeForum{
		topics: func() ([]*shared.Topic, *shared.ApiError) {
			return []*shared.Topic{{Id: "t1", Name: "Computer Science", Followers: 10}}, nil
		},
		follow: func(id string, on bool) (*shared.FollowResponse, *shared.ApiError) {
			if fail {
				return nil, errOffline
			}
			return &shared.FollowResponse{Followed: &on}, nil
		},
	}
	cache := NewTopicCache(remote)
	cache.Load(context.Background())

	topic, apiErr := cache.ToggleFollow(context.Background(), "t1")
	require.Nil(t, apiErr)
	assert.True(t, topic.Following)
	assert.Equal(t, 11, topic.Followers)
	assert.Len(t, cache.Following(), 1)

	fail = true
	topic, apiErr = cache.ToggleFollow(context.Background(), "t1")
	require.NotNil(t, apiErr)
	assert.True(t, topic.Following)
	assert.Equal(t, 11, topic.Followers)
	assert.Equal(t, 1, remote.count("UnfollowTopic"))
}

func TestSubforumSubscribeAndAccess(t *testing.T) {
	remote := &fakeForum{
		subs: func() ([]*shared.SubForum, *shared.ApiError) {
			return []*shared.SubForum{
				{Id: "cs", Name: "Computer Science", Category: shared.SubforumCategoryAcademics, Members: 3},
				{Id: "fs", Name: "Faculty Lounge", Category: shared.SubforumCategoryFacultyStaff, Access: []shared.Role{shared.RoleFaculty, shared.RoleStaff}},
				{Id: "ann", Name: "Announcements", Category: shared.SubforumCategoryGeneral, PostAccess: []shared.Role{shared.RoleAdmin}},
			}, nil
		},
		subscribe: func(id string, on bool) (*shared.SubscribeResponse, *shared.ApiError) {
			if id == "ann" {
				return nil, errServer
			}
			return &shared.SubscribeResponse{Subscribed: &on}, nil
		},
	}
	cache := NewSubforumCache(remote)
	cache.Load(context.Background())

	sub, apiErr := cache.ToggleSubscribe(context.Background(), "cs")
	require.Nil(t, apiErr)
	assert.True(t, sub.Subscribed)
	assert.Equal(t, 4, sub.Members)

	sub, apiErr = cache.ToggleSubscribe(context.Background(), "ann")
	require.NotNil(t, apiErr)
	assert.False(t, sub.Subscribed)
	assert.Equal(t, 0, sub.Members)

	assert.Len(t, cache.Accessible(shared.RoleStudent), 2)
	assert.Len(t, cache.Accessible(shared.RoleFaculty), 3)
	assert.False(t, cache.Get("ann").CanPost(shared.RoleStudent))
	assert.True(t, cache.Get("cs").CanPost(shared.RoleStudent))

	groups := ByCategory(cache.Subforums())
	assert.Len(t, groups, 3)
	assert.Equal(t, "cs", groups[shared.SubforumCategoryAcademics][0].Id)
}

func TestSubforumCreate(t *testing.T) {
	remote := &fakeForum{}
	cache := NewSubforumCache(remote)

	_, apiErr := cache.Create(context.Background(), shared.SubforumDraft{Name: " "})
	require.NotNil(t, apiErr)
	assert.Equal(t, 0, remote.count("CreateSubforum"))

	sub, apiErr := cache.Create(context.Background(), shared.SubforumDraft{Name: "Chess Club"})
	require.Nil(t, apiErr)
	assert.Equal(t, shared.SubforumCategoryGeneral, sub.Category)
	assert.Len(t, cache.Subforums(), 1)
}

func TestSearchMinimumLength(t *testing.T) {
	remote := &fakeForum{}
	searcher := NewSearcher(remote, nil)

	res, apiErr := searcher.Search(context.Background(), " c ")
	require.Nil(t, apiErr)
	assert.True(t, res.Empty())
	assert.Equal(t, 0, remote.count("Search"))
}

func TestSearchFallsBackToCachedPosts(t *testing.T) {
	remote := &fakeForum{
		search: func(q string) (*shared.SearchResults, *shared.ApiError) { return nil, errOffline },
	}
	posts := loadedCache(t, remote, alice)
	searcher := NewSearcher(remote, posts)

	res, apiErr := searcher.Search(context.Background(), "career")
	require.NotNil(t, apiErr)
	require.Len(t, res.Posts, 1)
	assert.Equal(t, "p3", res.Posts[0].Id)
	assert.Empty(t, res.People)
	assert.Empty(t, res.Subforums)
}

func TestSearchDebounced(t *testing.T) {
	var mu sync.Mutex
	var queries []string
	remote := &fakeForum{
		search: func(q string) (*shared.SearchResults, *shared.ApiError) {
			mu.Lock()
			queries = append(queries, q)
			mu.Unlock()
			return &shared.SearchResults{}, nil
		},
	}
	searcher := NewSearcher(remote, nil)

	results := make(chan *shared.SearchResults, 3)
	for _, q := range []string{"ca", "cal", "calc"} {
		searcher.Debounced(context.Background(), q, func(res *shared.SearchResults, apiErr *shared.ApiError) {
			results <- res
		})
	}

	select {
	case <-results:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced search never ran")
	}

	time.Sleep(SearchDebounce + 100*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"calc"}, queries)
	assert.Len(t, results, 0)
}

func TestPostQueries(t *testing.T) {
	posts := seedPosts()

	assert.Len(t, SavedPosts(posts), 1)
	assert.Len(t, PostsByTopic(posts, "t1"), 1)
	assert.Len(t, PostsBySubforum(posts, "cs"), 1)
	assert.Len(t, PostsByAuthor(posts, "u1"), 2)
	assert.Empty(t, PostsByAuthor(posts, ""))

	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	events := UpcomingEvents(posts, now)
	require.Len(t, events, 1)
	assert.Equal(t, "p3", events[0].Id)
	assert.Empty(t, UpcomingEvents(posts, now.AddDate(1, 0, 0)))
}

func TestCanDeleteComment(t *testing.T) {
	posts := seedPosts()
	p2 := posts[1]

	assert.True(t, CanDeleteComment(alice, p2, p2.Comments[0]), "comment author")
	assert.True(t, CanDeleteComment(bob, p2, p2.Comments[0]), "post owner")
	assert.False(t, CanDeleteComment(alice, p2, p2.Comments[1]))
	assert.False(t, CanDeleteComment(nil, p2, p2.Comments[0]))

	assert.True(t, CanModifyPost(alice, posts[0]))
	assert.False(t, CanModifyPost(bob, posts[0]))
}
