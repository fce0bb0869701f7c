package lib

import (
	"context"
	"sync"

	shared "uniforum/shared"
)

type fakeSession struct {
	user *shared.User
}

func (s *fakeSession) Current() *shared.User {
	return s.user.Clone()
}

var alice = &shared.User{Id: "u1", Username: "alice", Name: "Alice", Role: shared.RoleStudent}
var bob = &shared.User{Id: "u2", Username: "bob", Name: "Bob", Role: shared.RoleFaculty}

var errOffline = shared.NewNetworkError("network error, please check your connection")
var errServer = &shared.ApiError{Type: shared.ApiErrorTypeServer, Status: 500, Msg: "server error"}

// fakeForum implements every remote interface the caches use. Each hook is
// optional; unset hooks succeed with an empty answer.
type fakeForum struct {
	mu    sync.Mutex
	calls map[string]int

	list          func() ([]*shared.Post, *shared.ApiError)
	create        func(draft shared.PostDraft) (*shared.Post, *shared.ApiError)
	update        func(id string, patch shared.PostPatch) (*shared.Post, *shared.ApiError)
	deletePost    func(id string) *shared.ApiError
	like          func(id string) (*shared.ToggleLikeResponse, *shared.ApiError)
	save          func(id string) (*shared.ToggleSaveResponse, *shared.ApiError)
	addComment    func(postId, text string) (*shared.Comment, *shared.ApiError)
	deleteComment func(postId, commentId string) *shared.ApiError

	getSettings    func() (shared.Settings, *shared.ApiError)
	updateSettings func(s shared.Settings) (shared.Settings, *shared.ApiError)

	notifications func() ([]*shared.Notification, *shared.ApiError)
	markRead      func(id string) *shared.ApiError
	markAllRead   func() *shared.ApiError

	topics    func() ([]*shared.Topic, *shared.ApiError)
	follow    func(id string, on bool) (*shared.FollowResponse, *shared.ApiError)
	subs      func() ([]*shared.SubForum, *shared.ApiError)
	newSub    func(d shared.SubforumDraft) (*shared.SubForum, *shared.ApiError)
	subscribe func(id string, on bool) (*shared.SubscribeResponse, *shared.ApiError)
	search    func(q string) (*shared.SearchResults, *shared.ApiError)
}

func (f *fakeForum) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeForum) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeForum) ListPosts(ctx context.Context) ([]*shared.Post, *shared.ApiError) {
	f.record("ListPosts")
	if f.list == nil {
		return []*shared.Post{}, nil
	}
	return f.list()
}

func (f *fakeForum) CreatePost(ctx context.Context, draft shared.PostDraft) (*shared.Post, *shared.ApiError) {
	f.record("CreatePost")
	if f.create == nil {
		return &shared.Post{Id: "srv_1", Title: draft.Title, Body: draft.Body}, nil
	}
	return f.create(draft)
}

func (f *fakeForum) UpdatePost(ctx context.Context, id string, patch shared.PostPatch) (*shared.Post, *shared.ApiError) {
	f.record("UpdatePost")
	if f.update == nil {
		return nil, nil
	}
	return f.update(id, patch)
}

func (f *fakeForum) DeletePost(ctx context.Context, id string) *shared.ApiError {
	f.record("DeletePost")
	if f.deletePost == nil {
		return nil
	}
	return f.deletePost(id)
}

func (f *fakeForum) ToggleLike(ctx context.Context, id string) (*shared.ToggleLikeResponse, *shared.ApiError) {
	f.record("ToggleLike")
	if f.like == nil {
		return &shared.ToggleLikeResponse{}, nil
	}
	return f.like(id)
}

func (f *fakeForum) ToggleSave(ctx context.Context, id string) (*shared.ToggleSaveResponse, *shared.ApiError) {
	f.record("ToggleSave")
	if f.save == nil {
		return &shared.ToggleSaveResponse{}, nil
	}
	return f.save(id)
}

func (f *fakeForum) AddComment(ctx context.Context, postId, text string) (*shared.Comment, *shared.ApiError) {
	f.record("AddComment")
	if f.addComment == nil {
		return &shared.Comment{Id: "c_srv_1", Text: text}, nil
	}
	return f.addComment(postId, text)
}

func (f *fakeForum) DeleteComment(ctx context.Context, postId, commentId string) *shared.ApiError {
	f.record("DeleteComment")
	if f.deleteComment == nil {
		return nil
	}
	return f.deleteComment(postId, commentId)
}

func (f *fakeForum) GetSettings(ctx context.Context) (shared.Settings, *shared.ApiError) {
	f.record("GetSettings")
	if f.getSettings == nil {
		return shared.Settings{}, nil
	}
	return f.getSettings()
}

func (f *fakeForum) UpdateSettings(ctx context.Context, s shared.Settings) (shared.Settings, *shared.ApiError) {
	f.record("UpdateSettings")
	if f.updateSettings == nil {
		return s, nil
	}
	return f.updateSettings(s)
}

func (f *fakeForum) ListNotifications(ctx context.Context) ([]*shared.Notification, *shared.ApiError) {
	f.record("ListNotifications")
	if f.notifications == nil {
		return []*shared.Notification{}, nil
	}
	return f.notifications()
}

func (f *fakeForum) MarkNotificationRead(ctx context.Context, id string) *shared.ApiError {
	f.record("MarkNotificationRead")
	if f.markRead == nil {
		return nil
	}
	return f.markRead(id)
}

func (f *fakeForum) MarkAllNotificationsRead(ctx context.Context) *shared.ApiError {
	f.record("MarkAllNotificationsRead")
	if f.markAllRead == nil {
		return nil
	}
	return f.markAllRead()
}

func (f *fakeForum) ListTopics(ctx context.Context) ([]*shared.Topic, *shared.ApiError) {
	f.record("ListTopics")
	if f.topics == nil {
		return []*shared.Topic{}, nil
	}
	return f.topics()
}

func (f *fakeForum) FollowTopic(ctx context.Context, id string) (*shared.FollowResponse, *shared.ApiError) {
	f.record("FollowTopic")
	if f.follow == nil {
		return &shared.FollowResponse{}, nil
	}
	return f.follow(id, true)
}

func (f *fakeForum) UnfollowTopic(ctx context.Context, id string) (*shared.FollowResponse, *shared.ApiError) {
	f.record("UnfollowTopic")
	if f.follow == nil {
		return &shared.FollowResponse{}, nil
	}
	return f.follow(id, false)
}

func (f *fakeForum) ListSubforums(ctx context.Context) ([]*shared.SubForum, *shared.ApiError) {
	f.record("ListSubforums")
	if f.subs == nil {
		return []*shared.SubForum{}, nil
	}
	return f.subs()
}

func (f *fakeForum) CreateSubforum(ctx context.Context, d shared.SubforumDraft) (*shared.SubForum, *shared.ApiError) {
	f.record("CreateSubforum")
	if f.newSub == nil {
		return &shared.SubForum{Id: "sf_new", Name: d.Name, Category: d.Category}, nil
	}
	return f.newSub(d)
}

func (f *fakeForum) Subscribe(ctx context.Context, id string) (*shared.SubscribeResponse, *shared.ApiError) {
	f.record("Subscribe")
	if f.subscribe == nil {
		return &shared.SubscribeResponse{}, nil
	}
	return f.subscribe(id, true)
}

func (f *fakeForum) Unsubscribe(ctx context.Context, id string) (*shared.SubscribeResponse, *shared.ApiError) {
	f.record("Unsubscribe")
	if f.subscribe == nil {
		return &shared.SubscribeResponse{}, nil
	}
	return f.subscribe(id, false)
}

func (f *fakeForum) Search(ctx context.Context, q string) (*shared.SearchResults, *shared.ApiError) {
	f.record("Search")
	if f.search == nil {
		return &shared.SearchResults{}, nil
	}
	return f.search(q)
}

// gate blocks a fake call until released, signalling when it is entered.
type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (g *gate) wait() {
	g.entered <- struct{}{}
	<-g.release
}

func seedPosts() []*shared.Post {
	return []*shared.Post{
		{Id: "p1", Author: alice.AsAuthor(), Title: "Study group for CSC 2200", ContentType: shared.ContentTypeDiscussion, TopicId: "t1", Likes: 5},
		{Id: "p2", Author: bob.AsAuthor(), Title: "Office hours moved", ContentType: shared.ContentTypeAnnouncement, SubforumId: "cs", Likes: 2, Liked: true, Saved: true,
			Comments: []*shared.Comment{
				{Id: "c1", Author: alice.AsAuthor(), Text: "Thanks!"},
				{Id: "c2", Author: bob.AsAuthor(), Text: "No problem"},
			},
			CommentCount: 2,
		},
		{Id: "p3", Author: alice.AsAuthor(), Title: "Career fair", ContentType: shared.ContentTypeEvent, EventDate: "2030-03-15", EventTime: "10:00", TopicId: "t2"},
	}
}
