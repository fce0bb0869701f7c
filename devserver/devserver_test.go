package devserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"uniforum/api"
	"uniforum/auth"
	"uniforum/lib"
	shared "uniforum/shared"
	"uniforum/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	server *Server
	clock  *clock
	store  *storage.MemStorage
	creds  *auth.Credentials
	client *api.Api
	auth   *auth.Store
	posts  *lib.PostCache
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	c := &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	server, err := New(Options{SigningKey: []byte("test-key"), Now: c.Now})
	require.NoError(t, err)

	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)

	store := storage.NewMemStorage()
	creds := auth.NewCredentials(store)
	client := api.New(ts.URL, creds)
	authStore := auth.NewStore(client, creds)
	posts := lib.NewPostCache(client, authStore, store)
	authStore.OnSignOut(posts.Reset)

	return &harness{
		server: server,
		clock:  c,
		store:  store,
		creds:  creds,
		client: client,
		auth:   authStore,
		posts:  posts,
	}
}

func (h *harness) signIn(t *testing.T, username string) {
	t.Helper()
	apiErr := h.auth.SignIn(context.Background(), username, SeedPassword)
	require.Nil(t, apiErr)
}

func TestSignInLoadSignOut(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.signIn(t, "jean")

	user := h.auth.Current()
	require.NotNil(t, user)
	assert.Equal(t, "u_wsu_001", user.Id)
	assert.Equal(t, shared.RoleStudent, user.Role)
	assert.True(t, user.Settings.PushNotifications())

	posts, apiErr := h.posts.Load(ctx)
	require.Nil(t, apiErr)
	assert.Len(t, posts, 7)

	p2 := h.posts.Get("p2")
	require.NotNil(t, p2)
	assert.True(t, p2.Liked)
	assert.Equal(t, 31, p2.Likes)

	h.auth.SignOut(ctx)

	assert.Nil(t, h.auth.Current())
	access, refresh := h.creds.Tokens()
	assert.Empty(t, access)
	assert.Empty(t, refresh)
	assert.False(t, h.store.Has(storage.KeyAuth))
	assert.Empty(t, h.posts.Posts())
}

func TestSignInWithEmail(t *testing.T) {
	h := newHarness(t)

	apiErr := h.auth.SignIn(context.Background(), "drsmith@wayne.edu", SeedPassword)
	require.Nil(t, apiErr)
	assert.Equal(t, shared.RoleFaculty, h.auth.Current().Role)
}

func TestSignInWrongPassword(t *testing.T) {
	h := newHarness(t)

	apiErr := h.auth.SignIn(context.Background(), "jean", "nope")
	require.NotNil(t, apiErr)
	assert.Equal(t, shared.ApiErrorTypeInvalidToken, apiErr.Type)
	assert.Equal(t, "Invalid username or password", apiErr.Msg)
	assert.Nil(t, h.auth.Current())
	assert.False(t, h.creds.HasAccessToken())
}

func TestExpiredAccessTokenIsRefreshed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.signIn(t, "jean")
	oldAccess, oldRefresh := h.creds.Tokens()

	h.clock.Advance(accessTokenTTL + time.Minute)

	_, apiErr := h.posts.Load(ctx)
	require.Nil(t, apiErr)

	access, refresh := h.creds.Tokens()
	assert.NotEqual(t, oldAccess, access)
	assert.NotEqual(t, oldRefresh, refresh)
}

func TestRefreshTokenRevokedBySignOut(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.signIn(t, "jean")
	_, refresh := h.creds.Tokens()

	h.auth.SignOut(ctx)

	// a stale pair from another device
	require.NoError(t, h.creds.SetTokens("expired", refresh))
	_, apiErr := h.client.ListPosts(ctx)
	require.NotNil(t, apiErr)
	assert.Equal(t, shared.ApiErrorTypeInvalidToken, apiErr.Type)
}

func TestRehydrateRejectedToken(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.creds.SetTokens("garbage", ""))

	apiErr := h.auth.Rehydrate(context.Background())
	require.NotNil(t, apiErr)
	assert.Nil(t, h.auth.Current())
	assert.False(t, h.creds.HasAccessToken())
}

// restart builds a fresh client, session store and post cache over the
// harness storage, the way a new process would.
func (h *harness) restart() (*auth.Store, *lib.PostCache) {
	creds := auth.NewCredentials(h.store)
	client := api.New(h.client.Host(), creds)
	authStore := auth.NewStore(client, creds)
	posts := lib.NewPostCache(client, authStore, h.store)
	authStore.OnSignOut(posts.Reset)
	return authStore, posts
}

func TestFailedRehydrateDropsPreviousSnapshots(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.signIn(t, "jean")
	draft, apiErr := h.posts.Create(ctx, shared.PostDraft{Title: "jean private draft", SubforumId: "announcements"})
	require.NotNil(t, apiErr)
	require.NotNil(t, draft)

	require.NoError(t, h.creds.SetTokens("garbage", ""))

	authStore, posts := h.restart()
	require.NotNil(t, posts.Get(draft.Id), "snapshot is restored before the session is checked")

	ended := false
	authStore.OnSignOut(func() { ended = true })

	apiErr = authStore.Rehydrate(ctx)
	require.NotNil(t, apiErr)
	assert.True(t, ended, "a failed restore ends the session like a sign-out")
	assert.Empty(t, posts.Posts())
	assert.False(t, h.store.Has(storage.KeyPosts))
	assert.False(t, h.store.Has(storage.KeyTombstones))

	require.Nil(t, authStore.SignIn(ctx, "ali", SeedPassword))
	loaded, apiErr := posts.Load(ctx)
	require.Nil(t, apiErr)
	for _, p := range loaded {
		assert.False(t, lib.IsLocalPostId(p.Id), "ali must not see %q", p.Title)
	}
}

func TestSignInAsAnotherUserClaimsSnapshots(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.auth.OnSignIn(func(user *shared.User) {
		lib.ClaimSnapshots(h.store, user.Id, h.posts.Reset)
	})
	h.signIn(t, "jean")
	draft, _ := h.posts.Create(ctx, shared.PostDraft{Title: "jean private draft", SubforumId: "announcements"})
	require.NotNil(t, draft)

	// tokens vanish without the session ending
	require.NoError(t, h.creds.ClearTokens())

	authStore, posts := h.restart()
	authStore.OnSignIn(func(user *shared.User) {
		lib.ClaimSnapshots(h.store, user.Id, posts.Reset)
	})
	require.NotNil(t, posts.Get(draft.Id))

	require.Nil(t, authStore.SignIn(ctx, "ali", SeedPassword))
	assert.Nil(t, posts.Get(draft.Id))

	loaded, apiErr := posts.Load(ctx)
	require.Nil(t, apiErr)
	for _, p := range loaded {
		assert.False(t, lib.IsLocalPostId(p.Id), "ali must not see %q", p.Title)
	}
}

func TestSignUpActivateSignIn(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, apiErr := h.auth.SignUp(ctx, shared.SignUpRequest{
		Email:    "new.student@wayne.edu",
		Password: "longenough",
		Name:     "New Student",
	})
	require.Nil(t, apiErr)

	apiErr = h.auth.SignIn(ctx, "new.student", "longenough")
	require.NotNil(t, apiErr, "inactive accounts cannot sign in")

	h.server.mu.Lock()
	acct := h.server.accounts[h.server.byUsername["new.student"]]
	uidb64, token := encodeUid(acct.user.Id), acct.activationToken
	h.server.mu.Unlock()

	_, apiErr = h.auth.VerifyEmail(ctx, uidb64, "wrong")
	require.NotNil(t, apiErr)

	_, apiErr = h.auth.VerifyEmail(ctx, uidb64, token)
	require.Nil(t, apiErr)

	apiErr = h.auth.SignIn(ctx, "new.student", "longenough")
	require.Nil(t, apiErr)
	assert.Equal(t, "New Student", h.auth.Current().Name)
	assert.True(t, h.auth.Current().EmailVerified)
}

func TestSignUpDuplicateUsername(t *testing.T) {
	h := newHarness(t)

	_, apiErr := h.auth.SignUp(context.Background(), shared.SignUpRequest{
		Username: "jean",
		Email:    "someone.else@wayne.edu",
		Password: "longenough",
	})
	require.NotNil(t, apiErr)
	assert.Equal(t, shared.ApiErrorTypeValidation, apiErr.Type)
	assert.Equal(t, "username: A user with that username already exists.", apiErr.Msg)
}

func TestPasswordReset(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, apiErr := h.auth.RequestPasswordReset(ctx, "jean@wayne.edu")
	require.Nil(t, apiErr)

	h.server.mu.Lock()
	acct := h.server.accounts["u_wsu_001"]
	uidb64, token := encodeUid(acct.user.Id), acct.resetToken
	h.server.mu.Unlock()
	require.NotEmpty(t, token)

	_, apiErr = h.auth.ResetPassword(ctx, uidb64, token, "brand-new-pass", "brand-new-pass")
	require.Nil(t, apiErr)

	assert.NotNil(t, h.auth.SignIn(ctx, "jean", SeedPassword))
	assert.Nil(t, h.auth.SignIn(ctx, "jean", "brand-new-pass"))
}

func TestPostLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.signIn(t, "jean")
	_, apiErr := h.posts.Load(ctx)
	require.Nil(t, apiErr)

	created, apiErr := h.posts.Create(ctx, shared.PostDraft{Title: "Lost umbrella", Body: "Blue, near the library", SubforumId: "cs"})
	require.Nil(t, apiErr)
	assert.True(t, strings.HasPrefix(created.Id, "p_"))
	assert.Equal(t, created.Id, h.posts.Posts()[0].Id)

	liked, apiErr := h.posts.ToggleLike(ctx, created.Id)
	require.Nil(t, apiErr)
	assert.True(t, liked.Liked)
	assert.Equal(t, 1, liked.Likes)

	comment, apiErr := h.posts.AddComment(ctx, created.Id, "found it?")
	require.Nil(t, apiErr)
	assert.True(t, strings.HasPrefix(comment.Id, "c_"))

	require.Nil(t, h.posts.DeleteComment(ctx, created.Id, comment.Id))
	assert.Empty(t, h.posts.Get(created.Id).Comments)

	require.Nil(t, h.posts.Delete(ctx, created.Id))

	posts, apiErr := h.posts.Load(ctx)
	require.Nil(t, apiErr)
	for _, p := range posts {
		assert.NotEqual(t, created.Id, p.Id)
	}
}

func TestCreateInRestrictedSubforumKeepsLocalPost(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.signIn(t, "jean")

	post, apiErr := h.posts.Create(ctx, shared.PostDraft{Title: "Hello", SubforumId: "announcements"})
	require.NotNil(t, apiErr)
	assert.Equal(t, shared.ApiErrorTypeForbidden, apiErr.Type)
	require.NotNil(t, post)
	assert.True(t, lib.IsLocalPostId(post.Id))
	assert.NotNil(t, h.posts.Get(post.Id))
	assert.Equal(t, apiErr, h.posts.Err())
}

func TestServerRejectsOthersEdits(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.signIn(t, "jean")

	title := "hijacked"
	_, apiErr := h.client.UpdatePost(ctx, "p1", shared.PostPatch{Title: &title})
	require.NotNil(t, apiErr)
	assert.Equal(t, shared.ApiErrorTypeForbidden, apiErr.Type)

	apiErr = h.client.DeleteComment(ctx, "p1", "c1")
	require.NotNil(t, apiErr)
	assert.Equal(t, shared.ApiErrorTypeForbidden, apiErr.Type)
}

func TestCommentNotifiesPostAuthor(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.signIn(t, "jean")
	_, apiErr := h.client.AddComment(ctx, "p3", "I might be interested")
	require.Nil(t, apiErr)
	h.auth.SignOut(ctx)

	h.signIn(t, "sarah")
	notifications, apiErr := h.client.ListNotifications(ctx)
	require.Nil(t, apiErr)
	require.Len(t, notifications, 1)
	assert.Equal(t, shared.NotificationTypeComment, notifications[0].Type)
	assert.Equal(t, "Jean D.", notifications[0].ActorName)
	assert.False(t, notifications[0].Read)

	require.Nil(t, h.client.MarkNotificationRead(ctx, notifications[0].Id))
	notifications, apiErr = h.client.ListNotifications(ctx)
	require.Nil(t, apiErr)
	assert.True(t, notifications[0].Read)
}

func TestSettingsRoundTrip(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.signIn(t, "jean")
	settings := lib.NewSettingsCache(h.client, h.store, nil)

	loaded, apiErr := settings.Load(ctx)
	require.Nil(t, apiErr)
	assert.False(t, loaded.DarkMode())

	_, apiErr = settings.Set(ctx, shared.SettingDarkMode, true)
	require.Nil(t, apiErr)

	remote, apiErr := h.client.GetSettings(ctx)
	require.Nil(t, apiErr)
	assert.True(t, remote.DarkMode())
	assert.True(t, remote.PushNotifications())
}

func TestSearch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.signIn(t, "jean")
	searcher := lib.NewSearcher(h.client, h.posts)

	res, apiErr := searcher.Search(ctx, "robotics")
	require.Nil(t, apiErr)
	require.Len(t, res.People, 1)
	assert.Equal(t, "WSU Robotics", res.People[0].Name)
	require.NotEmpty(t, res.Posts)
	assert.Equal(t, "p2", res.Posts[0].Id)

	res, apiErr = searcher.Search(ctx, "lounge")
	require.Nil(t, apiErr)
	require.Len(t, res.Subforums, 1, "students only see the lounges they can access")
	assert.Equal(t, "student-lounge", res.Subforums[0].Id)
}

func TestTopicsAndSubforums(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.signIn(t, "jean")

	topics := lib.NewTopicCache(h.client)
	_, apiErr := topics.Load(ctx)
	require.Nil(t, apiErr)
	require.Len(t, topics.Following(), 1)

	topic, apiErr := topics.ToggleFollow(ctx, "t8")
	require.Nil(t, apiErr)
	assert.True(t, topic.Following)
	assert.Equal(t, 1568, topic.Followers)

	subforums := lib.NewSubforumCache(h.client)
	_, apiErr = subforums.Load(ctx)
	require.Nil(t, apiErr)

	_, apiErr = subforums.ToggleSubscribe(ctx, "faculty-lounge")
	require.NotNil(t, apiErr)
	assert.Equal(t, shared.ApiErrorTypeForbidden, apiErr.Type)
	assert.False(t, subforums.Get("faculty-lounge").Subscribed)

	created, apiErr := subforums.Create(ctx, shared.SubforumDraft{Name: "Chess Club", Category: shared.SubforumCategoryCampusLife})
	require.Nil(t, apiErr)
	assert.True(t, created.Subscribed)
	assert.Equal(t, 1, created.Members)
}

func TestReport(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.signIn(t, "jean")

	res, apiErr := h.client.ReportContent(ctx, shared.ReportRequest{Type: shared.ReportTypePost, TargetId: "p7", Reason: "spam"})
	require.Nil(t, apiErr)
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.ReportId)

	_, apiErr = h.client.ReportContent(ctx, shared.ReportRequest{Type: "bogus", TargetId: "p7", Reason: "spam"})
	require.NotNil(t, apiErr)
	assert.Equal(t, shared.ApiErrorTypeValidation, apiErr.Type)
}

func TestUnauthenticatedRequest(t *testing.T) {
	server, err := New(Options{SigningKey: []byte("k")})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "credentials were not provided")
}
