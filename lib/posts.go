package lib

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	shared "uniforum/shared"
	"uniforum/storage"

	"github.com/google/uuid"
)

const LocalPostPrefix = "local_"
const LocalCommentPrefix = "c_local_"

func IsLocalPostId(id string) bool {
	return strings.HasPrefix(id, LocalPostPrefix)
}

func IsLocalCommentId(id string) bool {
	return strings.HasPrefix(id, LocalCommentPrefix)
}

// PostsRemote is the slice of the api client the post cache needs.
type PostsRemote interface {
	ListPosts(ctx context.Context) ([]*shared.Post, *shared.ApiError)
	CreatePost(ctx context.Context, draft shared.PostDraft) (*shared.Post, *shared.ApiError)
	UpdatePost(ctx context.Context, id string, patch shared.PostPatch) (*shared.Post, *shared.ApiError)
	DeletePost(ctx context.Context, id string) *shared.ApiError
	ToggleLike(ctx context.Context, id string) (*shared.ToggleLikeResponse, *shared.ApiError)
	ToggleSave(ctx context.Context, id string) (*shared.ToggleSaveResponse, *shared.ApiError)
	AddComment(ctx context.Context, postId, text string) (*shared.Comment, *shared.ApiError)
	DeleteComment(ctx context.Context, postId, commentId string) *shared.ApiError
}

// Session exposes the signed-in user, or nil.
type Session interface {
	Current() *shared.User
}

// PostCache is the in-memory post feed for the active session. Mutations
// are applied locally first and then synced; see the individual methods for
// what happens when the sync fails.
type PostCache struct {
	client  PostsRemote
	session Session
	store   storage.Storage

	mu         sync.Mutex
	posts      []*shared.Post
	tombstones map[string]bool
	// bumped on every toggle so only the latest one may settle the post
	likeSeq   map[string]uint64
	saveSeq   map[string]uint64
	loading   bool
	err       *shared.ApiError
	listeners []func()

	now func() time.Time
}

// NewPostCache restores any snapshot persisted earlier in the session. store
// may be nil.
func NewPostCache(client PostsRemote, session Session, store storage.Storage) *PostCache {
	c := &PostCache{
		client:     client,
		session:    session,
		store:      store,
		tombstones: map[string]bool{},
		likeSeq:    map[string]uint64{},
		saveSeq:    map[string]uint64{},
		now:        time.Now,
	}
	c.restore()
	return c
}

func (c *PostCache) restore() {
	if c.store == nil {
		return
	}

	var posts []*shared.Post
	if _, err := c.store.Load(storage.KeyPosts, &posts); err != nil {
		log.Printf("Error restoring posts snapshot: %v\n", err)
	} else {
		c.posts = posts
	}

	var tombstones []string
	if _, err := c.store.Load(storage.KeyTombstones, &tombstones); err != nil {
		log.Printf("Error restoring tombstones: %v\n", err)
	}
	for _, id := range tombstones {
		c.tombstones[id] = true
	}
}

func (c *PostCache) persistLocked() {
	if c.store == nil {
		return
	}

	err := c.store.Save(storage.KeyPosts, c.posts)
	if err != nil {
		log.Printf("Error saving posts snapshot: %v\n", err)
	}

	tombstones := make([]string, 0, len(c.tombstones))
	for id := range c.tombstones {
		tombstones = append(tombstones, id)
	}
	err = c.store.Save(storage.KeyTombstones, tombstones)
	if err != nil {
		log.Printf("Error saving tombstones: %v\n", err)
	}
}

// OnChange registers fn to run after every local change to the list.
func (c *PostCache) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *PostCache) notify() {
	c.mu.Lock()
	listeners := make([]func(), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Posts returns a copy of the visible list, newest first.
func (c *PostCache) Posts() []*shared.Post {
	c.mu.Lock()
	defer c.mu.Unlock()
	return clonePosts(c.posts)
}

func (c *PostCache) Get(id string) *shared.Post {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, post := c.findLocked(id)
	return post.Clone()
}

func (c *PostCache) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *PostCache) Err() *shared.ApiError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *PostCache) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = nil
}

// Reset drops every post and tombstone. Called on sign-out.
func (c *PostCache) Reset() {
	c.mu.Lock()
	c.posts = nil
	c.tombstones = map[string]bool{}
	c.likeSeq = map[string]uint64{}
	c.saveSeq = map[string]uint64{}
	c.err = nil
	c.loading = false
	if c.store != nil {
		err := storage.Clear(c.store, storage.KeyPosts, storage.KeyTombstones)
		if err != nil {
			log.Printf("Error clearing posts snapshot: %v\n", err)
		}
	}
	c.mu.Unlock()

	c.notify()
}

func (c *PostCache) findLocked(id string) (int, *shared.Post) {
	for i, p := range c.posts {
		if p.Id == id {
			return i, p
		}
	}
	return -1, nil
}

func (c *PostCache) setErr(apiErr *shared.ApiError) *shared.ApiError {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = apiErr
	return apiErr
}

func notFound(what, id string) *shared.ApiError {
	return &shared.ApiError{Type: shared.ApiErrorTypeNotFound, Msg: what + " " + id + " not found"}
}

var errSignedOut = &shared.ApiError{Type: shared.ApiErrorTypeInvalidToken, Msg: "sign in to continue"}

// Load replaces the list with the server's. Tombstoned ids stay hidden and
// unsynced local posts stay at the head. On failure the previous list is
// kept.
func (c *PostCache) Load(ctx context.Context) ([]*shared.Post, *shared.ApiError) {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	posts, apiErr := c.client.ListPosts(ctx)

	c.mu.Lock()
	c.loading = false
	if apiErr != nil {
		c.err = apiErr
		current := clonePosts(c.posts)
		c.mu.Unlock()
		log.Printf("Error loading posts, keeping cached list: %v\n", apiErr)
		return current, apiErr
	}

	next := make([]*shared.Post, 0, len(posts))
	for _, p := range c.posts {
		if IsLocalPostId(p.Id) {
			next = append(next, p)
		}
	}
	seen := map[string]bool{}
	for _, p := range posts {
		if p == nil || c.tombstones[p.Id] || seen[p.Id] {
			continue
		}
		seen[p.Id] = true
		normalizePost(p)
		next = append(next, p)
	}

	c.posts = next
	c.err = nil
	c.persistLocked()
	current := clonePosts(c.posts)
	c.mu.Unlock()

	c.notify()
	return current, nil
}

func normalizePost(p *shared.Post) {
	if p.ContentType == "" {
		p.ContentType = shared.ContentTypeDiscussion
	}
	if p.Likes < 0 {
		p.Likes = 0
	}
	if p.Comments != nil && p.CommentCount < len(p.Comments) {
		p.CommentCount = len(p.Comments)
	}
}

// Create prepends a local post right away and swaps in the server's copy
// once it arrives. If the server call fails the local post is kept and the
// error returned alongside it.
func (c *PostCache) Create(ctx context.Context, draft shared.PostDraft) (*shared.Post, *shared.ApiError) {
	apiErr := shared.ValidatePostDraft(draft)
	if apiErr != nil {
		return nil, c.setErr(apiErr)
	}

	user := c.session.Current()
	if user == nil {
		return nil, c.setErr(errSignedOut)
	}

	draft.Title = strings.TrimSpace(draft.Title)
	if draft.ContentType == "" {
		draft.ContentType = shared.ContentTypeDiscussion
	}

	local := &shared.Post{
		Id:          LocalPostPrefix + uuid.New().String(),
		Author:      user.AsAuthor(),
		Title:       draft.Title,
		Body:        draft.Body,
		ContentType: draft.ContentType,
		TopicId:     draft.TopicId,
		TopicName:   draft.TopicName,
		SubforumId:  draft.SubforumId,
		EventDate:   draft.EventDate,
		EventTime:   draft.EventTime,
		EventPlace:  draft.EventPlace,
		CreatedAt:   c.now(),
		Comments:    []*shared.Comment{},
	}

	c.mu.Lock()
	c.posts = append([]*shared.Post{local}, c.posts...)
	c.persistLocked()
	result := local.Clone()
	c.mu.Unlock()
	c.notify()

	created, apiErr := c.client.CreatePost(ctx, draft)
	if apiErr != nil {
		log.Printf("Error creating post, keeping local copy %s: %v\n", local.Id, apiErr)
		return result, c.setErr(apiErr)
	}

	c.mu.Lock()
	if created.Author == nil {
		created.Author = local.Author
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = local.CreatedAt
	}
	if created.Comments == nil {
		created.Comments = []*shared.Comment{}
	}
	normalizePost(created)

	// drop any copy a concurrent Load already pulled in
	if i, _ := c.findLocked(created.Id); i >= 0 {
		c.posts = append(c.posts[:i], c.posts[i+1:]...)
	}

	var edits shared.PostPatch
	i, current := c.findLocked(local.Id)
	if i >= 0 {
		// edits made to the local copy while the create was in flight
		edits = shared.DiffPost(local, current)
		edits.ApplyTo(created)
		c.posts[i] = created
	} else if c.tombstones[local.Id] {
		// deleted while the create was in flight
		c.tombstones[created.Id] = true
	} else {
		c.posts = append([]*shared.Post{created}, c.posts...)
	}
	delete(c.tombstones, local.Id)
	c.persistLocked()
	result = created.Clone()
	c.mu.Unlock()

	c.notify()

	if !edits.IsEmpty() {
		log.Printf("Post %s was edited before its create settled, syncing the edit\n", created.Id)
		if synced, apiErr := c.Update(ctx, created.Id, edits); synced != nil {
			return synced, apiErr
		}
	}
	return result, nil
}

// Update applies patch locally. A failed sync keeps the local edit.
func (c *PostCache) Update(ctx context.Context, id string, patch shared.PostPatch) (*shared.Post, *shared.ApiError) {
	apiErr := shared.ValidatePostPatch(patch)
	if apiErr != nil {
		return nil, c.setErr(apiErr)
	}

	user := c.session.Current()

	c.mu.Lock()
	i, post := c.findLocked(id)
	if post == nil {
		c.mu.Unlock()
		return nil, c.setErr(notFound("post", id))
	}
	if !IsLocalPostId(id) && !CanModifyPost(user, post) {
		c.mu.Unlock()
		return nil, c.setErr(&shared.ApiError{Type: shared.ApiErrorTypeForbidden, Msg: "only the author can edit this post"})
	}
	next := post.Clone()
	patch.ApplyTo(next)
	c.posts[i] = next
	c.persistLocked()
	result := next.Clone()
	c.mu.Unlock()
	c.notify()

	if IsLocalPostId(id) {
		return result, nil
	}

	updated, apiErr := c.client.UpdatePost(ctx, id, patch)
	if apiErr != nil {
		log.Printf("Error updating post %s, keeping local edit: %v\n", id, apiErr)
		return result, c.setErr(apiErr)
	}
	if updated == nil {
		return result, nil
	}

	c.mu.Lock()
	i, post = c.findLocked(id)
	if post != nil {
		if updated.Author == nil {
			updated.Author = post.Author
		}
		if updated.Comments == nil {
			updated.Comments = post.Comments
			updated.CommentCount = post.CommentCount
		}
		normalizePost(updated)
		c.posts[i] = updated
		c.persistLocked()
		result = updated.Clone()
	}
	c.mu.Unlock()

	c.notify()
	return result, nil
}

// Delete removes the post and tombstones its id for the rest of the
// session, so later loads never bring it back.
func (c *PostCache) Delete(ctx context.Context, id string) *shared.ApiError {
	user := c.session.Current()

	c.mu.Lock()
	i, post := c.findLocked(id)
	if post == nil {
		c.mu.Unlock()
		return c.setErr(notFound("post", id))
	}
	if !IsLocalPostId(id) && !CanModifyPost(user, post) {
		c.mu.Unlock()
		return c.setErr(&shared.ApiError{Type: shared.ApiErrorTypeForbidden, Msg: "only the author can delete this post"})
	}
	c.posts = append(c.posts[:i], c.posts[i+1:]...)
	c.tombstones[id] = true
	c.persistLocked()
	c.mu.Unlock()
	c.notify()

	if IsLocalPostId(id) {
		return nil
	}

	apiErr := c.client.DeletePost(ctx, id)
	if apiErr != nil {
		log.Printf("Error deleting post %s, keeping it hidden: %v\n", id, apiErr)
		return c.setErr(apiErr)
	}
	return nil
}

// ToggleLike flips the like flag and count together. The server's answer
// wins when it has one; a failure restores the exact previous values.
func (c *PostCache) ToggleLike(ctx context.Context, id string) (*shared.Post, *shared.ApiError) {
	c.mu.Lock()
	i, post := c.findLocked(id)
	if post == nil {
		c.mu.Unlock()
		return nil, c.setErr(notFound("post", id))
	}
	prevLiked, prevLikes := post.Liked, post.Likes

	next := post.Clone()
	next.Liked = !prevLiked
	if next.Liked {
		next.Likes = prevLikes + 1
	} else if prevLikes > 0 {
		next.Likes = prevLikes - 1
	}
	optimisticLiked, optimisticLikes := next.Liked, next.Likes
	c.likeSeq[id]++
	seq := c.likeSeq[id]

	c.posts[i] = next
	c.persistLocked()
	result := next.Clone()
	c.mu.Unlock()
	c.notify()

	if IsLocalPostId(id) {
		return result, nil
	}

	res, apiErr := c.client.ToggleLike(ctx, id)

	c.mu.Lock()
	i, post = c.findLocked(id)
	// a later toggle or load owns the post now; leave it alone
	stillOurs := post != nil && c.likeSeq[id] == seq &&
		post.Liked == optimisticLiked && post.Likes == optimisticLikes
	if stillOurs {
		next = post.Clone()
		if apiErr != nil {
			next.Liked, next.Likes = prevLiked, prevLikes
		} else if res != nil {
			applyLikeResponse(next, res)
		}
		c.posts[i] = next
		c.persistLocked()
	}
	if post != nil {
		result = c.posts[i].Clone()
	}
	if apiErr != nil {
		c.err = apiErr
	}
	c.mu.Unlock()

	if stillOurs {
		c.notify()
	}
	if apiErr != nil {
		log.Printf("Error toggling like on %s, rolled back: %v\n", id, apiErr)
		return result, apiErr
	}
	return result, nil
}

func applyLikeResponse(post *shared.Post, res *shared.ToggleLikeResponse) {
	if res.Liked != nil && *res.Liked != post.Liked {
		post.Liked = *res.Liked
		if post.Liked {
			post.Likes++
		} else if post.Likes > 0 {
			post.Likes--
		}
	}
	if res.Likes != nil && *res.Likes >= 0 {
		post.Likes = *res.Likes
	}
}

// ToggleSave flips the saved flag with exact rollback on failure.
func (c *PostCache) ToggleSave(ctx context.Context, id string) (*shared.Post, *shared.ApiError) {
	c.mu.Lock()
	i, post := c.findLocked(id)
	if post == nil {
		c.mu.Unlock()
		return nil, c.setErr(notFound("post", id))
	}
	prevSaved := post.Saved

	next := post.Clone()
	next.Saved = !prevSaved
	c.saveSeq[id]++
	seq := c.saveSeq[id]
	c.posts[i] = next
	c.persistLocked()
	result := next.Clone()
	c.mu.Unlock()
	c.notify()

	if IsLocalPostId(id) {
		return result, nil
	}

	res, apiErr := c.client.ToggleSave(ctx, id)

	c.mu.Lock()
	i, post = c.findLocked(id)
	stillOurs := post != nil && c.saveSeq[id] == seq && post.Saved == !prevSaved
	if stillOurs {
		next = post.Clone()
		if apiErr != nil {
			next.Saved = prevSaved
		} else if res != nil && res.Saved != nil {
			next.Saved = *res.Saved
		}
		c.posts[i] = next
		c.persistLocked()
	}
	if post != nil {
		result = c.posts[i].Clone()
	}
	if apiErr != nil {
		c.err = apiErr
	}
	c.mu.Unlock()

	if stillOurs {
		c.notify()
	}
	if apiErr != nil {
		log.Printf("Error toggling save on %s, rolled back: %v\n", id, apiErr)
		return result, apiErr
	}
	return result, nil
}

func clonePosts(posts []*shared.Post) []*shared.Post {
	res := make([]*shared.Post, len(posts))
	for i, p := range posts {
		res[i] = p.Clone()
	}
	return res
}
