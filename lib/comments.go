package lib

import (
	"context"
	"log"
	"strings"

	shared "uniforum/shared"

	"github.com/google/uuid"
)

// AddComment appends a local comment right away and swaps in the server's
// copy once it arrives. A failed sync keeps the local comment.
func (c *PostCache) AddComment(ctx context.Context, postId, text string) (*shared.Comment, *shared.ApiError) {
	apiErr := shared.ValidateComment(text)
	if apiErr != nil {
		return nil, c.setErr(apiErr)
	}

	user := c.session.Current()
	if user == nil {
		return nil, c.setErr(errSignedOut)
	}

	local := &shared.Comment{
		Id:        LocalCommentPrefix + uuid.New().String(),
		Author:    user.AsAuthor(),
		Text:      strings.TrimSpace(text),
		CreatedAt: c.now(),
	}

	c.mu.Lock()
	i, post := c.findLocked(postId)
	if post == nil {
		c.mu.Unlock()
		return nil, c.setErr(notFound("post", postId))
	}
	next := post.Clone()
	next.Comments = append(next.Comments, local)
	next.CommentCount++
	c.posts[i] = next
	c.persistLocked()
	result := local.Clone()
	c.mu.Unlock()
	c.notify()

	// the server has never seen this post
	if IsLocalPostId(postId) {
		return result, nil
	}

	created, apiErr := c.client.AddComment(ctx, postId, local.Text)
	if apiErr != nil {
		log.Printf("Error adding comment to %s, keeping local copy %s: %v\n", postId, local.Id, apiErr)
		return result, c.setErr(apiErr)
	}

	if created.Author == nil {
		created.Author = local.Author
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = local.CreatedAt
	}

	c.mu.Lock()
	i, post = c.findLocked(postId)
	if post != nil {
		next = post.Clone()
		for j, existing := range next.Comments {
			if existing.Id == local.Id {
				next.Comments[j] = created
				break
			}
		}
		c.posts[i] = next
		c.persistLocked()
	}
	result = created.Clone()
	c.mu.Unlock()

	c.notify()
	return result, nil
}

// DeleteComment removes the comment locally, then on the server. Whether
// the caller may delete it is the server's call; a rejected or failed
// delete puts the comment back where it was.
func (c *PostCache) DeleteComment(ctx context.Context, postId, commentId string) *shared.ApiError {
	c.mu.Lock()
	i, post := c.findLocked(postId)
	if post == nil {
		c.mu.Unlock()
		return c.setErr(notFound("post", postId))
	}

	idx := -1
	for j, existing := range post.Comments {
		if existing.Id == commentId {
			idx = j
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return c.setErr(notFound("comment", commentId))
	}

	removed := post.Comments[idx].Clone()
	next := post.Clone()
	next.Comments = append(next.Comments[:idx], next.Comments[idx+1:]...)
	if next.CommentCount > 0 {
		next.CommentCount--
	}
	c.posts[i] = next
	c.persistLocked()
	c.mu.Unlock()
	c.notify()

	if IsLocalPostId(postId) || IsLocalCommentId(commentId) {
		return nil
	}

	apiErr := c.client.DeleteComment(ctx, postId, commentId)
	if apiErr == nil {
		return nil
	}

	log.Printf("Error deleting comment %s, restoring it: %v\n", commentId, apiErr)

	c.mu.Lock()
	i, post = c.findLocked(postId)
	if post != nil {
		restored := post.Clone()
		present := false
		for _, existing := range restored.Comments {
			if existing.Id == commentId {
				present = true
				break
			}
		}
		if !present {
			at := idx
			if at > len(restored.Comments) {
				at = len(restored.Comments)
			}
			restored.Comments = append(restored.Comments[:at], append([]*shared.Comment{removed}, restored.Comments[at:]...)...)
			restored.CommentCount++
			c.posts[i] = restored
			c.persistLocked()
		}
	}
	c.err = apiErr
	c.mu.Unlock()

	c.notify()
	return apiErr
}
