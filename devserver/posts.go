package devserver

import (
	"net/http"
	"sort"
	"strings"

	shared "uniforum/shared"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// viewLocked projects a stored post for userId: per-user flags, comment
// count and a deep copy the handler can encode outside the lock.
func (s *Server) viewLocked(p *shared.Post, userId string) *shared.Post {
	v := p.Clone()
	v.Liked = s.likes[p.Id][userId]
	v.Saved = s.saves[p.Id][userId]
	v.Likes = len(s.likes[p.Id]) + p.Likes
	if v.Comments == nil {
		v.Comments = []*shared.Comment{}
	}
	v.CommentCount = len(v.Comments)
	return v
}

func (s *Server) findPostLocked(id string) (int, *shared.Post) {
	for i, p := range s.posts {
		if p.Id == id {
			return i, p
		}
	}
	return -1, nil
}

func (s *Server) subforumLocked(id string) *shared.SubForum {
	for _, sf := range s.subforums {
		if sf.Id == id {
			return sf
		}
	}
	return nil
}

func (s *Server) topicLocked(id string) *shared.Topic {
	for _, t := range s.topics {
		if t.Id == id {
			return t
		}
	}
	return nil
}

func (s *Server) listPostsHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	s.mu.Lock()
	posts := make([]*shared.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if p.SubforumId != "" {
			if sf := s.subforumLocked(p.SubforumId); sf != nil && !sf.CanAccess(acct.user.Role) {
				continue
			}
		}
		posts = append(posts, s.viewLocked(p, acct.user.Id))
	}
	s.mu.Unlock()

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})

	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) createPostHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	var draft shared.PostDraft
	if !decodeBody(w, r, &draft) {
		return
	}

	if apiErr := shared.ValidatePostDraft(draft); apiErr != nil {
		writeValidationError(w, "non_field_errors", apiErr)
		return
	}
	if draft.ContentType == "" {
		draft.ContentType = shared.ContentTypeDiscussion
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if draft.SubforumId != "" {
		sf := s.subforumLocked(draft.SubforumId)
		if sf == nil {
			writeError(w, http.StatusNotFound, "sub-forum not found")
			return
		}
		if !sf.CanPost(acct.user.Role) {
			writeError(w, http.StatusForbidden, "you cannot post in "+sf.Name)
			return
		}
	}

	topicName := draft.TopicName
	if t := s.topicLocked(draft.TopicId); t != nil {
		topicName = t.Name
	}

	post := &shared.Post{
		Id:          "p_" + uuid.NewString(),
		Author:      acct.user.AsAuthor(),
		Title:       strings.TrimSpace(draft.Title),
		Body:        draft.Body,
		ContentType: draft.ContentType,
		TopicId:     draft.TopicId,
		TopicName:   topicName,
		SubforumId:  draft.SubforumId,
		EventDate:   draft.EventDate,
		EventTime:   draft.EventTime,
		EventPlace:  draft.EventPlace,
		CreatedAt:   s.now(),
		Comments:    []*shared.Comment{},
	}
	s.posts = append([]*shared.Post{post}, s.posts...)

	writeJSON(w, http.StatusCreated, s.viewLocked(post, acct.user.Id))
}

func (s *Server) updatePostHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	postId := mux.Vars(r)["postId"]

	var patch shared.PostPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	if apiErr := shared.ValidatePostPatch(patch); apiErr != nil {
		writeValidationError(w, "non_field_errors", apiErr)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, post := s.findPostLocked(postId)
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	if post.AuthorId() != acct.user.Id {
		writeError(w, http.StatusForbidden, "only the author can edit this post")
		return
	}

	patch.ApplyTo(post)

	writeJSON(w, http.StatusOK, s.viewLocked(post, acct.user.Id))
}

func (s *Server) deletePostHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	postId := mux.Vars(r)["postId"]

	s.mu.Lock()
	defer s.mu.Unlock()

	i, post := s.findPostLocked(postId)
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	if post.AuthorId() != acct.user.Id && acct.user.Role != shared.RoleAdmin {
		writeError(w, http.StatusForbidden, "only the author can delete this post")
		return
	}

	s.posts = append(s.posts[:i], s.posts[i+1:]...)
	delete(s.likes, postId)
	delete(s.saves, postId)

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleLikeHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	postId := mux.Vars(r)["postId"]

	s.mu.Lock()
	defer s.mu.Unlock()

	_, post := s.findPostLocked(postId)
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	liked := !s.likes[postId][acct.user.Id]
	setFlag(s.likes, postId, acct.user.Id, liked)
	if liked && post.AuthorId() != acct.user.Id {
		s.notifyLocked(post.AuthorId(), &shared.Notification{
			Type:      shared.NotificationTypeLike,
			ActorName: acct.user.DisplayName(),
			Message:   "liked your post",
			PostId:    postId,
		})
	}

	likes := len(s.likes[postId]) + post.Likes
	writeJSON(w, http.StatusOK, shared.ToggleLikeResponse{Liked: &liked, Likes: &likes})
}

func (s *Server) toggleSaveHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	postId := mux.Vars(r)["postId"]

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, post := s.findPostLocked(postId); post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	saved := !s.saves[postId][acct.user.Id]
	setFlag(s.saves, postId, acct.user.Id, saved)

	writeJSON(w, http.StatusOK, shared.ToggleSaveResponse{Saved: &saved})
}

func (s *Server) addCommentHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	postId := mux.Vars(r)["postId"]

	var req shared.AddCommentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if apiErr := shared.ValidateComment(req.Text); apiErr != nil {
		writeValidationError(w, "text", apiErr)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, post := s.findPostLocked(postId)
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	comment := &shared.Comment{
		Id:        "c_" + uuid.NewString(),
		Author:    acct.user.AsAuthor(),
		Text:      strings.TrimSpace(req.Text),
		CreatedAt: s.now(),
	}
	post.Comments = append(post.Comments, comment)

	if post.AuthorId() != acct.user.Id {
		s.notifyLocked(post.AuthorId(), &shared.Notification{
			Type:      shared.NotificationTypeComment,
			ActorName: acct.user.DisplayName(),
			Message:   "commented on your post",
			PostId:    postId,
		})
	}

	writeJSON(w, http.StatusCreated, comment.Clone())
}

func (s *Server) deleteCommentHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	vars := mux.Vars(r)
	postId := vars["postId"]
	commentId := vars["commentId"]

	s.mu.Lock()
	defer s.mu.Unlock()

	_, post := s.findPostLocked(postId)
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	for i, c := range post.Comments {
		if c.Id != commentId {
			continue
		}
		isCommentAuthor := c.Author != nil && c.Author.Id == acct.user.Id
		if !isCommentAuthor && post.AuthorId() != acct.user.Id && acct.user.Role != shared.RoleAdmin {
			writeError(w, http.StatusForbidden, "you cannot delete this comment")
			return
		}
		post.Comments = append(post.Comments[:i], post.Comments[i+1:]...)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeError(w, http.StatusNotFound, "comment not found")
}
