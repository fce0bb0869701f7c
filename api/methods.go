package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	shared "uniforum/shared"
)

func (a *Api) SignIn(ctx context.Context, req shared.SignInRequest) (*shared.SignInResponse, *shared.ApiError) {
	var res shared.SignInResponse
	apiErr := a.call(ctx, callOpts{method: http.MethodPost, path: "/login", body: req, out: &res})
	if apiErr != nil {
		return nil, apiErr
	}
	return &res, nil
}

func (a *Api) SignUp(ctx context.Context, req shared.SignUpRequest) (*shared.MessageResponse, *shared.ApiError) {
	var res shared.MessageResponse
	apiErr := a.call(ctx, callOpts{method: http.MethodPost, path: "/register", body: req, out: &res})
	if apiErr != nil {
		return nil, apiErr
	}
	return &res, nil
}

func (a *Api) VerifyEmail(ctx context.Context, uidb64, token string) (*shared.MessageResponse, *shared.ApiError) {
	path := fmt.Sprintf("/activate/%s/%s", url.PathEscape(uidb64), url.PathEscape(token))

	var res shared.MessageResponse
	apiErr := a.call(ctx, callOpts{method: http.MethodGet, path: path, out: &res})
	if apiErr != nil {
		return nil, apiErr
	}
	return &res, nil
}

func (a *Api) RequestPasswordReset(ctx context.Context, req shared.ResetPasswordRequest) (*shared.MessageResponse, *shared.ApiError) {
	var res shared.MessageResponse
	apiErr := a.call(ctx, callOpts{method: http.MethodPost, path: "/reset", body: req, out: &res})
	if apiErr != nil {
		return nil, apiErr
	}
	return &res, nil
}

func (a *Api) ConfirmPasswordReset(ctx context.Context, uidb64, token string, req shared.ConfirmResetPasswordRequest) (*shared.MessageResponse, *shared.ApiError) {
	path := fmt.Sprintf("/reset/%s/%s", url.PathEscape(uidb64), url.PathEscape(token))

	var res shared.MessageResponse
	apiErr := a.call(ctx, callOpts{method: http.MethodPost, path: path, body: req, out: &res})
	if apiErr != nil {
		return nil, apiErr
	}
	return &res, nil
}

func (a *Api) SignOut(ctx context.Context, refresh string) *shared.ApiError {
	return a.call(ctx, callOpts{
		method:        http.MethodPost,
		path:          "/logout",
		body:          shared.SignOutRequest{Refresh: refresh},
		authenticated: true,
	})
}

// profile responses come back either bare or wrapped as {"user": {...}}
type userEnvelope struct {
	User *shared.User `json:"user"`
}

func decodeUser(raw json.RawMessage) (*shared.User, *shared.ApiError) {
	var env userEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.User != nil {
		return env.User, nil
	}

	var user shared.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, &shared.ApiError{Type: shared.ApiErrorTypeProtocol, Msg: "server returned an invalid user", Details: string(raw)}
	}
	return &user, nil
}

func (a *Api) GetCurrentUser(ctx context.Context) (*shared.User, *shared.ApiError) {
	var raw json.RawMessage
	apiErr := a.call(ctx, callOpts{method: http.MethodGet, path: "/profile", out: &raw, authenticated: true})
	if apiErr != nil {
		return nil, apiErr
	}
	if len(raw) == 0 {
		return nil, &shared.ApiError{Type: shared.ApiErrorTypeProtocol, Msg: "server returned an empty profile"}
	}
	return decodeUser(raw)
}

func (a *Api) UpdateProfile(ctx context.Context, req shared.ProfileUpdate) (*shared.User, *shared.ApiError) {
	var raw json.RawMessage
	apiErr := a.call(ctx, callOpts{method: http.MethodPatch, path: "/profile", body: req, out: &raw, authenticated: true})
	if apiErr != nil {
		return nil, apiErr
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return decodeUser(raw)
}

func (a *Api) ListPosts(ctx context.Context) ([]*shared.Post, *shared.ApiError) {
	var posts []*shared.Post
	apiErr := a.call(ctx, callOpts{method: http.MethodGet, path: "/posts", out: &posts, authenticated: true})
	if apiErr != nil {
		return nil, apiErr
	}
	return posts, nil
}

func (a *Api) CreatePost(ctx context.Context, draft shared.PostDraft) (*shared.Post, *shared.ApiError) {
	var post shared.Post
	apiErr := a.call(ctx, callOpts{method: http.MethodPost, path: "/posts", body: draft, out: &post, authenticated: true})
	if apiErr != nil {
		return nil, apiErr
	}
	if post.Id == "" {
		return nil, &shared.ApiError{Type: shared.ApiErrorTypeProtocol, Msg: "server returned a post without an id"}
	}
	return &post, nil
}

func (a *Api) UpdatePost(ctx context.Context, id string, patch shared.PostPatch) (*shared.Post, *shared.ApiError) {
	var post shared.Post
	apiErr := a.call(ctx, callOpts{
		method:        http.MethodPatch,
		path:          "/posts/" + url.PathEscape(id),
		body:          patch,
		out:           &post,
		authenticated: true,
	})
	if apiErr != nil {
		return nil, apiErr
	}
	if post.Id == "" {
		// no body: the caller keeps its optimistic copy
		return nil, nil
	}
	return &post, nil
}

func (a *Api) DeletePost(ctx context.Context, id string) *shared.ApiError {
	return a.call(ctx, callOpts{method: http.MethodDelete, path: "/posts/" + url.PathEscape(id), authenticated: true})
}

func (a *Api) ToggleLike(ctx context.Context, id string) (*shared.ToggleLikeResponse, *shared.ApiError) {
	var res shared.ToggleLikeResponse
	apiErr := a.call(ctx, callOpts{
		method:        http.MethodPost,
		path:          fmt.Sprintf("/posts/%s/like", url.PathEscape(id)),
		out:           &res,
		authenticated: true,
	})
	if apiErr != nil {
		return nil, apiErr
	}
	return &res, nil
}

func (a *Api) ToggleSave(ctx context.Context, id string) (*shared.ToggleSaveResponse, *shared.ApiError) {
	var res shared.ToggleSaveResponse
	apiErr := a.call(ctx, callOpts{
		method:        http.MethodPost,
		path:          fmt.Sprintf("/posts/%s/save", url.PathEscape(id)),
		out:           &res,
		authenticated: true,
	})
	if apiErr != nil {
		return nil, apiErr
	}
	return &res, nil
}

func (a *Api) AddComment(ctx context.Context, postId, text string) (*shared.Comment, *shared.ApiError) {
	var comment shared.Comment
	apiErr := a.call(ctx, callOpts{
		method:        http.MethodPost,
		path:          fmt.Sprintf("/posts/%s/comments", url.PathEscape(postId)),
		body:          shared.AddCommentRequest{Text: text},
		out:           &comment,
		authenticated: true,
	})
	if apiErr != nil {
		return nil, apiErr
	}
	if comment.Id == "" {
		return nil, &shared.ApiError{Type: shared.ApiErrorTypeProtocol, Msg: "server returned a comment without an id"}
	}
	return &comment, nil
}

func (a *Api) DeleteComment(ctx context.Context, postId, commentId string) *shared.ApiError {
	return a.call(ctx, callOpts{
		method:        http.MethodDelete,
		path:          fmt.Sprintf("/posts/%s/comments/%s", url.PathEscape(postId), url.PathEscape(commentId)),
		authenticated: true,
	})
}

// decodeSettings accepts {"settings": {...}}, {"user": {...}} or a bare
// map, keeping only boolean values.
func decodeSettings(raw json.RawMessage) shared.Settings {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return shared.Settings{}
	}

	for _, wrapper := range []string{"settings", "user"} {
		if inner, ok := obj[wrapper]; ok {
			var innerObj map[string]json.RawMessage
			if err := json.Unmarshal(inner, &innerObj); err == nil {
				obj = innerObj
				break
			}
		}
	}

	settings := shared.Settings{}
	for k, v := range obj {
		var b bool
		if err := json.Unmarshal(v, &b); err == nil {
			settings[k] = b
		}
	}
	return settings
}

func (a *Api) GetSettings(ctx context.Context) (shared.Settings, *shared.ApiError) {
	var raw json.RawMessage
	apiErr := a.call(ctx, callOpts{method: http.MethodGet, path: "/settings", out: &raw, authenticated: true})
	if apiErr != nil {
		return nil, apiErr
	}
	return decodeSettings(raw), nil
}

func (a *Api) UpdateSettings(ctx context.Context, settings shared.Settings) (shared.Settings, *shared.ApiError) {
	var raw json.RawMessage
	apiErr := a.call(ctx, callOpts{method: http.MethodPatch, path: "/settings", body: settings, out: &raw, authenticated: true})
	if apiErr != nil {
		return nil, apiErr
	}
	if len(raw) == 0 {
		return settings.Clone(), nil
	}
	return decodeSettings(raw), nil
}

func (a *Api) ListTopics(ctx context.Context) ([]*shared.Topic, *shared.ApiError) {
	var topics []*shared.Topic
	apiErr := a.call(ctx, callOpts{method: http.MethodGet, path: "/topics", out: &topics, authenticated: true})
	if apiErr != nil {
		return nil, apiErr
	}
	return topics, nil
}

func (a *Api) FollowTopic(ctx context.Context, id string) (*shared.FollowResponse, *shared.ApiError) {
	return a.follow(ctx, http.MethodPost, id)
}

func (a *Api) UnfollowTopic(ctx context.Context, id string) (*shared.FollowResponse, *shared.ApiError) {
	return a.follow(ctx, http.MethodDelete, id)
}

func (a *Api) follow(ctx context.Context, method, id string) (*shared.FollowResponse, *shared.ApiError) {
	var res shared.FollowResponse
	apiErr := a.call(ctx, callOpts{
		method:        method,
		path:          fmt.Sprintf("/topics/%s/follow", url.PathEscape(id)),
		out:           &res,
		authenticated: true,
	})
	if apiErr != nil {
		return nil, apiErr
	}
	return &res, nil
}

func (a *Api) ListSubforums(ctx context.Context) ([]*shared.SubForum, *shared.ApiError) {
	var subforums []*shared.SubForum
	apiErr := a.call(ctx, callOpts{method: http.MethodGet, path: "/subforums", out: &subforums, authenticated: true})
	if apiErr != nil {
		return nil, apiErr
	}
	return subforums, nil
}

func (a *Api) CreateSubforum(ctx context.Context, draft shared.SubforumDraft) (*shared.SubForum, *shared.ApiError) {
	var subforum shared.SubForum
	apiErr := a.call(ctx, callOpts{method: http.MethodPost, path: "/subforums", body: draft, out: &subforum, authenticated: true})
	if apiErr != nil {
		return nil, apiErr
	}
	if subforum.Id == "" {
		return nil, &shared.ApiError{Type: shared.ApiErrorTypeProtocol, Msg: "server returned a sub-forum without an id"}
	}
	return &subforum, nil
}

func (a *Api) Subscribe(ctx context.Context, id string) (*shared.SubscribeResponse, *shared.ApiError) {
	return a.subscribe(ctx, http.MethodPost, id)
}

func (a *Api) Unsubscribe(ctx context.Context, id string) (*shared.SubscribeResponse, *shared.ApiError) {
	return a.subscribe(ctx, http.MethodDelete, id)
}

func (a *Api) subscribe(ctx context.Context, method, id string) (*shared.SubscribeResponse, *shared.ApiError) {
	var res shared.SubscribeResponse
	apiErr := a.call(ctx, callOpts{
		method:        method,
		path:          fmt.Sprintf("/subforums/%s/subscribe", url.PathEscape(id)),
		out:           &res,
		authenticated: true,
	})
	if apiErr != nil {
		return nil, apiErr
	}
	return &res, nil
}

func (a *Api) Search(ctx context.Context, query string) (*shared.SearchResults, *shared.ApiError) {
	var res shared.SearchResults
	apiErr := a.call(ctx, callOpts{
		method:        http.MethodPost,
		path:          "/search",
		body:          shared.SearchRequest{SearchText: query},
		out:           &res,
		authenticated: true,
	})
	if apiErr != nil {
		return nil, apiErr
	}
	return &res, nil
}

func (a *Api) ListNotifications(ctx context.Context) ([]*shared.Notification, *shared.ApiError) {
	var notifications []*shared.Notification
	apiErr := a.call(ctx, callOpts{method: http.MethodGet, path: "/notifications", out: &notifications, authenticated: true})
	if apiErr != nil {
		return nil, apiErr
	}
	return notifications, nil
}

func (a *Api) MarkNotificationRead(ctx context.Context, id string) *shared.ApiError {
	return a.call(ctx, callOpts{
		method:        http.MethodPost,
		path:          fmt.Sprintf("/notifications/%s/read", url.PathEscape(id)),
		authenticated: true,
	})
}

func (a *Api) MarkAllNotificationsRead(ctx context.Context) *shared.ApiError {
	return a.call(ctx, callOpts{method: http.MethodPost, path: "/notifications/read-all", authenticated: true})
}

func (a *Api) ReportContent(ctx context.Context, req shared.ReportRequest) (*shared.ReportResponse, *shared.ApiError) {
	var res shared.ReportResponse
	apiErr := a.call(ctx, callOpts{method: http.MethodPost, path: "/reports", body: req, out: &res, authenticated: true})
	if apiErr != nil {
		return nil, apiErr
	}
	return &res, nil
}
