package types

import (
	"context"

	shared "uniforum/shared"
)

// TokenStore holds the persisted credential pair used to authenticate
// requests.
type TokenStore interface {
	Tokens() (access, refresh string)
	SetTokens(access, refresh string) error
	ClearTokens() error
}

type ApiClient interface {
	SignIn(ctx context.Context, req shared.SignInRequest) (*shared.SignInResponse, *shared.ApiError)
	SignUp(ctx context.Context, req shared.SignUpRequest) (*shared.MessageResponse, *shared.ApiError)
	VerifyEmail(ctx context.Context, uidb64, token string) (*shared.MessageResponse, *shared.ApiError)
	RequestPasswordReset(ctx context.Context, req shared.ResetPasswordRequest) (*shared.MessageResponse, *shared.ApiError)
	ConfirmPasswordReset(ctx context.Context, uidb64, token string, req shared.ConfirmResetPasswordRequest) (*shared.MessageResponse, *shared.ApiError)
	SignOut(ctx context.Context, refresh string) *shared.ApiError
	GetCurrentUser(ctx context.Context) (*shared.User, *shared.ApiError)
	UpdateProfile(ctx context.Context, req shared.ProfileUpdate) (*shared.User, *shared.ApiError)

	ListPosts(ctx context.Context) ([]*shared.Post, *shared.ApiError)
	CreatePost(ctx context.Context, draft shared.PostDraft) (*shared.Post, *shared.ApiError)
	UpdatePost(ctx context.Context, id string, patch shared.PostPatch) (*shared.Post, *shared.ApiError)
	DeletePost(ctx context.Context, id string) *shared.ApiError
	ToggleLike(ctx context.Context, id string) (*shared.ToggleLikeResponse, *shared.ApiError)
	ToggleSave(ctx context.Context, id string) (*shared.ToggleSaveResponse, *shared.ApiError)
	AddComment(ctx context.Context, postId, text string) (*shared.Comment, *shared.ApiError)
	DeleteComment(ctx context.Context, postId, commentId string) *shared.ApiError

	GetSettings(ctx context.Context) (shared.Settings, *shared.ApiError)
	UpdateSettings(ctx context.Context, settings shared.Settings) (shared.Settings, *shared.ApiError)

	ListTopics(ctx context.Context) ([]*shared.Topic, *shared.ApiError)
	FollowTopic(ctx context.Context, id string) (*shared.FollowResponse, *shared.ApiError)
	UnfollowTopic(ctx context.Context, id string) (*shared.FollowResponse, *shared.ApiError)

	ListSubforums(ctx context.Context) ([]*shared.SubForum, *shared.ApiError)
	CreateSubforum(ctx context.Context, draft shared.SubforumDraft) (*shared.SubForum, *shared.ApiError)
	Subscribe(ctx context.Context, id string) (*shared.SubscribeResponse, *shared.ApiError)
	Unsubscribe(ctx context.Context, id string) (*shared.SubscribeResponse, *shared.ApiError)

	Search(ctx context.Context, query string) (*shared.SearchResults, *shared.ApiError)

	ListNotifications(ctx context.Context) ([]*shared.Notification, *shared.ApiError)
	MarkNotificationRead(ctx context.Context, id string) *shared.ApiError
	MarkAllNotificationsRead(ctx context.Context) *shared.ApiError

	ReportContent(ctx context.Context, req shared.ReportRequest) (*shared.ReportResponse, *shared.ApiError)
}
