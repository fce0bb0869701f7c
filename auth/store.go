package auth

import (
	"context"
	"log"
	"strings"
	"sync"

	shared "uniforum/shared"
	"uniforum/types"
)

// Remote is the slice of the api client the session store needs.
type Remote interface {
	SignIn(ctx context.Context, req shared.SignInRequest) (*shared.SignInResponse, *shared.ApiError)
	SignUp(ctx context.Context, req shared.SignUpRequest) (*shared.MessageResponse, *shared.ApiError)
	VerifyEmail(ctx context.Context, uidb64, token string) (*shared.MessageResponse, *shared.ApiError)
	RequestPasswordReset(ctx context.Context, req shared.ResetPasswordRequest) (*shared.MessageResponse, *shared.ApiError)
	ConfirmPasswordReset(ctx context.Context, uidb64, token string, req shared.ConfirmResetPasswordRequest) (*shared.MessageResponse, *shared.ApiError)
	SignOut(ctx context.Context, refresh string) *shared.ApiError
	GetCurrentUser(ctx context.Context) (*shared.User, *shared.ApiError)
	UpdateProfile(ctx context.Context, req shared.ProfileUpdate) (*shared.User, *shared.ApiError)
	GetSettings(ctx context.Context) (shared.Settings, *shared.ApiError)
}

// Store owns the authenticated session. At most one user is signed in at a
// time; Current returns nil otherwise.
type Store struct {
	client Remote
	tokens types.TokenStore

	mu        sync.Mutex
	session   *shared.User
	loading   bool
	err       *shared.ApiError
	listeners []func()
	onSignIn  []func(user *shared.User)
}

func NewStore(client Remote, tokens types.TokenStore) *Store {
	return &Store{client: client, tokens: tokens}
}

func (s *Store) Current() *shared.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Clone()
}

func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store) Err() *shared.ApiError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = nil
}

// OnSignOut registers fn to run whenever a session ends, by sign-out or by a
// failed restore, once tokens and the session are gone.
func (s *Store) OnSignOut(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// OnSignIn registers fn to run each time a session starts, by sign-in or by
// a successful restore.
func (s *Store) OnSignIn(fn func(user *shared.User)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSignIn = append(s.onSignIn, fn)
}

func (s *Store) startSession(user *shared.User) {
	s.mu.Lock()
	s.session = user
	listeners := make([]func(*shared.User), len(s.onSignIn))
	copy(listeners, s.onSignIn)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(user.Clone())
	}
}

// SetSettings mirrors the settings cache into the session.
func (s *Store) SetSettings(settings shared.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return
	}
	s.session.Settings = settings.Clone()
}

func (s *Store) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
	s.err = nil
}

func (s *Store) finish(apiErr *shared.ApiError) *shared.ApiError {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.err = apiErr
	return apiErr
}

func (s *Store) SignIn(ctx context.Context, identifier, secret string) *shared.ApiError {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || secret == "" {
		return s.finish(shared.NewValidationError("username and password are required"))
	}

	s.begin()

	res, apiErr := s.client.SignIn(ctx, shared.SignInRequest{Username: identifier, Password: secret})
	if apiErr != nil {
		return s.finish(apiErr)
	}

	if res.Success != nil && !*res.Success {
		msg := res.Message
		if msg == "" {
			msg = "invalid username or password"
		}
		return s.finish(shared.NewValidationError("%s", msg))
	}

	if res.Access == "" {
		return s.finish(&shared.ApiError{Type: shared.ApiErrorTypeProtocol, Msg: "server did not return an access token"})
	}

	err := s.tokens.SetTokens(res.Access, res.Refresh)
	if err != nil {
		return s.finish(&shared.ApiError{Type: shared.ApiErrorTypeOther, Msg: err.Error()})
	}

	user := s.resolveUser(ctx, res)
	if user == nil {
		if err := s.tokens.ClearTokens(); err != nil {
			log.Printf("Error clearing tokens: %v\n", err)
		}
		return s.finish(&shared.ApiError{Type: shared.ApiErrorTypeProtocol, Msg: "could not determine the signed in user"})
	}
	if user.Username == "" {
		user.Username = identifier
	}

	s.withRemoteSettings(ctx, user)
	s.startSession(user)

	return s.finish(nil)
}

// resolveUser prefers the server profile, then the login response's user,
// then the token claims.
func (s *Store) resolveUser(ctx context.Context, res *shared.SignInResponse) *shared.User {
	user, apiErr := s.client.GetCurrentUser(ctx)
	if apiErr == nil && user != nil && user.Id != "" {
		return user
	}
	if apiErr != nil {
		log.Printf("Error fetching current user after sign in: %v\n", apiErr)
	}

	if res.User != nil && res.User.Id != "" {
		return res.User.Clone()
	}

	user, err := userFromToken(res.Access)
	if err != nil {
		log.Printf("Error reading user from token: %v\n", err)
		return nil
	}
	return user
}

func (s *Store) withRemoteSettings(ctx context.Context, user *shared.User) {
	remote, apiErr := s.client.GetSettings(ctx)
	if apiErr != nil {
		log.Printf("Error fetching settings, using defaults: %v\n", apiErr)
		user.Settings = shared.MergeSettings(user.Settings)
		return
	}
	user.Settings = shared.MergeSettings(user.Settings, remote)
}

func (s *Store) SignUp(ctx context.Context, req shared.SignUpRequest) (string, *shared.ApiError) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return "", s.finish(shared.NewValidationError("a valid email is required"))
	}
	if req.Password == "" {
		return "", s.finish(shared.NewValidationError("password is required"))
	}
	if req.Pass2 == "" {
		req.Pass2 = req.Password
	}
	if req.Pass2 != req.Password {
		return "", s.finish(shared.NewValidationError("passwords do not match"))
	}
	if strings.TrimSpace(req.Username) == "" {
		req.Username = strings.SplitN(req.Email, "@", 2)[0]
	}
	if req.Role == "" {
		req.Role = "student"
	}

	s.begin()

	res, apiErr := s.client.SignUp(ctx, req)
	if apiErr != nil {
		return "", s.finish(apiErr)
	}
	if res.Success != nil && !*res.Success {
		msg := res.Text()
		if msg == "" {
			msg = "registration failed"
		}
		return "", s.finish(shared.NewValidationError("%s", msg))
	}

	s.finish(nil)

	msg := res.Text()
	if msg == "" {
		msg = "Account created. Check your email to verify your account."
	}
	return msg, nil
}

func (s *Store) VerifyEmail(ctx context.Context, uidb64, token string) (string, *shared.ApiError) {
	if uidb64 == "" || token == "" {
		return "", s.finish(shared.NewValidationError("activation link is incomplete"))
	}

	s.begin()

	res, apiErr := s.client.VerifyEmail(ctx, uidb64, token)
	if apiErr != nil {
		return "", s.finish(apiErr)
	}
	if !res.Succeeded() {
		msg := res.Text()
		if msg == "" {
			msg = "activation link is invalid or has expired"
		}
		return "", s.finish(shared.NewValidationError("%s", msg))
	}

	s.finish(nil)
	return "Email verified. You can now sign in.", nil
}

func (s *Store) RequestPasswordReset(ctx context.Context, email string) (string, *shared.ApiError) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", s.finish(shared.NewValidationError("email is required"))
	}

	s.begin()

	res, apiErr := s.client.RequestPasswordReset(ctx, shared.ResetPasswordRequest{Email: email})
	if apiErr != nil {
		return "", s.finish(apiErr)
	}
	if res.Success != nil && !*res.Success {
		return "", s.finish(shared.NewValidationError("%s", res.Text()))
	}

	s.finish(nil)

	msg := res.Text()
	if msg == "" {
		msg = "If an account exists for that email, a reset link is on its way."
	}
	return msg, nil
}

func (s *Store) ResetPassword(ctx context.Context, uidb64, token, password, pass2 string) (string, *shared.ApiError) {
	if uidb64 == "" || token == "" {
		return "", s.finish(shared.NewValidationError("reset link is incomplete"))
	}
	if password == "" {
		return "", s.finish(shared.NewValidationError("password is required"))
	}
	if pass2 == "" {
		pass2 = password
	}
	if pass2 != password {
		return "", s.finish(shared.NewValidationError("passwords do not match"))
	}

	s.begin()

	res, apiErr := s.client.ConfirmPasswordReset(ctx, uidb64, token, shared.ConfirmResetPasswordRequest{Password: password, Pass2: pass2})
	if apiErr != nil {
		return "", s.finish(apiErr)
	}
	if res.Success != nil && !*res.Success {
		return "", s.finish(shared.NewValidationError("%s", res.Text()))
	}

	s.finish(nil)

	msg := res.Text()
	if msg == "" {
		msg = "Password updated. You can now sign in."
	}
	return msg, nil
}

// SignOut tells the server on a best-effort basis, then always drops the
// local tokens and session and notifies listeners.
func (s *Store) SignOut(ctx context.Context) {
	access, refresh := s.tokens.Tokens()
	if access != "" || refresh != "" {
		apiErr := s.client.SignOut(ctx, refresh)
		if apiErr != nil {
			log.Printf("Error signing out on server, clearing local session anyway: %v\n", apiErr)
		}
	}

	s.endSession(nil)
}

// endSession drops the tokens and the session, records apiErr as the
// store's error, then runs the sign-out listeners so nothing cached for the
// old session outlives it.
func (s *Store) endSession(apiErr *shared.ApiError) {
	err := s.tokens.ClearTokens()
	if err != nil {
		log.Printf("Error clearing tokens: %v\n", err)
	}

	s.mu.Lock()
	s.session = nil
	s.err = apiErr
	s.loading = false
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// UpdateUser merges the update into the session right away. A failed save
// keeps the merge and reports the error.
func (s *Store) UpdateUser(ctx context.Context, update shared.ProfileUpdate) *shared.ApiError {
	apiErr := shared.ValidateProfileUpdate(update)
	if apiErr != nil {
		return s.finish(apiErr)
	}

	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return s.finish(&shared.ApiError{Type: shared.ApiErrorTypeInvalidToken, Msg: "not signed in"})
	}
	next := s.session.Clone()
	update.ApplyTo(next)
	s.session = next
	s.loading = true
	s.err = nil
	s.mu.Unlock()

	user, apiErr := s.client.UpdateProfile(ctx, update)
	if apiErr != nil {
		log.Printf("Error saving profile, keeping local changes: %v\n", apiErr)
		return s.finish(apiErr)
	}

	if user != nil && user.Id != "" {
		s.mu.Lock()
		if s.session != nil && s.session.Id == user.Id {
			settings := s.session.Settings
			merged := user.Clone()
			merged.Settings = settings
			s.session = merged
		}
		s.mu.Unlock()
	}

	return s.finish(nil)
}

// Rehydrate restores the session from persisted tokens. Any failure ends
// the session the same way SignOut does.
func (s *Store) Rehydrate(ctx context.Context) *shared.ApiError {
	access, _ := s.tokens.Tokens()
	if access == "" {
		s.mu.Lock()
		s.session = nil
		s.mu.Unlock()
		return nil
	}

	s.begin()

	user, apiErr := s.client.GetCurrentUser(ctx)
	if apiErr == nil && (user == nil || user.Id == "") {
		apiErr = &shared.ApiError{Type: shared.ApiErrorTypeProtocol, Msg: "server returned an empty profile"}
	}
	if apiErr != nil {
		log.Printf("Error restoring session, signing out: %v\n", apiErr)
		s.endSession(apiErr)
		return apiErr
	}

	s.withRemoteSettings(ctx, user)
	s.startSession(user)

	return s.finish(nil)
}
