package devserver

import (
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	shared "uniforum/shared"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type authHandler func(w http.ResponseWriter, r *http.Request, acct *account)

func (s *Server) authenticated(h authHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}

		userId, err := s.parseToken(strings.TrimPrefix(authHeader, "Bearer "), tokenTypeAccess)
		if err != nil {
			log.Printf("Rejected access token: %v\n", err)
			writeError(w, http.StatusUnauthorized, "Given token not valid for any token type")
			return
		}

		s.mu.Lock()
		acct := s.accounts[userId]
		s.mu.Unlock()

		if acct == nil || !acct.active {
			writeError(w, http.StatusUnauthorized, "User not found")
			return
		}

		h(w, r, acct)
	}
}

func (s *Server) signInHandler(w http.ResponseWriter, r *http.Request) {
	var req shared.SignInRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	userId, ok := s.byUsername[req.Username]
	if !ok {
		userId = s.byEmail[strings.ToLower(req.Username)]
	}
	acct := s.accounts[userId]
	s.mu.Unlock()

	if acct == nil || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(req.Password)) != nil || !acct.active {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	access, refresh, err := s.issuePair(acct.user)
	if err != nil {
		log.Printf("Error issuing tokens: %v\n", err)
		writeError(w, http.StatusInternalServerError, "Error issuing tokens")
		return
	}

	// like the production backend, the body carries no user object
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "success",
		"access":  access,
		"refresh": refresh,
	})
}

func (s *Server) signUpHandler(w http.ResponseWriter, r *http.Request) {
	var req shared.SignUpRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Username == "" {
		writeValidationError(w, "username", shared.NewValidationError("This field may not be blank."))
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeValidationError(w, "email", shared.NewValidationError("Enter a valid email address."))
		return
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		writeValidationError(w, "password", shared.NewValidationError("password must be at least %d characters", minPasswordLength))
		return
	}
	if req.Password != req.Pass2 {
		writeValidationError(w, "password", shared.NewValidationError("password fields do not match"))
		return
	}
	role := shared.ParseRole(req.Role)
	if role == "" || role == shared.RoleAdmin {
		writeValidationError(w, "role", shared.NewValidationError("%q is not a valid choice.", req.Role))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		log.Printf("Error hashing password: %v\n", err)
		writeError(w, http.StatusInternalServerError, "Error creating account")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[req.Username]; taken {
		writeValidationError(w, "username", shared.NewValidationError("A user with that username already exists."))
		return
	}
	if _, taken := s.byEmail[req.Email]; taken {
		writeValidationError(w, "email", shared.NewValidationError("A user with that email already exists."))
		return
	}

	name := req.Name
	if name == "" {
		name = req.Username
	}

	acct := &account{
		user: &shared.User{
			Id:             "u_" + uuid.NewString(),
			Username:       req.Username,
			Name:           name,
			Email:          req.Email,
			Role:           role,
			Major:          req.Major,
			Classification: req.Classification,
			Department:     req.Department,
		},
		passwordHash:    hash,
		activationToken: uuid.NewString(),
	}
	s.addAccount(acct)

	log.Printf("Activation link for %s: /activate/%s/%s\n", req.Email, encodeUid(acct.user.Id), acct.activationToken)

	writeJSON(w, http.StatusOK, shared.MessageResponse{Message: "Check your email to activate your account."})
}

func (s *Server) activateHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.accounts[decodeUid(vars["uidb64"])]
	if acct == nil || acct.activationToken == "" || acct.activationToken != vars["token"] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"Error": "Account not activated"})
		return
	}

	acct.active = true
	acct.activationToken = ""
	acct.user.EmailVerified = true

	writeJSON(w, http.StatusOK, shared.MessageResponse{Message: "success"})
}

func (s *Server) requestResetHandler(w http.ResponseWriter, r *http.Request) {
	var req shared.ResetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	acct := s.accounts[s.byEmail[strings.ToLower(strings.TrimSpace(req.Email))]]
	if acct != nil {
		acct.resetToken = uuid.NewString()
		log.Printf("Password reset link for %s: /reset/%s/%s\n", acct.user.Email, encodeUid(acct.user.Id), acct.resetToken)
	}
	s.mu.Unlock()

	// same answer whether or not the address is known
	writeJSON(w, http.StatusOK, shared.MessageResponse{Message: "If that address has an account, a reset link is on its way."})
}

func (s *Server) confirmResetHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req shared.ConfirmResetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		writeValidationError(w, "password", shared.NewValidationError("password must be at least %d characters", minPasswordLength))
		return
	}
	if req.Password != req.Pass2 {
		writeValidationError(w, "password", shared.NewValidationError("password fields do not match"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		log.Printf("Error hashing password: %v\n", err)
		writeError(w, http.StatusInternalServerError, "Error resetting password")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.accounts[decodeUid(vars["uidb64"])]
	if acct == nil || acct.resetToken == "" || acct.resetToken != vars["token"] {
		writeError(w, http.StatusBadRequest, "This reset link is invalid or has expired.")
		return
	}

	acct.passwordHash = hash
	acct.resetToken = ""

	writeJSON(w, http.StatusOK, shared.MessageResponse{Message: "Password changed"})
}

func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	var req shared.RefreshTokenRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	revoked := s.revoked[req.Refresh]
	s.mu.Unlock()

	userId, err := s.parseToken(req.Refresh, tokenTypeRefresh)
	if err != nil || revoked {
		writeError(w, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}

	s.mu.Lock()
	acct := s.accounts[userId]
	if acct != nil {
		// rotate
		s.revoked[req.Refresh] = true
	}
	s.mu.Unlock()

	if acct == nil {
		writeError(w, http.StatusUnauthorized, "User not found")
		return
	}

	access, refresh, err := s.issuePair(acct.user)
	if err != nil {
		log.Printf("Error issuing tokens: %v\n", err)
		writeError(w, http.StatusInternalServerError, "Error issuing tokens")
		return
	}

	writeJSON(w, http.StatusOK, shared.RefreshTokenResponse{Access: access, Refresh: refresh})
}

func (s *Server) signOutHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	var req shared.SignOutRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Refresh != "" {
		s.mu.Lock()
		s.revoked[req.Refresh] = true
		s.mu.Unlock()
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getProfileHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	s.mu.Lock()
	user := acct.user.Clone()
	user.Settings = shared.MergeSettings(acct.settings)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]*shared.User{"user": user})
}

func (s *Server) updateProfileHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	var req shared.ProfileUpdate
	if !decodeBody(w, r, &req) {
		return
	}

	if apiErr := shared.ValidateProfileUpdate(req); apiErr != nil {
		writeError(w, http.StatusBadRequest, apiErr.Msg)
		return
	}

	s.mu.Lock()
	req.ApplyTo(acct.user)
	user := acct.user.Clone()
	s.renameAuthorLocked(user)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]*shared.User{"user": user})
}

// renameAuthorLocked refreshes the denormalized author on every post and
// comment by user.
func (s *Server) renameAuthorLocked(user *shared.User) {
	author := user.AsAuthor()
	for _, p := range s.posts {
		if p.AuthorId() == user.Id {
			a := *author
			p.Author = &a
		}
		for _, c := range p.Comments {
			if c.Author != nil && c.Author.Id == user.Id {
				a := *author
				c.Author = &a
			}
		}
	}
}
