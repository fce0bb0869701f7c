// Package devserver is an in-memory forum backend speaking the same REST
// surface as the production service. It backs `uniforum dev-server` and the
// end-to-end tests.
package devserver

import (
	"fmt"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"

	shared "uniforum/shared"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

type account struct {
	user         *shared.User
	passwordHash []byte
	active       bool
	settings     shared.Settings

	// pending one-shot tokens keyed by purpose
	activationToken string
	resetToken      string
}

type Server struct {
	mu sync.Mutex

	signingKey []byte
	now        func() time.Time

	accounts   map[string]*account
	byUsername map[string]string
	byEmail    map[string]string

	posts         []*shared.Post
	likes         map[string]map[string]bool
	saves         map[string]map[string]bool
	topics        []*shared.Topic
	follows       map[string]map[string]bool
	subforums     []*shared.SubForum
	subscriptions map[string]map[string]bool
	notifications map[string][]*shared.Notification
	reports       []*report

	revoked map[string]bool
}

type report struct {
	Id         string
	ReporterId string
	Req        shared.ReportRequest
	CreatedAt  time.Time
}

type Options struct {
	// SigningKey signs issued tokens. A random key is used when empty.
	SigningKey []byte
	Now        func() time.Time
	// BcryptCost defaults to bcrypt.MinCost; this server only holds demo
	// accounts.
	BcryptCost int
}

func New(opts Options) (*Server, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.SigningKey) == 0 {
		key, err := randomKey()
		if err != nil {
			return nil, err
		}
		opts.SigningKey = key
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.MinCost
	}

	s := &Server{
		signingKey:    opts.SigningKey,
		now:           opts.Now,
		accounts:      map[string]*account{},
		byUsername:    map[string]string{},
		byEmail:       map[string]string{},
		likes:         map[string]map[string]bool{},
		saves:         map[string]map[string]bool{},
		follows:       map[string]map[string]bool{},
		subscriptions: map[string]map[string]bool{},
		revoked:       map[string]bool{},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing seed password: %v", err)
	}

	authors := map[string]*shared.Author{}
	for _, seed := range seedAccounts() {
		s.addAccount(&account{user: seed.user, passwordHash: hash, active: true})
		authors[seed.user.Id] = seed.user.AsAuthor()
	}

	now := s.now()
	for _, seed := range seedPosts(now, authors) {
		// Likes holds the untracked baseline; tracked likes are added on read
		seed.post.Likes -= len(seed.likedBy)
		s.posts = append(s.posts, seed.post)
		for _, userId := range seed.likedBy {
			setFlag(s.likes, seed.post.Id, userId, true)
		}
		for _, userId := range seed.savedBy {
			setFlag(s.saves, seed.post.Id, userId, true)
		}
	}
	s.topics = seedTopics()
	s.subforums = seedSubforums()
	s.notifications = seedNotifications(now)

	setFlag(s.follows, "t2", "u_wsu_001", true)
	setFlag(s.subscriptions, "cs", "u_wsu_001", true)

	return s, nil
}

func (s *Server) addAccount(acct *account) {
	s.accounts[acct.user.Id] = acct
	s.byUsername[acct.user.Username] = acct.user.Id
	if acct.user.Email != "" {
		s.byEmail[acct.user.Email] = acct.user.Id
	}
}

func setFlag(m map[string]map[string]bool, key, userId string, on bool) {
	if m[key] == nil {
		m[key] = map[string]bool{}
	}
	if on {
		m[key][userId] = true
	} else {
		delete(m[key], userId)
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(logRequests)

	r.HandleFunc("/login", s.signInHandler).Methods("POST")
	r.HandleFunc("/register", s.signUpHandler).Methods("POST")
	r.HandleFunc("/activate/{uidb64}/{token}", s.activateHandler).Methods("GET")
	r.HandleFunc("/reset", s.requestResetHandler).Methods("POST")
	r.HandleFunc("/reset/{uidb64}/{token}", s.confirmResetHandler).Methods("POST")
	r.HandleFunc("/token/refresh", s.refreshHandler).Methods("POST")

	r.HandleFunc("/logout", s.authenticated(s.signOutHandler)).Methods("POST")
	r.HandleFunc("/profile", s.authenticated(s.getProfileHandler)).Methods("GET")
	r.HandleFunc("/profile", s.authenticated(s.updateProfileHandler)).Methods("PATCH")

	r.HandleFunc("/posts", s.authenticated(s.listPostsHandler)).Methods("GET")
	r.HandleFunc("/posts", s.authenticated(s.createPostHandler)).Methods("POST")
	r.HandleFunc("/posts/{postId}", s.authenticated(s.updatePostHandler)).Methods("PATCH")
	r.HandleFunc("/posts/{postId}", s.authenticated(s.deletePostHandler)).Methods("DELETE")
	r.HandleFunc("/posts/{postId}/like", s.authenticated(s.toggleLikeHandler)).Methods("POST")
	r.HandleFunc("/posts/{postId}/save", s.authenticated(s.toggleSaveHandler)).Methods("POST")
	r.HandleFunc("/posts/{postId}/comments", s.authenticated(s.addCommentHandler)).Methods("POST")
	r.HandleFunc("/posts/{postId}/comments/{commentId}", s.authenticated(s.deleteCommentHandler)).Methods("DELETE")

	r.HandleFunc("/settings", s.authenticated(s.getSettingsHandler)).Methods("GET")
	r.HandleFunc("/settings", s.authenticated(s.updateSettingsHandler)).Methods("PATCH")

	r.HandleFunc("/topics", s.authenticated(s.listTopicsHandler)).Methods("GET")
	r.HandleFunc("/topics/{topicId}/follow", s.authenticated(s.followTopicHandler(true))).Methods("POST")
	r.HandleFunc("/topics/{topicId}/follow", s.authenticated(s.followTopicHandler(false))).Methods("DELETE")

	r.HandleFunc("/subforums", s.authenticated(s.listSubforumsHandler)).Methods("GET")
	r.HandleFunc("/subforums", s.authenticated(s.createSubforumHandler)).Methods("POST")
	r.HandleFunc("/subforums/{subforumId}/subscribe", s.authenticated(s.subscribeHandler(true))).Methods("POST")
	r.HandleFunc("/subforums/{subforumId}/subscribe", s.authenticated(s.subscribeHandler(false))).Methods("DELETE")

	r.HandleFunc("/search", s.authenticated(s.searchHandler)).Methods("POST")

	r.HandleFunc("/notifications", s.authenticated(s.listNotificationsHandler)).Methods("GET")
	r.HandleFunc("/notifications/read-all", s.authenticated(s.markAllReadHandler)).Methods("POST")
	r.HandleFunc("/notifications/{notificationId}/read", s.authenticated(s.markReadHandler)).Methods("POST")

	r.HandleFunc("/reports", s.authenticated(s.reportHandler)).Methods("POST")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "OK")
	}).Methods("GET")

	return r
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s (%s)\n", r.Method, r.URL.Path, time.Since(start))
	})
}

func (s *Server) ListenAndServe(port string) error {
	log.Println("Started dev server on port " + port)
	return http.ListenAndServe(":"+port, s.Router())
}

// Accounts lists the seeded and registered usernames, sorted.
func (s *Server) Accounts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.byUsername))
	for name := range s.byUsername {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
