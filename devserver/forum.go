package devserver

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	shared "uniforum/shared"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

func (s *Server) getSettingsHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	s.mu.Lock()
	settings := shared.MergeSettings(acct.settings)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]shared.Settings{"settings": settings})
}

func (s *Server) updateSettingsHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	var raw map[string]json.RawMessage
	if !decodeBody(w, r, &raw) {
		return
	}

	partial := shared.Settings{}
	for k, v := range raw {
		var b bool
		if err := json.Unmarshal(v, &b); err != nil {
			writeValidationError(w, k, shared.NewValidationError("Must be a valid boolean."))
			return
		}
		partial[k] = b
	}

	s.mu.Lock()
	acct.settings = shared.MergeSettings(acct.settings, partial)
	settings := acct.settings.Clone()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]shared.Settings{"settings": settings})
}

func (s *Server) listTopicsHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	s.mu.Lock()
	topics := make([]*shared.Topic, len(s.topics))
	for i, t := range s.topics {
		c := *t
		c.Following = s.follows[t.Id][acct.user.Id]
		c.Followers = t.Followers + len(s.follows[t.Id])
		topics[i] = &c
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, topics)
}

func (s *Server) followTopicHandler(follow bool) authHandler {
	return func(w http.ResponseWriter, r *http.Request, acct *account) {
		topicId := mux.Vars(r)["topicId"]

		s.mu.Lock()
		defer s.mu.Unlock()

		t := s.topicLocked(topicId)
		if t == nil {
			writeError(w, http.StatusNotFound, "topic not found")
			return
		}

		setFlag(s.follows, topicId, acct.user.Id, follow)
		followers := t.Followers + len(s.follows[topicId])

		writeJSON(w, http.StatusOK, shared.FollowResponse{Followed: &follow, Followers: &followers})
	}
}

func (s *Server) subforumViewLocked(sf *shared.SubForum, userId string) *shared.SubForum {
	c := *sf
	c.Access = append([]shared.Role(nil), sf.Access...)
	c.PostAccess = append([]shared.Role(nil), sf.PostAccess...)
	c.Subscribed = s.subscriptions[sf.Id][userId]
	c.Members = sf.Members + len(s.subscriptions[sf.Id])
	return &c
}

func (s *Server) listSubforumsHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	s.mu.Lock()
	subforums := make([]*shared.SubForum, len(s.subforums))
	for i, sf := range s.subforums {
		subforums[i] = s.subforumViewLocked(sf, acct.user.Id)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, subforums)
}

func (s *Server) createSubforumHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	var draft shared.SubforumDraft
	if !decodeBody(w, r, &draft) {
		return
	}

	if apiErr := shared.ValidateSubforumDraft(draft); apiErr != nil {
		writeValidationError(w, "name", apiErr)
		return
	}
	if draft.Category == "" {
		draft.Category = shared.SubforumCategoryGeneral
	}
	if _, ok := shared.SubforumCategoryLabels[draft.Category]; !ok {
		writeValidationError(w, "category", shared.NewValidationError("%q is not a valid choice.", draft.Category))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.TrimSpace(draft.Name)
	for _, sf := range s.subforums {
		if strings.EqualFold(sf.Name, name) {
			writeValidationError(w, "name", shared.NewValidationError("A sub-forum with that name already exists."))
			return
		}
	}

	sf := &shared.SubForum{
		Id:          "sf_" + uuid.NewString(),
		Name:        name,
		Description: draft.Description,
		Category:    draft.Category,
		Color:       draft.Color,
	}
	s.subforums = append(s.subforums, sf)
	setFlag(s.subscriptions, sf.Id, acct.user.Id, true)

	writeJSON(w, http.StatusCreated, s.subforumViewLocked(sf, acct.user.Id))
}

func (s *Server) subscribeHandler(subscribe bool) authHandler {
	return func(w http.ResponseWriter, r *http.Request, acct *account) {
		subforumId := mux.Vars(r)["subforumId"]

		s.mu.Lock()
		defer s.mu.Unlock()

		sf := s.subforumLocked(subforumId)
		if sf == nil {
			writeError(w, http.StatusNotFound, "sub-forum not found")
			return
		}
		if subscribe && !sf.CanAccess(acct.user.Role) {
			writeError(w, http.StatusForbidden, "this sub-forum is restricted")
			return
		}

		setFlag(s.subscriptions, subforumId, acct.user.Id, subscribe)
		members := sf.Members + len(s.subscriptions[subforumId])

		writeJSON(w, http.StatusOK, shared.SubscribeResponse{Subscribed: &subscribe, Members: &members})
	}
}

func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	var req shared.SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	q := strings.ToLower(strings.TrimSpace(req.SearchText))
	contains := func(fields ...string) bool {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), q) {
				return true
			}
		}
		return false
	}

	people := []*shared.Author{}
	posts := []*shared.Post{}
	subforums := []*shared.SubForum{}

	s.mu.Lock()
	if q != "" {
		for _, a := range s.accounts {
			if a.active && contains(a.user.Username, a.user.Name) {
				people = append(people, a.user.AsAuthor())
			}
		}
		for _, p := range s.posts {
			author := ""
			if p.Author != nil {
				author = p.Author.Name
			}
			if contains(p.Title, p.Body, author) {
				posts = append(posts, s.viewLocked(p, acct.user.Id))
			}
		}
		for _, sf := range s.subforums {
			if sf.CanAccess(acct.user.Role) && contains(sf.Name) {
				subforums = append(subforums, s.subforumViewLocked(sf, acct.user.Id))
			}
		}
	}
	s.mu.Unlock()

	sort.Slice(people, func(i, j int) bool { return people[i].Name < people[j].Name })

	// capitalized keys, as the production search endpoint answers
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"People":    people,
		"Posts":     posts,
		"Subforums": subforums,
	})
}

func (s *Server) notifyLocked(userId string, n *shared.Notification) {
	if userId == "" {
		return
	}
	n.Id = "n_" + uuid.NewString()
	n.CreatedAt = s.now()
	s.notifications[userId] = append(s.notifications[userId], n)
}

func (s *Server) listNotificationsHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	s.mu.Lock()
	stored := s.notifications[acct.user.Id]
	notifications := make([]*shared.Notification, len(stored))
	for i, n := range stored {
		c := *n
		notifications[i] = &c
	}
	s.mu.Unlock()

	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})

	writeJSON(w, http.StatusOK, notifications)
}

func (s *Server) markReadHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	id := mux.Vars(r)["notificationId"]

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notifications[acct.user.Id] {
		if n.Id == id {
			n.Read = true
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}

	writeError(w, http.StatusNotFound, "notification not found")
}

func (s *Server) markAllReadHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	s.mu.Lock()
	for _, n := range s.notifications[acct.user.Id] {
		n.Read = true
	}
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) reportHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	var req shared.ReportRequest
	if !decodeBody(w, r, &req) {
		return
	}

	switch req.Type {
	case shared.ReportTypePost, shared.ReportTypeComment, shared.ReportTypeUser:
	default:
		writeValidationError(w, "type", shared.NewValidationError("%q is not a valid choice.", req.Type))
		return
	}
	if strings.TrimSpace(req.TargetId) == "" {
		writeValidationError(w, "targetId", shared.NewValidationError("This field may not be blank."))
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		writeValidationError(w, "reason", shared.NewValidationError("This field may not be blank."))
		return
	}

	s.mu.Lock()
	rep := &report{Id: "r_" + uuid.NewString(), ReporterId: acct.user.Id, Req: req, CreatedAt: s.now()}
	s.reports = append(s.reports, rep)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, shared.ReportResponse{Success: true, ReportId: rep.Id})
}
