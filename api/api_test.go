package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	shared "uniforum/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memTokens struct {
	mu      sync.Mutex
	access  string
	refresh string
}

func (m *memTokens) Tokens() (string, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access, m.refresh
}

func (m *memTokens) SetTokens(access, refresh string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh = access, refresh
	return nil
}

func (m *memTokens) ClearTokens() error {
	return m.SetTokens("", "")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestRefreshAndRetry(t *testing.T) {
	var postsCalls, refreshCalls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/posts":
			atomic.AddInt32(&postsCalls, 1)
			if r.Header.Get("Authorization") != "Bearer new-access" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "token expired"})
				return
			}
			writeJSON(w, http.StatusOK, []map[string]interface{}{{"id": "p1", "title": "Hello"}})
		case "/token/refresh":
			atomic.AddInt32(&refreshCalls, 1)
			var req shared.RefreshTokenRequest
			json.NewDecoder(r.Body).Decode(&req)
			assert.Equal(t, "refresh-1", req.Refresh)
			writeJSON(w, http.StatusOK, map[string]string{"access": "new-access"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	tokens := &memTokens{access: "old-access", refresh: "refresh-1"}
	client := New(server.URL, tokens)

	posts, apiErr := client.ListPosts(context.Background())
	require.Nil(t, apiErr)
	require.Len(t, posts, 1)
	assert.Equal(t, "p1", posts[0].Id)

	assert.Equal(t, int32(2), atomic.LoadInt32(&postsCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))

	access, refresh := tokens.Tokens()
	assert.Equal(t, "new-access", access)
	assert.Equal(t, "refresh-1", refresh, "refresh token is kept when the server does not rotate it")
}

func TestRefreshFailureReturnsOriginalError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/posts":
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "token expired"})
		case "/token/refresh":
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "refresh token blacklisted"})
		}
	}))
	defer server.Close()

	tokens := &memTokens{access: "old-access", refresh: "refresh-1"}
	client := New(server.URL, tokens)

	_, apiErr := client.ListPosts(context.Background())
	require.NotNil(t, apiErr)
	assert.Equal(t, shared.ApiErrorTypeInvalidToken, apiErr.Type)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "token expired", apiErr.Msg)

	access, _ := tokens.Tokens()
	assert.Equal(t, "old-access", access, "failed refresh must not touch stored tokens")
}

func TestRetriesOnlyOnce(t *testing.T) {
	var postsCalls, refreshCalls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/posts":
			atomic.AddInt32(&postsCalls, 1)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "nope"})
		case "/token/refresh":
			atomic.AddInt32(&refreshCalls, 1)
			writeJSON(w, http.StatusOK, map[string]string{"access": "another-access", "refresh": "refresh-2"})
		}
	}))
	defer server.Close()

	tokens := &memTokens{access: "old-access", refresh: "refresh-1"}
	client := New(server.URL, tokens)

	_, apiErr := client.ListPosts(context.Background())
	require.NotNil(t, apiErr)
	assert.True(t, apiErr.IsAuth())
	assert.Equal(t, int32(2), atomic.LoadInt32(&postsCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))

	_, refresh := tokens.Tokens()
	assert.Equal(t, "refresh-2", refresh)
}

func TestNoRefreshWithoutRefreshToken(t *testing.T) {
	var refreshCalls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token/refresh" {
			atomic.AddInt32(&refreshCalls, 1)
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Authentication required"})
	}))
	defer server.Close()

	client := New(server.URL, &memTokens{})

	_, apiErr := client.GetCurrentUser(context.Background())
	require.NotNil(t, apiErr)
	assert.Equal(t, "Authentication required", apiErr.Msg)
	assert.Equal(t, int32(0), atomic.LoadInt32(&refreshCalls))
}

func TestSignInIsUnauthenticated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/login", r.URL.Path)
		assert.Equal(t, "", r.Header.Get("Authorization"))

		var req shared.SignInRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.Username)

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"access":  "a1",
			"refresh": "r1",
			"user":    map[string]interface{}{"id": "u1", "username": "alice", "role": "student"},
		})
	}))
	defer server.Close()

	client := New(server.URL, &memTokens{access: "stale"})

	res, apiErr := client.SignIn(context.Background(), shared.SignInRequest{Username: "alice", Password: "pw"})
	require.Nil(t, apiErr)
	assert.Equal(t, "a1", res.Access)
	assert.Equal(t, "r1", res.Refresh)
	require.NotNil(t, res.User)
	assert.Equal(t, shared.RoleStudent, res.User.Role, "roles are matched case-insensitively")
}

func TestErrorNormalization(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantType    shared.ApiErrorType
		wantMsg     string
	}{
		{"message field", 400, "application/json", `{"message":"Title is required"}`, shared.ApiErrorTypeValidation, "Title is required"},
		{"capitalized message", 400, "application/json", `{"Message":"Bad input"}`, shared.ApiErrorTypeValidation, "Bad input"},
		{"error field", 403, "application/json", `{"error":"Not your post"}`, shared.ApiErrorTypeForbidden, "Not your post"},
		{"detail field", 401, "application/json", `{"detail":"Given token not valid"}`, shared.ApiErrorTypeInvalidToken, "Given token not valid"},
		{"msg field", 500, "application/json", `{"msg":"boom"}`, shared.ApiErrorTypeServer, "boom"},
		{"first validation field", 400, "application/json", `{"username":["already taken"],"email":["invalid"]}`, shared.ApiErrorTypeValidation, "email: invalid"},
		{"non field errors", 400, "application/json", `{"non_field_errors":["Passwords do not match"]}`, shared.ApiErrorTypeValidation, "Passwords do not match"},
		{"empty json object", 422, "application/json", `{}`, shared.ApiErrorTypeValidation, "request failed"},
		{"html 404", 404, "text/html", `<h1>Not Found</h1>`, shared.ApiErrorTypeNotFound, "api endpoint not found"},
		{"html 502", 502, "text/html", `<h1>Bad Gateway</h1>`, shared.ApiErrorTypeServer, "server error"},
		{"html 400", 400, "text/html", `<h1>CSRF</h1>`, shared.ApiErrorTypeProtocol, "server returned a non-JSON response (status 400)"},
		{"broken json", 400, "application/json", `{"message":`, shared.ApiErrorTypeProtocol, "server returned invalid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := New(server.URL, &memTokens{})

			apiErr := client.DeletePost(context.Background(), "p1")
			require.NotNil(t, apiErr)
			assert.Equal(t, tt.wantType, apiErr.Type)
			assert.Equal(t, tt.wantMsg, apiErr.Msg)
			assert.Equal(t, tt.status, apiErr.Status)
		})
	}
}

func TestNonJSONSuccessIsProtocolError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>login page</html>"))
	}))
	defer server.Close()

	client := New(server.URL, &memTokens{})

	_, apiErr := client.ListPosts(context.Background())
	require.NotNil(t, apiErr)
	assert.Equal(t, shared.ApiErrorTypeProtocol, apiErr.Type)
}

func TestEmptySuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := New(server.URL, &memTokens{access: "a"})

	assert.Nil(t, client.DeletePost(context.Background(), "p1"))

	post, apiErr := client.UpdatePost(context.Background(), "p1", shared.PostPatch{})
	assert.Nil(t, apiErr)
	assert.Nil(t, post)
}

func TestTimeoutIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := New(server.URL, &memTokens{})
	client.SetTimeout(50 * time.Millisecond)

	_, apiErr := client.ListPosts(context.Background())
	require.NotNil(t, apiErr)
	assert.Equal(t, shared.ApiErrorTypeNetwork, apiErr.Type)
	assert.Contains(t, apiErr.Msg, "timed out")
}

func TestUnreachableHostIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	host := server.URL
	server.Close()

	client := New(host, &memTokens{})

	_, apiErr := client.ListTopics(context.Background())
	require.NotNil(t, apiErr)
	assert.Equal(t, shared.ApiErrorTypeNetwork, apiErr.Type)
}

func TestSettingsEnvelopes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare", `{"darkMode":true,"emailNotifications":false,"nickname":"x"}`},
		{"settings wrapper", `{"settings":{"darkMode":true,"emailNotifications":false}}`},
		{"user wrapper", `{"user":{"darkMode":true,"emailNotifications":false}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := New(server.URL, &memTokens{access: "a"})

			settings, apiErr := client.GetSettings(context.Background())
			require.Nil(t, apiErr)
			assert.Equal(t, shared.Settings{"darkMode": true, "emailNotifications": false}, settings)
		})
	}
}

func TestProfileEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer a", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"user": map[string]interface{}{"id": "u1", "username": "alice", "name": "Alice"},
		})
	}))
	defer server.Close()

	client := New(server.URL, &memTokens{access: "a"})

	user, apiErr := client.GetCurrentUser(context.Background())
	require.Nil(t, apiErr)
	assert.Equal(t, "u1", user.Id)
	assert.Equal(t, "Alice", user.Name)
}

func TestSearchAcceptsCapitalizedKeys(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req shared.SearchRequest
		json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "calc", req.SearchText)

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"People":    []map[string]string{{"id": "u2", "name": "Dr. Smith"}},
			"Posts":     []map[string]string{{"id": "p3", "title": "Calculus help"}},
			"Subforums": []map[string]string{},
		})
	}))
	defer server.Close()

	client := New(server.URL, &memTokens{access: "a"})

	res, apiErr := client.Search(context.Background(), "calc")
	require.Nil(t, apiErr)
	require.Len(t, res.People, 1)
	require.Len(t, res.Posts, 1)
	assert.Equal(t, "Calculus help", res.Posts[0].Title)
	assert.Empty(t, res.Subforums)
}
