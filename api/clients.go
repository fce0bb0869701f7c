package api

import (
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"uniforum/fs"
	"uniforum/types"
)

const dialTimeout = 10 * time.Second
const reqTimeout = 10 * time.Second

const cloudApiHost = "https://forum-api.wayne.edu"
const devApiHost = "http://127.0.0.1:8000"

type Api struct {
	host   string
	tokens types.TokenStore

	unauthenticatedClient *http.Client
	authenticatedClient   *http.Client

	refreshMu sync.Mutex
}

var _ types.ApiClient = (*Api)(nil)

// Client is the process-wide remote client, set up by main.
var Client *Api

// DefaultHost resolves the api host from the environment.
func DefaultHost() string {
	if host := os.Getenv("UNIFORUM_API_HOST"); host != "" {
		return strings.TrimRight(host, "/")
	}
	if fs.IsDev {
		return devApiHost
	}
	return cloudApiHost
}

func New(host string, tokens types.TokenStore) *Api {
	netDialer := &net.Dialer{
		Timeout: dialTimeout,
	}

	return &Api{
		host:   strings.TrimRight(host, "/"),
		tokens: tokens,
		unauthenticatedClient: &http.Client{
			Transport: &http.Transport{
				DialContext: netDialer.DialContext,
			},
			Timeout: reqTimeout,
		},
		authenticatedClient: &http.Client{
			Transport: &authenticatedTransport{
				tokens: tokens,
				underlyingTransport: &http.Transport{
					DialContext: netDialer.DialContext,
				},
			},
			Timeout: reqTimeout,
		},
	}
}

func (a *Api) Host() string {
	return a.host
}

// SetHost points the client at another backend. Call before any request.
func (a *Api) SetHost(host string) {
	a.host = strings.TrimRight(host, "/")
}

// SetTimeout overrides the per-request timeout.
func (a *Api) SetTimeout(d time.Duration) {
	a.unauthenticatedClient.Timeout = d
	a.authenticatedClient.Timeout = d
}

type authenticatedTransport struct {
	tokens              types.TokenStore
	underlyingTransport http.RoundTripper
}

// RoundTrip attaches the current access token, if any.
func (t *authenticatedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.tokens != nil {
		access, _ := t.tokens.Tokens()
		if access != "" {
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+access)
		}
	}
	return t.underlyingTransport.RoundTrip(req)
}
