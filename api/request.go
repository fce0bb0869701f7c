package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	shared "uniforum/shared"
)

type callOpts struct {
	method        string
	path          string
	body          interface{}
	out           interface{}
	authenticated bool
}

// call sends one request and decodes a JSON response into opts.out. An
// authenticated call that comes back 401 triggers a single token refresh
// followed by a single retry.
func (a *Api) call(ctx context.Context, opts callOpts) *shared.ApiError {
	var usedAccess string
	if opts.authenticated && a.tokens != nil {
		usedAccess, _ = a.tokens.Tokens()
	}

	status, respBody, apiErr := a.send(ctx, opts)
	if apiErr != nil && status == http.StatusUnauthorized && opts.authenticated {
		authRefreshed, refreshErr := a.refreshTokenIfNeeded(ctx, apiErr, usedAccess)
		if !authRefreshed {
			return refreshErr
		}
		status, respBody, apiErr = a.send(ctx, opts)
	}
	if apiErr != nil {
		return apiErr
	}

	if opts.out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	err := json.Unmarshal(respBody, opts.out)
	if err != nil {
		log.Printf("Error decoding %s %s response (status %d): %v\n", opts.method, opts.path, status, err)
		return &shared.ApiError{
			Type:    shared.ApiErrorTypeProtocol,
			Status:  status,
			Msg:     "server returned invalid JSON",
			Details: string(respBody),
		}
	}

	return nil
}

func (a *Api) send(ctx context.Context, opts callOpts) (int, []byte, *shared.ApiError) {
	serverUrl := a.host + opts.path

	var reqBody io.Reader
	if opts.body != nil {
		reqBytes, err := json.Marshal(opts.body)
		if err != nil {
			return 0, nil, &shared.ApiError{Type: shared.ApiErrorTypeOther, Msg: fmt.Sprintf("error marshalling request: %v", err)}
		}
		reqBody = bytes.NewReader(reqBytes)
	}

	req, err := http.NewRequestWithContext(ctx, opts.method, serverUrl, reqBody)
	if err != nil {
		return 0, nil, &shared.ApiError{Type: shared.ApiErrorTypeOther, Msg: fmt.Sprintf("error creating request: %v", err)}
	}
	req.Header.Set("Accept", "application/json")
	if opts.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := a.unauthenticatedClient
	if opts.authenticated {
		client = a.authenticatedClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, networkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, networkError(err)
	}

	if resp.StatusCode >= 400 {
		return resp.StatusCode, respBody, HandleApiError(resp, respBody)
	}

	if opts.out != nil && len(bytes.TrimSpace(respBody)) > 0 && !isJSON(resp) {
		return resp.StatusCode, respBody, &shared.ApiError{
			Type:    shared.ApiErrorTypeProtocol,
			Status:  resp.StatusCode,
			Msg:     "server returned a non-JSON response",
			Details: string(respBody),
		}
	}

	return resp.StatusCode, respBody, nil
}

// refreshTokenIfNeeded exchanges the refresh token for a new access token.
// On any failure the original 401 is returned unchanged.
func (a *Api) refreshTokenIfNeeded(ctx context.Context, apiErr *shared.ApiError, usedAccess string) (bool, *shared.ApiError) {
	if apiErr.Type != shared.ApiErrorTypeInvalidToken || a.tokens == nil {
		return false, apiErr
	}

	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	access, refresh := a.tokens.Tokens()

	// another request already refreshed while this one was in flight
	if access != "" && access != usedAccess {
		return true, nil
	}

	if refresh == "" {
		return false, apiErr
	}

	var res shared.RefreshTokenResponse
	refreshErr := a.call(ctx, callOpts{
		method: http.MethodPost,
		path:   "/token/refresh",
		body:   shared.RefreshTokenRequest{Refresh: refresh},
		out:    &res,
	})
	if refreshErr != nil {
		log.Printf("Error refreshing token: %v\n", refreshErr)
		return false, apiErr
	}
	if res.Access == "" {
		log.Println("Token refresh returned no access token")
		return false, apiErr
	}

	newRefresh := res.Refresh
	if newRefresh == "" {
		newRefresh = refresh
	}

	err := a.tokens.SetTokens(res.Access, newRefresh)
	if err != nil {
		log.Printf("Error storing refreshed tokens: %v\n", err)
		return false, apiErr
	}

	return true, nil
}
