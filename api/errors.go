package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"

	shared "uniforum/shared"
)

const maxErrorDetails = 500

func isJSON(r *http.Response) bool {
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

// HandleApiError normalizes a 4xx/5xx response into the client error
// taxonomy, extracting the server's message when there is one.
func HandleApiError(r *http.Response, errBody []byte) *shared.ApiError {
	details := string(errBody)
	if len(details) > maxErrorDetails {
		details = details[:maxErrorDetails]
	}

	if !isJSON(r) {
		apiErr := &shared.ApiError{Status: r.StatusCode, Details: details}
		switch {
		case r.StatusCode == http.StatusNotFound:
			apiErr.Type = shared.ApiErrorTypeNotFound
			apiErr.Msg = "api endpoint not found"
		case r.StatusCode >= 500:
			apiErr.Type = shared.ApiErrorTypeServer
			apiErr.Msg = "server error"
		case r.StatusCode == http.StatusUnauthorized:
			apiErr.Type = shared.ApiErrorTypeInvalidToken
			apiErr.Msg = "not authorized"
		default:
			apiErr.Type = shared.ApiErrorTypeProtocol
			apiErr.Msg = fmt.Sprintf("server returned a non-JSON response (status %d)", r.StatusCode)
		}
		return apiErr
	}

	var data interface{}
	if len(errBody) > 0 {
		if err := json.Unmarshal(errBody, &data); err != nil {
			log.Printf("Error unmarshalling error response: %v\n", err)
			return &shared.ApiError{
				Type:    shared.ApiErrorTypeProtocol,
				Status:  r.StatusCode,
				Msg:     "server returned invalid JSON",
				Details: details,
			}
		}
	}

	return &shared.ApiError{
		Type:    shared.ErrorTypeForStatus(r.StatusCode),
		Status:  r.StatusCode,
		Msg:     pickErrorMessage(data),
		Details: details,
	}
}

var messageFields = []string{"message", "Message", "error", "Error", "detail", "msg"}

func pickErrorMessage(data interface{}) string {
	obj, ok := data.(map[string]interface{})
	if !ok {
		if s, ok := data.(string); ok && s != "" {
			return s
		}
		return "request failed"
	}

	for _, field := range messageFields {
		if s, ok := obj[field].(string); ok && s != "" {
			return s
		}
	}

	// field-level validation errors: {"username": ["already taken"]}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		msg := firstString(obj[k])
		if msg == "" {
			continue
		}
		if k == "non_field_errors" {
			return msg
		}
		return k + ": " + msg
	}

	return "request failed"
}

func firstString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func networkError(err error) *shared.ApiError {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return shared.NewNetworkError("request timed out, please try again")
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return shared.NewNetworkError("request timed out, please try again")
	}

	return shared.NewNetworkError("network error, please check your connection: %v", err)
}
