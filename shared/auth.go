package shared

import "fmt"

type ApiErrorType string

const (
	ApiErrorTypeValidation   ApiErrorType = "validation"
	ApiErrorTypeInvalidToken ApiErrorType = "invalid_token"
	ApiErrorTypeNetwork      ApiErrorType = "network"
	ApiErrorTypeProtocol     ApiErrorType = "protocol"
	ApiErrorTypeServer       ApiErrorType = "server"
	ApiErrorTypeNotFound     ApiErrorType = "not_found"
	ApiErrorTypeForbidden    ApiErrorType = "forbidden"

	ApiErrorTypeOther ApiErrorType = "other"
)

type ApiError struct {
	Type   ApiErrorType `json:"type"`
	Status int          `json:"status"`
	Msg    string       `json:"msg"`

	// raw response body, kept for debugging protocol errors
	Details string `json:"-"`
}

func (e *ApiError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d)", e.Msg, e.Status)
	}
	return e.Msg
}

func (e *ApiError) IsAuth() bool {
	return e != nil && e.Type == ApiErrorTypeInvalidToken
}

func NewValidationError(msg string, args ...interface{}) *ApiError {
	return &ApiError{Type: ApiErrorTypeValidation, Msg: fmt.Sprintf(msg, args...)}
}

func NewNetworkError(msg string, args ...interface{}) *ApiError {
	return &ApiError{Type: ApiErrorTypeNetwork, Msg: fmt.Sprintf(msg, args...)}
}

// ErrorTypeForStatus maps an HTTP status to the client error taxonomy.
func ErrorTypeForStatus(status int) ApiErrorType {
	switch {
	case status == 401:
		return ApiErrorTypeInvalidToken
	case status == 403:
		return ApiErrorTypeForbidden
	case status == 404:
		return ApiErrorTypeNotFound
	case status == 400 || status == 422:
		return ApiErrorTypeValidation
	case status >= 500:
		return ApiErrorTypeServer
	}
	return ApiErrorTypeOther
}
