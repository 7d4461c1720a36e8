package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
)

// APIError is a non-2xx answer from the hosted backend.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend: http %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("backend: http %d: %s", e.Status, e.Message)
}

// Unwrap maps auth failures onto the domain sentinels so callers can use
// errors.Is without knowing about HTTP.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return domain.ErrNotAuthenticated
	case e.Status == http.StatusBadRequest && (e.Code == CodeInvalidCredentials || e.Code == "invalid_grant"):
		return domain.ErrInvalidCredentials
	case e.Code == CodeUserAlreadyExists:
		return domain.ErrEmailAlreadyExists
	default:
		return nil
	}
}

const (
	CodeInvalidCredentials = "invalid_credentials"
	CodeNotAuthenticated   = "not_authenticated"
	CodeUserAlreadyExists  = "user_already_exists"
)

// ErrorBody is the JSON error envelope. The auth, rest and functions
// families each fill a different subset of it.
type ErrorBody struct {
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
	Code             string `json:"code,omitempty"`
	Message          string `json:"message,omitempty"`
	Msg              string `json:"msg,omitempty"`
}

func parseAPIError(status int, raw []byte) *APIError {
	e := &APIError{Status: status}

	var body ErrorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		e.Message = strings.TrimSpace(string(raw))
		return e
	}

	e.Code = firstNonEmpty(body.Error, body.Code)
	e.Message = firstNonEmpty(body.ErrorDescription, body.Message, body.Msg, http.StatusText(status))
	return e
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
