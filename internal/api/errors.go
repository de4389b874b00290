package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common API errors.
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("resource not found")
	ErrInvalidRecord = errors.New("invalid record")
	ErrRateLimited   = errors.New("rate limited")
	ErrServerError   = errors.New("server error")
	ErrBadRequest    = errors.New("bad request")
)

// APIError represents an error response from the beehive API.
type APIError struct {
	StatusCode int
	Message    string
	Details    map[string]interface{}
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error %d", e.StatusCode)
}

// Is implements error matching for APIError.
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case 401, 403:
		return errors.Is(target, ErrUnauthorized)
	case 404:
		return errors.Is(target, ErrNotFound)
	case 422:
		return errors.Is(target, ErrInvalidRecord)
	case 429:
		return errors.Is(target, ErrRateLimited)
	case 400:
		return errors.Is(target, ErrBadRequest)
	}
	if e.StatusCode >= 500 {
		return errors.Is(target, ErrServerError)
	}
	return false
}

// NewAPIError creates an APIError from an HTTP status code.
func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// parseAPIError builds an APIError from an error response body. Besides the
// usual message/error keys it understands the adapter-style
// {"errors": {"name": ["can't be blank"]}} form.
func parseAPIError(statusCode int, body []byte) *APIError {
	var errResp struct {
		Message string                 `json:"message"`
		Error   string                 `json:"error"`
		Errors  map[string]interface{} `json:"errors"`
		Details map[string]interface{} `json:"details"`
	}
	_ = json.Unmarshal(body, &errResp)

	msg := errResp.Message
	if msg == "" {
		msg = errResp.Error
	}
	details := errResp.Details
	if len(errResp.Errors) > 0 {
		details = errResp.Errors
		if msg == "" {
			msg = summarizeFieldErrors(errResp.Errors)
		}
	}

	return &APIError{
		StatusCode: statusCode,
		Message:    msg,
		Details:    details,
	}
}

func summarizeFieldErrors(fields map[string]interface{}) string {
	var parts []string
	for field, v := range fields {
		switch vv := v.(type) {
		case []interface{}:
			for _, m := range vv {
				parts = append(parts, fmt.Sprintf("%s %v", field, m))
			}
		default:
			parts = append(parts, fmt.Sprintf("%s %v", field, vv))
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}
