package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx backend response.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

// Error renders the status and extracted message.
func (apiErr *APIError) Error() string {
	return fmt.Sprintf("apiclient.status.%d: %s", apiErr.StatusCode, apiErr.Message)
}

func newAPIError(statusCode int, body []byte) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    extractMessage(statusCode, body),
		Body:       body,
	}
}

func extractMessage(statusCode int, body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, field := range []string{"message", "error"} {
			if text, ok := payload[field].(string); ok && strings.TrimSpace(text) != "" {
				return text
			}
		}
	}
	if text := http.StatusText(statusCode); text != "" {
		return text
	}
	return "request failed"
}

// StatusCode returns the backend status carried by err, if any.
func StatusCode(err error) (int, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, true
	}
	return 0, false
}

// IsUnauthorized reports whether the backend refused the credentials (401 or 403).
func IsUnauthorized(err error) bool {
	statusCode, ok := StatusCode(err)
	return ok && (statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden)
}

// ErrorMessage returns the backend's message for err, or fallback when
// err did not come from a backend response.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	return fallback
}
