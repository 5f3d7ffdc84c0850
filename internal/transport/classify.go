package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// FailureCategory says where a request failed.
type FailureCategory string

const (
	ServerError  FailureCategory = "server-error"
	NoResponse   FailureCategory = "no-response"
	RequestFault FailureCategory = "request-error"
	Unknown      FailureCategory = "unknown"
)

const (
	noResponseMessage = "No response received from server."
	unknownMessage    = "unknown submission failure"
	// plain-text bodies at or above this many characters are not shown
	maxBodyMessageLen = 200
)

// ErrorInfo is the single message derived from a failed call.
type ErrorInfo struct {
	Message  string
	Category FailureCategory
}

// Err turns the info into an error value.
func (i ErrorInfo) Err() error {
	return &Error{Info: i}
}

// Error is a classified transport failure. Only the derived message is kept.
type Error struct {
	Info ErrorInfo
}

func (e *Error) Error() string { return e.Info.Message }

// Classify derives a message from a failure returned by Client.
// It never panics, whatever err is.
func Classify(err error) ErrorInfo {
	var respErr *ResponseError
	if errors.As(err, &respErr) && respErr != nil {
		return ErrorInfo{Message: serverMessage(respErr), Category: ServerError}
	}

	var noResp *NoResponseError
	if errors.As(err, &noResp) && noResp != nil {
		return ErrorInfo{Message: noResponseMessage, Category: NoResponse}
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr != nil && reqErr.Err != nil {
		return ErrorInfo{Message: reqErr.Err.Error(), Category: RequestFault}
	}

	return ErrorInfo{Message: unknownMessage, Category: Unknown}
}

func serverMessage(e *ResponseError) string {
	fallback := fmt.Sprintf("Server responded with status %d", e.StatusCode)

	var structured struct {
		Error any `json:"error"`
	}
	if json.Unmarshal(e.Body, &structured) == nil {
		if msg, ok := structured.Error.(string); ok && msg != "" {
			return msg
		}
	}

	text, ok := plainText(e.Body)
	if !ok || text == "" || utf8.RuneCountInString(text) >= maxBodyMessageLen {
		return fallback
	}
	return text
}

// plainText reports the body as text unless it is a JSON object or array.
// A JSON string literal is returned decoded.
func plainText(body []byte) (string, bool) {
	trimmed := strings.TrimSpace(string(body))
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return trimmed, true
	}
	switch val := v.(type) {
	case string:
		return val, true
	case map[string]any, []any, nil:
		return "", false
	default:
		return trimmed, true
	}
}
