package payson

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Error is a non-2xx reply from Payson.
type Error struct {
	StatusCode int         `json:"-"`
	Errors     []ErrorItem `json:"errors"`
	Body       string      `json:"-"`
}

type ErrorItem struct {
	Message  string `json:"message"`
	Property string `json:"property,omitempty"`
}

func (e *Error) Error() string {
	if len(e.Errors) == 0 {
		if e.Body != "" {
			return fmt.Sprintf("payson: status %d: %s", e.StatusCode, e.Body)
		}
		return fmt.Sprintf("payson: status %d", e.StatusCode)
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, item := range e.Errors {
		if item.Property != "" {
			msgs = append(msgs, item.Property+": "+item.Message)
			continue
		}
		msgs = append(msgs, item.Message)
	}
	return fmt.Sprintf("payson: status %d: %s", e.StatusCode, strings.Join(msgs, "; "))
}

func decodeError(code int, body []byte) error {
	e := &Error{StatusCode: code}
	if err := json.Unmarshal(body, e); err != nil || len(e.Errors) == 0 {
		e.Body = strings.TrimSpace(string(body))
	}
	return e
}
