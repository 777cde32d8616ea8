package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed call.
type Kind string

const (
	// KindNetwork covers transport failures, timeouts, and cancellation.
	KindNetwork Kind = "network"
	// KindBackend is a non-2xx response other than 401.
	KindBackend Kind = "backend"
	// KindUnauthorized is a 401 response.
	KindUnauthorized Kind = "unauthorized"
	// KindDecode is a 2xx response whose body could not be read.
	KindDecode Kind = "decode"
)

// GenericMessage is shown when neither the body nor the status yields text.
const GenericMessage = "An error occurred"

// Error is the normalized failure returned by every Client method.
type Error struct {
	Op      string
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if msg == "" {
		msg = GenericMessage
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of an *Error in err's chain, or "".
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// IsUnauthorized reports whether err came from a 401 response.
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}

// Message returns the human-readable message carried by err, suitable for
// showing to the operator verbatim.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return GenericMessage
	}
	return err.Error()
}

// extractMessage pulls an operator-facing message out of an error body.
// It prefers message, then detail, then error, then the status text.
func extractMessage(body []byte, status int) string {
	var payload map[string]json.RawMessage
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		for _, key := range []string{"message", "detail", "error"} {
			if msg := rawMessageText(payload[key]); msg != "" {
				return msg
			}
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return GenericMessage
}

// rawMessageText renders a string, a nested {message} object, or a list of
// validation entries ({msg}) as text.
func rawMessageText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if json.Unmarshal(raw, &text) == nil {
		return strings.TrimSpace(text)
	}
	var nested struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	if json.Unmarshal(raw, &nested) == nil {
		if nested.Message != "" {
			return strings.TrimSpace(nested.Message)
		}
		return strings.TrimSpace(nested.Msg)
	}
	var entries []struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &entries) == nil {
		parts := make([]string, 0, len(entries))
		for _, entry := range entries {
			switch {
			case entry.Msg != "":
				parts = append(parts, entry.Msg)
			case entry.Message != "":
				parts = append(parts, entry.Message)
			}
		}
		return strings.Join(parts, "; ")
	}
	return ""
}
