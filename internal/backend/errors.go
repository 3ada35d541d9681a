package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const noResponseMessage = "No server response. Check backend."

// NetworkError means no response was received at all.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) UserMessage() string { return noResponseMessage }

// FieldError is one entry of a list-shaped error detail.
type FieldError struct {
	Loc  []any  `json:"loc,omitempty"`
	Msg  string `json:"msg"`
	Type string `json:"type,omitempty"`
}

// APIError is a response the backend rejected with a non-2xx status.
type APIError struct {
	Status int
	Detail string
	Fields []FieldError
}

func (e *APIError) Error() string {
	if msg := e.detailMessage(); msg != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

func (e *APIError) UserMessage() string {
	if msg := e.detailMessage(); msg != "" {
		return msg
	}
	return fmt.Sprintf("Error: %d", e.Status)
}

func (e *APIError) detailMessage() string {
	if len(e.Fields) > 0 {
		msgs := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			msgs = append(msgs, f.Msg)
		}
		return strings.Join(msgs, ", ")
	}
	return e.Detail
}

// SchemaError reports a response body that does not match the expected shape.
type SchemaError struct {
	Path string
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("unexpected response from %s: %v", e.Path, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

func (e *SchemaError) UserMessage() string {
	return "Unexpected response from backend."
}

type userFacing interface {
	UserMessage() string
}

// UserMessage renders err as the single inline message shown next to a form
// or action. fallback is used when the backend gave no detail.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if msg := apiErr.detailMessage(); msg != "" {
			return msg
		}
		if fallback != "" {
			return fallback
		}
		return apiErr.UserMessage()
	}

	var uf userFacing
	if errors.As(err, &uf) {
		return uf.UserMessage()
	}

	if fallback != "" {
		return fallback
	}
	return "Unknown error"
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return apiErr
	}

	var detail string
	if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
		apiErr.Detail = detail
		return apiErr
	}

	var fields []FieldError
	if err := json.Unmarshal(envelope.Detail, &fields); err == nil {
		apiErr.Fields = fields
		return apiErr
	}

	apiErr.Detail = string(envelope.Detail)
	return apiErr
}
