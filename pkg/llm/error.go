// Package llm provides internal representations of OpenAI-compatible chat
// completion requests and responses, and a client for sending them upstream.
package llm

import "fmt"

// ErrorResponse is the error envelope returned by OpenAI-compatible APIs.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// APIError describes an upstream failure. Code is a number on OpenRouter and
// a string on some other providers.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Code    any    `json:"code,omitempty"`
}

// StatusError is returned when the upstream answers with a non-200 status or
// a 200 body carrying an error object.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Message)
}
