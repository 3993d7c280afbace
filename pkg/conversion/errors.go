package conversion

import "errors"

var (
	// ErrInvalidInput is returned for an empty or whitespace-only equation.
	ErrInvalidInput = errors.New("equation cannot be empty")

	// ErrEmptyReply is returned when the upstream reply has no content.
	ErrEmptyReply = errors.New("empty response from LLM")

	// ErrMalformedReply is returned when the upstream reply is not valid JSON.
	ErrMalformedReply = errors.New("malformed JSON from LLM")

	// ErrInvalidReply is returned when required fields are missing or mistyped.
	ErrInvalidReply = errors.New("LLM reply failed validation")
)
