// Package conversion turns optimization equations into SymPy and NumPy code by
// asking an upstream LLM, substituting canned answers when the call fails.
package conversion

import "strings"

const (
	// DefaultFramework is the numeric framework assumed when none is given.
	DefaultFramework = "numpy"

	// ComplexityPlaceholder fills the complexity field when the model omits it.
	ComplexityPlaceholder = "N/A"
)

// Request is a single conversion request.
type Request struct {
	// Equation is LaTeX or natural-language text. Required.
	Equation string `json:"equation"`

	// ImageData is an optional base64-encoded image. Accepted but not used.
	ImageData string `json:"image_data,omitempty"`

	// Framework is a target framework hint ("numpy", "pytorch"). Accepted but not used.
	Framework string `json:"framework,omitempty"`
}

// Normalize fills defaults in place.
func (r *Request) Normalize() {
	if r.Framework == "" {
		r.Framework = DefaultFramework
	}
}

// Validate reports ErrInvalidInput when the equation is empty or whitespace.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Equation) == "" {
		return ErrInvalidInput
	}
	return nil
}

// Response is the payload returned to callers.
type Response struct {
	Sympy       string `json:"sympy"`
	Numpy       string `json:"numpy"`
	Explanation string `json:"explanation"`
	Complexity  string `json:"complexity"`
}

// Source records where a Response came from.
type Source string

const (
	SourceLLM   Source = "llm"
	SourceDemo  Source = "demo"
	SourceError Source = "error"
)

// Conversion is the outcome of Service.Convert: the response plus metadata
// that is logged and recorded but never serialized to clients.
type Conversion struct {
	Response *Response

	Source Source
	Model  string

	// Flags lists advisory safety findings in the generated code.
	Flags []string

	// Err is the failure that triggered a substitute response, if any.
	Err error
}
