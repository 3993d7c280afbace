package conversion

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// reply is the JSON object the model is asked to produce. Pointer fields let
// validation tell a missing key apart from an empty string.
type reply struct {
	Sympy       *string `json:"sympy" validate:"required"`
	Numpy       *string `json:"numpy" validate:"required"`
	Explanation *string `json:"explanation" validate:"required"`
	Complexity  *string `json:"complexity"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseReply decodes and validates the model's reply text.
func parseReply(content string) (*Response, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyReply
	}

	if !json.Valid([]byte(content)) {
		return nil, ErrMalformedReply
	}

	var r reply
	if err := json.Unmarshal([]byte(content), &r); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: field %q must be a string, got %s", ErrInvalidReply, typeErr.Field, typeErr.Value)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidReply, err)
	}

	if err := validate.Struct(&r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			missing := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				missing = append(missing, fe.Field())
			}
			return nil, fmt.Errorf("%w: missing field(s) %s", ErrInvalidReply, strings.Join(missing, ", "))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidReply, err)
	}

	resp := &Response{
		Sympy:       *r.Sympy,
		Numpy:       *r.Numpy,
		Explanation: *r.Explanation,
		Complexity:  ComplexityPlaceholder,
	}
	if r.Complexity != nil && *r.Complexity != "" {
		resp.Complexity = *r.Complexity
	}

	return resp, nil
}
