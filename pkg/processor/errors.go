package processor

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ValidationError is raised when a message field is missing, mistyped, or
// out of range. It is always raised before any write.
type ValidationError struct {
	Param   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err is a message validation failure.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

func typeError(param string, want string) error {
	return &ValidationError{
		Param:   param,
		Message: fmt.Sprintf("parameter %s must be a %s", param, want),
	}
}

func rangeError(param string, message string) error {
	return &ValidationError{
		Param:   param,
		Message: fmt.Sprintf("parameter %s %s", param, message),
	}
}

// decodeBody unmarshals a message body into its typed payload, converting
// type mismatches into validation errors so a present-but-wrong-typed field
// fails the whole message before any write.
func decodeBody(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return typeError(typeErr.Field, typeErr.Type.String())
		}
		return &ValidationError{Message: "message body is not a valid JSON object"}
	}
	return nil
}
