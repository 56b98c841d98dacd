package webhooks

import (
	"fmt"
	"strings"
)

// Validation error codes, also used as the "code" field of 400 responses.
const (
	CodeInvalidType        = "invalid_type"
	CodeMissingCallbackURL = "missing_callback_url"
	CodeMissingAPIKey      = "missing_api_key"
	CodeInvalidBody        = "invalid_body"
)

// ValidationError rejects an inbound request before anything is scheduled.
// Two ValidationErrors match under errors.Is when their codes are equal.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidType        = &ValidationError{Code: CodeInvalidType}
	ErrMissingCallbackURL = &ValidationError{Code: CodeMissingCallbackURL}
	ErrMissingAPIKey      = &ValidationError{Code: CodeMissingAPIKey}
	ErrInvalidBody        = &ValidationError{Code: CodeInvalidBody}
)

func invalidType(got string, supported []string) *ValidationError {
	return &ValidationError{
		Code:    CodeInvalidType,
		Message: fmt.Sprintf("Invalid type %q. Supported types: %s.", got, strings.Join(supported, ", ")),
	}
}

func missingCallbackURL() *ValidationError {
	return &ValidationError{
		Code:    CodeMissingCallbackURL,
		Message: `Missing callback URL. Send "callbackUrl" in JSON body or set DEFAULT_CALLBACK_URL in environment variables.`,
	}
}

func missingAPIKey() *ValidationError {
	return &ValidationError{
		Code:    CodeMissingAPIKey,
		Message: `Missing API key. Send "apiKey" in JSON body.`,
	}
}

func invalidBody(err error) *ValidationError {
	return &ValidationError{
		Code:    CodeInvalidBody,
		Message: fmt.Sprintf("Invalid request body: expected a JSON object (%v).", err),
	}
}
