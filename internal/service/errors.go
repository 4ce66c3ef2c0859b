package service

import (
	"fmt"
	"strings"
)

const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeMissingFields      = "MISSING_FIELDS"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeStorage            = "STORAGE_ERROR"
)

// BusinessError is what services return for every failure a client can
// see. Message is safe to show; Err is the cause and only gets logged.
type BusinessError struct {
	Code    string
	Message string
	Details []string
	Err     error
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func NewBusinessError(code string, message string, details ...string) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewValidationError carries every violated rule; the message joins them
// for clients that only display the error string.
func NewValidationError(details []string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: strings.Join(details, " "),
		Details: details,
	}
}

func NewNotFound(resource string) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewInvalidCredentials is shared by the wrong-password and unknown-email
// paths so the two cannot be told apart.
func NewInvalidCredentials() *BusinessError {
	return &BusinessError{
		Code:    CodeInvalidCredentials,
		Message: "Invalid credentials",
	}
}

func NewMissingFields(fields ...string) *BusinessError {
	return &BusinessError{
		Code:    CodeMissingFields,
		Message: "Email and password are required",
		Details: fields,
	}
}

func NewStorageError(err error) *BusinessError {
	return &BusinessError{
		Code:    CodeStorage,
		Message: "Internal server error",
		Err:     err,
	}
}
