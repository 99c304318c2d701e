package llm

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/RichardoC/ai-doctor/internal/config"
	"github.com/RichardoC/ai-doctor/internal/models"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConfiguration
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConfiguration:
		return "configuration"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// Error is the single failure type the gateway reports. Message is the
// text returned to the caller.
type Error struct {
	Kind     Kind
	Provider models.Provider
	Message  string
	Code     int // overrides the status derived from Kind when set
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status maps the error kind to an HTTP status code.
func (e *Error) Status() int {
	if e.Code != 0 {
		return e.Code
	}
	switch e.Kind {
	case KindValidation, KindConfiguration:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// MethodNotAllowed is the validation error for any method other than POST.
func MethodNotAllowed() *Error {
	return &Error{Kind: KindValidation, Message: "Method not allowed", Code: http.StatusMethodNotAllowed}
}

// RequestTooLarge rejects a body over limit bytes.
func RequestTooLarge(limit int64) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf("Request body exceeds %d bytes", limit),
		Code:    http.StatusRequestEntityTooLarge,
	}
}

func configurationError(p models.Provider, msg string) *Error {
	return &Error{Kind: KindConfiguration, Provider: p, Message: msg}
}

func upstreamError(p config.ProviderConfig, status int, body string) *Error {
	return &Error{
		Kind:     KindUpstream,
		Provider: p.Name,
		Message:  fmt.Sprintf("%s error: %s", p.DisplayName, body),
		Err:      fmt.Errorf("%s returned status %d", p.Name, status),
	}
}

// AsError converts err into an *Error. Anything that is not already one is
// an internal error carrying the original message.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindInternal, Message: err.Error(), Err: err}
}
