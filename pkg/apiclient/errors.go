package apiclient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gotodo/todokit/pkg/session"
)

var (
	ErrEmptyBaseURL   = errors.New("apiclient.empty_base_url")
	ErrInvalidBaseURL = errors.New("apiclient.invalid_base_url")
)

// Error describes a failed API call. A non-zero Status means the server
// answered; otherwise Err holds the transport or decoding failure. Message
// is the "error" field of the response body, if any.
//
// errors.Is maps it onto the session sentinels: status 401 is
// session.ErrUnauthorized, an undecodable success body is
// session.ErrInvalidResponseShape, anything else is
// session.ErrTransportFailure.
type Error struct {
	Op        string
	Method    string
	Path      string
	Status    int
	Message   string
	RequestID string
	Err       error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("%s: %s %s: %d %s: %s", e.Op, e.Method, e.Path, e.Status, http.StatusText(e.Status), e.Message)
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s: %s %s: %d %s: %v", e.Op, e.Method, e.Path, e.Status, http.StatusText(e.Status), e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: %s %s: %d %s", e.Op, e.Method, e.Path, e.Status, http.StatusText(e.Status))
	default:
		return fmt.Sprintf("%s: %s %s: %v", e.Op, e.Method, e.Path, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus returns the response status, or 0 if none was received.
func (e *Error) HTTPStatus() int { return e.Status }

func (e *Error) Is(target error) bool {
	switch target {
	case session.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case session.ErrTransportFailure:
		return e.Status != http.StatusUnauthorized && !errors.Is(e.Err, session.ErrInvalidResponseShape)
	default:
		return false
	}
}

// UserMessage returns the text worth showing to an end user.
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
