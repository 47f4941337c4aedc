package apperrors

import (
	"errors"
	"strings"
)

type Kind string

const (
	KindAuth       Kind = "auth"
	KindSubmit     Kind = "submit"
	KindPoll       Kind = "poll"
	KindClipboard  Kind = "clipboard"
	KindJobFailed  Kind = "job_failed"
	KindTransient  Kind = "transient"
	KindValidation Kind = "validation"
)

type Error struct {
	Kind Kind
	// SafeMessage is intended for user-facing output and logs.
	SafeMessage string
	// Cause keeps the original internal error for troubleshooting.
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if msg := strings.TrimSpace(e.SafeMessage); msg != "" {
		return msg
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func defaultSafeMessage(kind Kind) string {
	switch kind {
	case KindAuth:
		return "Authentication failed. Please sign in to Noll again."
	case KindSubmit:
		return "Failed to start translation."
	case KindPoll:
		return "Failed to get job status."
	case KindClipboard:
		return "No image in clipboard."
	case KindJobFailed:
		return "Translation failed"
	case KindTransient:
		return "Temporary network error. Please try again."
	case KindValidation:
		return "Response from Noll was invalid."
	default:
		return "Request failed."
	}
}

func New(kind Kind, safeMessage string, cause error) error {
	msg := strings.TrimSpace(safeMessage)
	if msg == "" {
		msg = defaultSafeMessage(kind)
	}
	return &Error{
		Kind:        kind,
		SafeMessage: msg,
		Cause:       cause,
	}
}

func Auth(err error) error {
	return New(KindAuth, "", err)
}

func Clipboard(safeMessage string) error {
	return New(KindClipboard, safeMessage, nil)
}

func JobFailed(serverMessage string) error {
	return New(KindJobFailed, serverMessage, nil)
}

func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.Kind, true
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}
