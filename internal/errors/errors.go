package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure by how the caller should react to it.
type Kind int

const (
	// KindTransient is the zero value: anything unclassified is a store or
	// network failure the user may retry.
	KindTransient Kind = iota
	KindValidation
	KindConflict
	KindAuthorization
	KindUnauthenticated
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuthorization:
		return "authorization"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindNotFound:
		return "not_found"
	default:
		return "transient"
	}
}

// Error is a classified domain error. Reason is a stable machine-readable code.
type Error struct {
	Kind   Kind
	Reason string
	Msg    string
}

func (e *Error) Error() string { return e.Msg }

// Is matches on Kind and Reason so that errors carrying a custom message still
// match their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Reason == t.Reason
}

func newError(kind Kind, reason, msg string) *Error {
	return &Error{Kind: kind, Reason: reason, Msg: msg}
}

var (
	ErrRoomFull          = newError(KindConflict, "ROOM_FULL", "room is full")
	ErrAlreadyJoined     = newError(KindConflict, "ALREADY_JOINED", "already joined this room")
	ErrRoomClosed        = newError(KindConflict, "ROOM_CLOSED", "room is no longer active")
	ErrDuplicateNickname = newError(KindConflict, "DUPLICATE_NICKNAME", "nickname is already taken")
	ErrDuplicateEmail    = newError(KindConflict, "DUPLICATE_EMAIL", "email is already registered")
	ErrDuplicateFavorite = newError(KindConflict, "DUPLICATE_FAVORITE", "route is already a favorite")
	ErrNicknameCooldown  = newError(KindConflict, "NICKNAME_COOLDOWN", "nickname was changed recently")
	ErrInvalidTransition = newError(KindConflict, "INVALID_TRANSITION", "report status transition not allowed")

	ErrNotParticipant = newError(KindAuthorization, "NOT_PARTICIPANT", "caller is not a participant of this room")
	ErrAdminOnly      = newError(KindAuthorization, "ADMIN_ONLY", "administrator privileges required")
	ErrSuspended      = newError(KindAuthorization, "SUSPENDED", "account is suspended")

	ErrUnauthenticated    = newError(KindUnauthenticated, "UNAUTHENTICATED", "authentication required")
	ErrInvalidCredentials = newError(KindUnauthenticated, "INVALID_CREDENTIALS", "email or password is incorrect")

	ErrRoomNotFound   = newError(KindNotFound, "ROOM_NOT_FOUND", "room not found")
	ErrUserNotFound   = newError(KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrReportNotFound = newError(KindNotFound, "REPORT_NOT_FOUND", "report not found")
)

// Invalid creates a validation error for a single field.
func Invalid(field, msg string) error {
	return newError(KindValidation, "INVALID_"+strings.ToUpper(field), msg)
}

// Invalidf is Invalid with formatting.
func Invalidf(field, format string, args ...any) error {
	return Invalid(field, fmt.Sprintf(format, args...))
}

// WithMessage keeps the classification of sentinel but replaces its text.
func WithMessage(sentinel *Error, msg string) error {
	return newError(sentinel.Kind, sentinel.Reason, msg)
}

// KindOf returns the kind of err, KindTransient when unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransient
}
