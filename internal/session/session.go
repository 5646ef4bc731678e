package session

import (
	"context"

	"github.com/oggyb/ridemate/internal/db"
	svcErr "github.com/oggyb/ridemate/internal/errors"
)

// Session identifies the caller of a domain operation. It is built once per
// request at the boundary and passed explicitly into every service call.
type Session struct {
	UserID   string
	Nickname string
	IsAdmin  bool
	Status   string
	// ClientID identifies the connection that issued the call. Events carry
	// it as their origin.
	ClientID string
}

// FromUser builds a session for a stored user.
func FromUser(u *db.User, clientID string) Session {
	return Session{
		UserID:   u.ID,
		Nickname: u.Nickname,
		IsAdmin:  u.IsAdmin,
		Status:   u.Status,
		ClientID: clientID,
	}
}

func (s Session) Suspended() bool { return s.Status == db.UserSuspended }

type ctxKey struct{}

// WithSession attaches s to ctx. Only the transport layer uses this; services
// take the session as an argument.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}

// Require returns the session attached to ctx or ErrUnauthenticated.
func Require(ctx context.Context) (Session, error) {
	s, ok := FromContext(ctx)
	if !ok || s.UserID == "" {
		return Session{}, svcErr.ErrUnauthenticated
	}
	return s, nil
}
