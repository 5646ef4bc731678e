package server

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/oggyb/ridemate/internal/api"
	"github.com/oggyb/ridemate/internal/app"
	"github.com/oggyb/ridemate/internal/auth"
	svcErr "github.com/oggyb/ridemate/internal/errors"
	"github.com/oggyb/ridemate/internal/repository"
	"github.com/oggyb/ridemate/internal/session"
)

const (
	authorizationHeader = "authorization"
	clientIDHeader      = "x-client-id"
	bearerPrefix        = "bearer "
	healthPrefix        = "/grpc.health.v1.Health/"
)

// Authenticator turns a bearer token into a session for the stored user.
type Authenticator struct {
	tokens *auth.Tokens
	users  *repository.UserRepository
	logger *slog.Logger
}

func NewAuthenticator(appCtx *app.AppContext) *Authenticator {
	return &Authenticator{
		tokens: appCtx.Tokens,
		users:  repository.NewUserRepository(appCtx.DB),
		logger: appCtx.Logger,
	}
}

// Authenticate verifies token and loads its user. An empty clientID gets a
// fresh one so that every connection has a distinct event origin.
func (a *Authenticator) Authenticate(ctx context.Context, token, clientID string) (session.Session, error) {
	if token == "" {
		return session.Session{}, svcErr.ErrUnauthenticated
	}
	claims, err := a.tokens.Verify(token)
	if err != nil {
		a.logger.Debug("token rejected", "err", err)
		return session.Session{}, svcErr.ErrUnauthenticated
	}
	u, err := a.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if svcErr.KindOf(err) == svcErr.KindNotFound {
			return session.Session{}, svcErr.ErrUnauthenticated
		}
		return session.Session{}, err
	}
	if clientID == "" {
		clientID = uuid.NewString()
	}
	return session.FromUser(u, clientID), nil
}

// authorize attaches the caller's session to ctx. Public methods pass through
// untouched; suspended users only reach the methods allowed to them.
func (a *Authenticator) authorize(ctx context.Context, method string) (context.Context, error) {
	if isPublic(method) {
		return ctx, nil
	}
	md, _ := metadata.FromIncomingContext(ctx)
	sess, err := a.Authenticate(ctx, bearerToken(md), first(md, clientIDHeader))
	if err != nil {
		return ctx, err
	}
	if sess.Suspended() && !api.SuspendedAllowed[method] {
		return ctx, svcErr.ErrSuspended
	}
	return session.WithSession(ctx, sess), nil
}

// UnaryInterceptor authenticates every unary call.
func (a *Authenticator) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, err := a.authorize(ctx, info.FullMethod)
		if err != nil {
			return nil, svcErr.Map(err)
		}
		return handler(ctx, req)
	}
}

// StreamInterceptor authenticates every streaming call.
func (a *Authenticator) StreamInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx, err := a.authorize(ss.Context(), info.FullMethod)
		if err != nil {
			return svcErr.Map(err)
		}
		return handler(srv, &sessionStream{ServerStream: ss, ctx: ctx})
	}
}

type sessionStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *sessionStream) Context() context.Context { return s.ctx }

// LoggingUnaryInterceptor logs each call with its outcome and latency.
func LoggingUnaryInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logCall(logger, info.FullMethod, start, err)
		return resp, err
	}
}

// LoggingStreamInterceptor logs each stream once it ends.
func LoggingStreamInterceptor(logger *slog.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		logCall(logger, info.FullMethod, start, err)
		return err
	}
}

func logCall(logger *slog.Logger, method string, start time.Time, err error) {
	code := status.Code(err)
	attrs := []any{"method", method, "code", code.String(), "duration", time.Since(start)}
	if code == codes.Internal || code == codes.Unavailable {
		logger.Error("grpc call failed", append(attrs, "err", err)...)
		return
	}
	logger.Debug("grpc call", attrs...)
}

func isPublic(method string) bool {
	return api.PublicMethods[method] || strings.HasPrefix(method, healthPrefix)
}

func bearerToken(md metadata.MD) string {
	v := first(md, authorizationHeader)
	if len(v) > len(bearerPrefix) && strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(v[len(bearerPrefix):])
	}
	return ""
}

func first(md metadata.MD, key string) string {
	if vs := md.Get(key); len(vs) > 0 {
		return vs[0]
	}
	return ""
}
