// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

// Domain is the ErrorInfo domain attached to every mapped status.
const Domain = "ridemate"

// Map converts domain/repo/infra errors into gRPC-friendly status errors.
// Classified errors carry an ErrorInfo detail with their Reason.
func Map(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var de *Error
	if errors.As(err, &de) {
		return withReason(codeFor(de), de.Msg, de.Reason)
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return status.Error(codes.NotFound, "record not found")

	case errors.Is(err, gorm.ErrDuplicatedKey):
		return status.Error(codes.AlreadyExists, "record already exists")

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request was canceled")

	default:
		// fallback → bubble up error message for debugging
		return status.Error(codes.Internal, err.Error())
	}
}

// Reason extracts the ErrorInfo reason from a status error, "" if absent.
func Reason(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info.GetReason()
		}
	}
	return ""
}

func codeFor(e *Error) codes.Code {
	switch e.Kind {
	case KindValidation:
		return codes.InvalidArgument
	case KindConflict:
		switch e.Reason {
		case ErrAlreadyJoined.Reason, ErrDuplicateEmail.Reason, ErrDuplicateNickname.Reason, ErrDuplicateFavorite.Reason:
			return codes.AlreadyExists
		}
		return codes.FailedPrecondition
	case KindAuthorization:
		return codes.PermissionDenied
	case KindUnauthenticated:
		return codes.Unauthenticated
	case KindNotFound:
		return codes.NotFound
	default:
		return codes.Unavailable
	}
}

func withReason(code codes.Code, msg, reason string) error {
	st := status.New(code, msg)
	detailed, err := st.WithDetails(&errdetails.ErrorInfo{Reason: reason, Domain: Domain})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}
