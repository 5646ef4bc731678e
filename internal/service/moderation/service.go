package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oggyb/ridemate/internal/app"
	"github.com/oggyb/ridemate/internal/db"
	svcErr "github.com/oggyb/ridemate/internal/errors"
	"github.com/oggyb/ridemate/internal/repository"
	"github.com/oggyb/ridemate/internal/session"
	"github.com/oggyb/ridemate/internal/utils/pagination"
)

// previous maps a report status to the only status it may be reached from.
var previous = map[string]string{
	db.ReportReviewed: db.ReportPending,
	db.ReportResolved: db.ReportReviewed,
}

// Service records reports and applies moderator decisions.
//
// Apart from FileReport, every method is an administrator action. The
// service does not check privileges itself; callers must.
type Service struct {
	appCtx   *app.AppContext
	reports  *repository.ReportRepository
	rooms    *repository.RoomRepository
	users    *repository.UserRepository
	messages *repository.MessageRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		reports:  repository.NewReportRepository(appCtx.DB),
		rooms:    repository.NewRoomRepository(appCtx.DB),
		users:    repository.NewUserRepository(appCtx.DB),
		messages: repository.NewMessageRepository(appCtx.DB),
	}
}

// FileReport records a pending report by the caller against another
// participant of the same room. The membership checks and the insert are one
// store transaction, so a report never outlives its room.
func (s *Service) FileReport(ctx context.Context, sess session.Session, roomID, reportedID, reason string) (*db.Report, error) {
	s.appCtx.Logger.Debug("FileReport called", "reporter", sess.UserID, "reported", reportedID, "room", roomID)

	reason = strings.TrimSpace(reason)
	switch {
	case roomID == "":
		return nil, svcErr.Invalid("room_id", "room_id is required")
	case reportedID == "":
		return nil, svcErr.Invalid("reported_id", "reported_id is required")
	case reportedID == sess.UserID:
		return nil, svcErr.Invalid("reported_id", "cannot report yourself")
	case reason == "":
		return nil, svcErr.Invalid("reason", "reason is required")
	}

	report := &db.Report{
		RoomID:     &roomID,
		ReporterID: sess.UserID,
		ReportedID: reportedID,
		Reason:     reason,
		Status:     db.ReportPending,
	}
	if err := s.reports.CreateForParticipants(ctx, report); err != nil {
		if svcErr.KindOf(err) == svcErr.KindTransient {
			s.appCtx.Logger.Error("file report failed", "reporter", sess.UserID, "err", err)
		}
		return nil, err
	}
	s.appCtx.Logger.Info("report filed", "report", report.ID, "room", roomID, "reported", reportedID)
	return s.reports.Get(ctx, report.ID)
}

// AdvanceReportStatus moves a report one step along pending → reviewed →
// resolved. The update only applies while the report is still in the
// expected prior status.
func (s *Service) AdvanceReportStatus(ctx context.Context, reportID, status string) (*db.Report, error) {
	s.appCtx.Logger.Debug("AdvanceReportStatus called", "report", reportID, "status", status)

	if reportID == "" {
		return nil, svcErr.Invalid("report_id", "report_id is required")
	}
	if !isReportStatus(status) {
		return nil, svcErr.Invalidf("status", "unknown report status %q", status)
	}

	from, ok := previous[status]
	if ok {
		advanced, err := s.reports.Advance(ctx, reportID, from, status)
		if err != nil {
			s.appCtx.Logger.Error("advance report failed", "report", reportID, "err", err)
			return nil, err
		}
		if advanced {
			return s.reports.Get(ctx, reportID)
		}
	}

	current, err := s.reports.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}
	return nil, svcErr.WithMessage(svcErr.ErrInvalidTransition,
		fmt.Sprintf("cannot move report from %s to %s", current.Status, status))
}

// SetUserStatus activates or suspends an account. Existing rooms and
// messages of the user are left as they are.
func (s *Service) SetUserStatus(ctx context.Context, userID, status string) (*db.User, error) {
	s.appCtx.Logger.Debug("SetUserStatus called", "user", userID, "status", status)

	if userID == "" {
		return nil, svcErr.Invalid("user_id", "user_id is required")
	}
	if status != db.UserActive && status != db.UserSuspended {
		return nil, svcErr.Invalidf("status", "unknown user status %q", status)
	}
	u, err := s.users.SetStatus(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	s.appCtx.Logger.Info("user status changed", "user", userID, "status", status)
	return u, nil
}

// ListReports returns reports newest first, optionally only those in status.
func (s *Service) ListReports(ctx context.Context, status string, paginationToken *string, pageSize int) ([]db.Report, *string, error) {
	if status != "" && !isReportStatus(status) {
		return nil, nil, svcErr.Invalidf("status", "unknown report status %q", status)
	}
	reports, next, err := s.reports.List(ctx, status, paginationToken, pagination.Limit(pageSize))
	return reports, next, pageErr(err)
}

// ListUsers returns accounts newest first, filtered by a free-text query.
func (s *Service) ListUsers(ctx context.Context, query string, paginationToken *string, pageSize int) ([]db.User, *string, error) {
	users, next, err := s.users.List(ctx, query, paginationToken, pagination.Limit(pageSize))
	return users, next, pageErr(err)
}

// ListRooms returns every room, active or closed, newest first.
func (s *Service) ListRooms(ctx context.Context, paginationToken *string, pageSize int) ([]db.ChatRoom, *string, error) {
	rooms, next, err := s.rooms.ListAll(ctx, paginationToken, pagination.Limit(pageSize))
	return rooms, next, pageErr(err)
}

// ListRoomMessages returns a room's messages without requiring membership.
func (s *Service) ListRoomMessages(ctx context.Context, roomID string) ([]db.Message, error) {
	exists, err := s.rooms.Exists(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, svcErr.ErrRoomNotFound
	}
	return s.messages.ListByRoom(ctx, roomID)
}

func isReportStatus(s string) bool {
	return s == db.ReportPending || s == db.ReportReviewed || s == db.ReportResolved
}

// pageErr reports malformed pagination tokens as validation failures.
func pageErr(err error) error {
	if errors.Is(err, pagination.ErrInvalidToken) {
		return svcErr.Invalid("pagination_token", err.Error())
	}
	return err
}
