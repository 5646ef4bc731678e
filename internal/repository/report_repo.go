package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/ridemate/internal/db"
	svcErr "github.com/oggyb/ridemate/internal/errors"
	"github.com/oggyb/ridemate/internal/utils/pagination"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(database *gorm.DB) *ReportRepository {
	return &ReportRepository{db: database}
}

// CreateForParticipants inserts report only while both its reporter and the
// reported user are participants of its room. The room row is locked so the
// insert cannot interleave with the cascade that deletes the room.
func (r *ReportRepository) CreateForParticipants(ctx context.Context, report *db.Report) error {
	if report.RoomID == nil || *report.RoomID == "" {
		return svcErr.Invalid("room_id", "room_id is required")
	}
	roomID := *report.RoomID

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room db.ChatRoom
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&room, "id = ?", roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return svcErr.ErrRoomNotFound
			}
			return err
		}

		for _, userID := range []string{report.ReporterID, report.ReportedID} {
			var n int64
			if err := tx.Model(&db.RoomParticipant{}).
				Where("room_id = ? AND user_id = ?", roomID, userID).
				Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				continue
			}
			if userID == report.ReporterID {
				return svcErr.ErrNotParticipant
			}
			return svcErr.WithMessage(svcErr.ErrNotParticipant, "reported user is not a participant of this room")
		}
		return tx.Create(report).Error
	})
}

// Get loads a report with both users.
func (r *ReportRepository) Get(ctx context.Context, id string) (*db.Report, error) {
	var report db.Report
	err := r.db.WithContext(ctx).
		Preload("Reporter").
		Preload("Reported").
		First(&report, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Advance moves a report from one status to the next. It only matches while
// the stored status is still from, so two moderators cannot both apply the
// same step. Returns false when nothing matched.
func (r *ReportRepository) Advance(ctx context.Context, id, from, to string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db.Report{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected > 0, res.Error
}

// List returns reports newest first, optionally filtered by status.
func (r *ReportRepository) List(ctx context.Context, status string, paginationToken *string, limit int) ([]db.Report, *string, error) {
	q := r.db.WithContext(ctx).Model(&db.Report{})
	if status != "" {
		q = q.Where("reports.status = ?", status)
	}
	q, err := afterCursor(q, "reports", paginationToken)
	if err != nil {
		return nil, nil, err
	}

	var reports []db.Report
	if err := q.Preload("Reporter").
		Preload("Reported").
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&reports).Error; err != nil {
		return nil, nil, err
	}
	reports, next := nextPage(reports, limit, func(r db.Report) pagination.Cursor {
		return pagination.After(r.ID, r.CreatedAt)
	})
	return reports, next, nil
}
