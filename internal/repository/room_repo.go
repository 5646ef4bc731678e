package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/ridemate/internal/db"
	svcErr "github.com/oggyb/ridemate/internal/errors"
	"github.com/oggyb/ridemate/internal/utils/pagination"
)

// RoomRepository owns chat_rooms and room_participants. Every write that
// touches both tables runs in one transaction, and the participant counter is
// only moved by conditional updates so capacity holds under concurrent joins.
type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(database *gorm.DB) *RoomRepository {
	return &RoomRepository{db: database}
}

// LeaveResult describes what a leave did to the room.
type LeaveResult struct {
	Room        db.ChatRoom
	RoomDeleted bool
}

// Create inserts room together with its creator as a confirmed participant.
// Either both rows exist afterwards or neither does.
func (r *RoomRepository) Create(ctx context.Context, room *db.ChatRoom, joinedAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room.ParticipantCount = 1
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		creator := db.RoomParticipant{
			RoomID:    room.ID,
			UserID:    room.CreatedBy,
			Confirmed: true,
			JoinedAt:  joinedAt,
		}
		if err := tx.Create(&creator).Error; err != nil {
			return err
		}
		room.Participants = []db.RoomParticipant{creator}
		return nil
	})
}

// Membership is a participant row together with the room it belongs to.
type Membership struct {
	Room        db.ChatRoom
	Participant db.RoomParticipant
}

// Join adds userID as an unconfirmed participant.
//
// The counter is incremented only while the room is active and below
// capacity; the participant insert happens in the same transaction, so a
// uniqueness violation rolls the increment back.
//
// Errors:
//   - ErrRoomNotFound, ErrRoomClosed, ErrRoomFull, ErrAlreadyJoined
func (r *RoomRepository) Join(ctx context.Context, roomID, userID string, joinedAt time.Time) (*Membership, error) {
	m := &Membership{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&db.ChatRoom{}).
			Where("id = ? AND status = ? AND participant_count < max_participants", roomID, db.RoomActive).
			UpdateColumn("participant_count", gorm.Expr("participant_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return joinRejection(tx, roomID, userID)
		}

		m.Participant = db.RoomParticipant{RoomID: roomID, UserID: userID, JoinedAt: joinedAt}
		if err := tx.Create(&m.Participant).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return svcErr.ErrAlreadyJoined
			}
			return err
		}
		return tx.First(&m.Room, "id = ?", roomID).Error
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// joinRejection explains why the conditional increment matched no row.
func joinRejection(tx *gorm.DB, roomID, userID string) error {
	var room db.ChatRoom
	if err := tx.First(&room, "id = ?", roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return svcErr.ErrRoomNotFound
		}
		return err
	}
	if room.Status != db.RoomActive {
		return svcErr.ErrRoomClosed
	}

	var n int64
	if err := tx.Model(&db.RoomParticipant{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return svcErr.ErrAlreadyJoined
	}
	return svcErr.ErrRoomFull
}

// Confirm marks the caller's participation as confirmed. Confirming twice is
// a no-op.
func (r *RoomRepository) Confirm(ctx context.Context, roomID, userID string) (*Membership, error) {
	m := &Membership{}
	err := r.db.WithContext(ctx).First(&m.Room, "id = ?", roomID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		First(&m.Participant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.ErrNotParticipant
	}
	if err != nil {
		return nil, err
	}
	if m.Participant.Confirmed {
		return m, nil
	}

	if err := r.db.WithContext(ctx).Model(&m.Participant).Update("confirmed", true).Error; err != nil {
		return nil, err
	}
	m.Participant.Confirmed = true
	return m, nil
}

// Leave removes userID from the room. When the caller was the last
// participant, as observed under the row lock before the delete, the room's
// messages, reports and the room itself are deleted in that order.
func (r *RoomRepository) Leave(ctx context.Context, roomID, userID string) (*LeaveResult, error) {
	result := &LeaveResult{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room db.ChatRoom
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, "id = ?", roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return svcErr.ErrRoomNotFound
			}
			return err
		}
		before := room.ParticipantCount

		res := tx.Where("room_id = ? AND user_id = ?", roomID, userID).Delete(&db.RoomParticipant{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return svcErr.ErrNotParticipant
		}

		result.Room = room
		if before > 1 {
			result.Room.ParticipantCount = before - 1
			return tx.Model(&db.ChatRoom{}).
				Where("id = ?", roomID).
				UpdateColumn("participant_count", gorm.Expr("participant_count - 1")).Error
		}

		result.Room.ParticipantCount = 0
		result.RoomDeleted = true
		return deleteRoomTree(tx, roomID)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// deleteRoomTree removes a room and everything it owns, children first.
func deleteRoomTree(tx *gorm.DB, roomID string) error {
	if err := tx.Where("room_id = ?", roomID).Delete(&db.Message{}).Error; err != nil {
		return err
	}
	if err := tx.Where("room_id = ?", roomID).Delete(&db.Report{}).Error; err != nil {
		return err
	}
	if err := tx.Where("room_id = ?", roomID).Delete(&db.RoomParticipant{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", roomID).Delete(&db.ChatRoom{}).Error
}

// ListActive returns the active rooms of a route and date ordered by
// departure time, with participants and their users preloaded.
func (r *RoomRepository) ListActive(ctx context.Context, from, to, date string) ([]db.ChatRoom, error) {
	var rooms []db.ChatRoom
	err := r.db.WithContext(ctx).
		Preload("Participants", orderParticipants).
		Preload("Participants.User").
		Where("from_location = ? AND to_location = ? AND departure_date = ? AND status = ?", from, to, date, db.RoomActive).
		Order("departure_time ASC, created_at ASC").
		Find(&rooms).Error
	return rooms, err
}

// Get loads one room with its creator and participants.
func (r *RoomRepository) Get(ctx context.Context, roomID string) (*db.ChatRoom, error) {
	var room db.ChatRoom
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Participants", orderParticipants).
		Preload("Participants.User").
		First(&room, "id = ?", roomID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// ListForUser returns the active rooms userID participates in, soonest first.
func (r *RoomRepository) ListForUser(ctx context.Context, userID string) ([]db.ChatRoom, error) {
	var rooms []db.ChatRoom
	err := r.db.WithContext(ctx).
		Preload("Participants", orderParticipants).
		Preload("Participants.User").
		Where("status = ?", db.RoomActive).
		Where("id IN (?)", r.db.Model(&db.RoomParticipant{}).Select("room_id").Where("user_id = ?", userID)).
		Order("departure_date ASC, departure_time ASC").
		Find(&rooms).Error
	return rooms, err
}

// ListAll returns every room newest first with its creator, for moderators.
func (r *RoomRepository) ListAll(ctx context.Context, paginationToken *string, limit int) ([]db.ChatRoom, *string, error) {
	q, err := afterCursor(r.db.WithContext(ctx).Model(&db.ChatRoom{}), "chat_rooms", paginationToken)
	if err != nil {
		return nil, nil, err
	}

	var rooms []db.ChatRoom
	if err := q.Preload("Creator").
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&rooms).Error; err != nil {
		return nil, nil, err
	}
	rooms, next := nextPage(rooms, limit, func(r db.ChatRoom) pagination.Cursor {
		return pagination.After(r.ID, r.CreatedAt)
	})
	return rooms, next, nil
}

// IsParticipant reports whether userID has a participant row in roomID.
func (r *RoomRepository) IsParticipant(ctx context.Context, roomID, userID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&db.RoomParticipant{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&n).Error
	return n > 0, err
}

// Exists reports whether the room is still stored.
func (r *RoomRepository) Exists(ctx context.Context, roomID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&db.ChatRoom{}).Where("id = ?", roomID).Count(&n).Error
	return n > 0, err
}

// CloseDepartedBefore closes active rooms whose departure date is before
// date (YYYY-MM-DD) and returns them.
func (r *RoomRepository) CloseDepartedBefore(ctx context.Context, date string) ([]db.ChatRoom, error) {
	var rooms []db.ChatRoom
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("status = ? AND departure_date < ?", db.RoomActive, date).Find(&rooms).Error; err != nil {
			return err
		}
		if len(rooms) == 0 {
			return nil
		}
		ids := make([]string, len(rooms))
		for i, room := range rooms {
			ids[i] = room.ID
		}
		return tx.Model(&db.ChatRoom{}).
			Where("id IN ? AND status = ?", ids, db.RoomActive).
			Update("status", db.RoomClosed).Error
	})
	return rooms, err
}

// DeleteEmpty removes rooms whose participant counter is zero along with
// anything they still own.
func (r *RoomRepository) DeleteEmpty(ctx context.Context) ([]db.ChatRoom, error) {
	var rooms []db.ChatRoom
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("participant_count <= 0").
			Find(&rooms).Error; err != nil {
			return err
		}
		for _, room := range rooms {
			if err := deleteRoomTree(tx, room.ID); err != nil {
				return err
			}
		}
		return nil
	})
	return rooms, err
}

func orderParticipants(tx *gorm.DB) *gorm.DB {
	return tx.Order("room_participants.joined_at ASC")
}
