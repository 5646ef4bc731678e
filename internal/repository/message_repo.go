package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/ridemate/internal/db"
	svcErr "github.com/oggyb/ridemate/internal/errors"
)

// MessageRepository stores chat messages. Messages are never updated; they
// are removed only together with their room.
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

// CreateForParticipant appends m only if its author is a participant of the
// room. The room row is locked so the insert cannot interleave with the
// cascade that deletes the room.
func (r *MessageRepository) CreateForParticipant(ctx context.Context, m *db.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room db.ChatRoom
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&room, "id = ?", m.RoomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return svcErr.ErrRoomNotFound
			}
			return err
		}

		var n int64
		if err := tx.Model(&db.RoomParticipant{}).
			Where("room_id = ? AND user_id = ?", m.RoomID, m.UserID).
			Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return svcErr.ErrNotParticipant
		}
		return tx.Create(m).Error
	})
}

// ListByRoom returns a room's messages oldest first with their authors.
func (r *MessageRepository) ListByRoom(ctx context.Context, roomID string) ([]db.Message, error) {
	var msgs []db.Message
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("room_id = ?", roomID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	return msgs, err
}

// Get returns one message with its author.
func (r *MessageRepository) Get(ctx context.Context, id string) (*db.Message, error) {
	var m db.Message
	if err := r.db.WithContext(ctx).Preload("User").First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}
