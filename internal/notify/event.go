package notify

import (
	"context"
	"time"
)

type EventType string

const (
	EventMessageAdded       EventType = "message_added"
	EventParticipantChanged EventType = "participant_changed"
)

// Change describes what happened to a participant row.
type Change string

const (
	ChangeJoined    Change = "joined"
	ChangeConfirmed Change = "confirmed"
	ChangeLeft      Change = "left"
)

// Event is a committed change on a room. Origin is the client id of the
// connection that made the write, so a subscriber can recognise its own.
type Event struct {
	Type        EventType `json:"type"`
	RoomID      string    `json:"room_id"`
	MessageID   string    `json:"message_id,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	Change      Change    `json:"change,omitempty"`
	RoomDeleted bool      `json:"room_deleted,omitempty"`
	Origin      string    `json:"origin,omitempty"`
	At          time.Time `json:"at"`
}

func MessageAdded(roomID, messageID, userID, origin string, at time.Time) Event {
	return Event{Type: EventMessageAdded, RoomID: roomID, MessageID: messageID, UserID: userID, Origin: origin, At: at}
}

func ParticipantChanged(roomID, userID string, change Change, roomDeleted bool, origin string, at time.Time) Event {
	return Event{
		Type:        EventParticipantChanged,
		RoomID:      roomID,
		UserID:      userID,
		Change:      change,
		RoomDeleted: roomDeleted,
		Origin:      origin,
		At:          at,
	}
}

// Publisher delivers events after the write that produced them has committed.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}
