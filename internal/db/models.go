package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a commuter account. Email, phone, name and department are fixed at
// signup; nickname may change once every cooldown period.
type User struct {
	ID                string `gorm:"primaryKey;size:36"`
	Email             string `gorm:"uniqueIndex;size:128;not null"`
	Name              string `gorm:"size:64;not null"`
	Phone             string `gorm:"size:16;not null"`
	Nickname          string `gorm:"uniqueIndex;size:32;not null"`
	NicknameUpdatedAt *time.Time
	Department        string    `gorm:"size:64;not null"`
	PasswordHash      string    `gorm:"size:255" json:"-"`
	Status            string    `gorm:"size:16;not null;default:active"`
	IsAdmin           bool      `gorm:"not null;default:false"`
	CreatedAt         time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	assignID(&u.ID)
	return nil
}

// ChatRoom is one scheduled commute on a route.
//
// Indexes:
//   - idx_room_route(from_location, to_location, departure_date, status)
//     serves the listing scan, which is then ordered by departure_time.
//
// ParticipantCount mirrors the number of room_participants rows. It is only
// changed inside the join/leave transactions and is what the capacity and
// last-participant conditions are evaluated against.
type ChatRoom struct {
	ID               string `gorm:"primaryKey;size:36"`
	Title            string `gorm:"size:128;not null"`
	FromLocation     string `gorm:"size:32;not null;index:idx_room_route,priority:1"`
	ToLocation       string `gorm:"size:32;not null;index:idx_room_route,priority:2"`
	DepartureDate    string `gorm:"size:10;not null;index:idx_room_route,priority:3"`
	DepartureTime    string `gorm:"size:5;not null"`
	MaxParticipants  int    `gorm:"not null;default:4"`
	ParticipantCount int    `gorm:"not null;default:0"`
	CreatedBy        string `gorm:"size:36;not null;index"`
	Status           string `gorm:"size:16;not null;default:active;index:idx_room_route,priority:4"`
	CreatedAt        time.Time

	Creator      *User             `gorm:"foreignKey:CreatedBy"`
	Participants []RoomParticipant `gorm:"foreignKey:RoomID"`
}

func (ChatRoom) TableName() string { return "chat_rooms" }

func (r *ChatRoom) BeforeCreate(*gorm.DB) error {
	assignID(&r.ID)
	return nil
}

// HasParticipant reports whether userID is in the preloaded participant list.
func (r *ChatRoom) HasParticipant(userID string) bool {
	for _, p := range r.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// RoomParticipant links a user to a room. One row per (room, user).
type RoomParticipant struct {
	ID        string    `gorm:"primaryKey;size:36"`
	RoomID    string    `gorm:"size:36;not null;uniqueIndex:idx_participant_room_user,priority:1"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_participant_room_user,priority:2;index"`
	Confirmed bool      `gorm:"not null;default:false"`
	JoinedAt  time.Time `gorm:"not null"`

	User *User `gorm:"foreignKey:UserID"`
}

func (RoomParticipant) TableName() string { return "room_participants" }

func (p *RoomParticipant) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

type Message struct {
	ID        string    `gorm:"primaryKey;size:36"`
	RoomID    string    `gorm:"size:36;not null;index:idx_message_room_created,priority:1"`
	UserID    string    `gorm:"size:36;not null;index"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index:idx_message_room_created,priority:2"`

	User *User `gorm:"foreignKey:UserID"`
}

func (m *Message) BeforeCreate(*gorm.DB) error {
	assignID(&m.ID)
	return nil
}

// Report is filed by one participant against another. Reports tied to a room
// are deleted together with it.
type Report struct {
	ID         string    `gorm:"primaryKey;size:36"`
	RoomID     *string   `gorm:"size:36;index"`
	ReporterID string    `gorm:"size:36;not null;index"`
	ReportedID string    `gorm:"size:36;not null;index"`
	Reason     string    `gorm:"type:text;not null"`
	Status     string    `gorm:"size:16;not null;default:pending;index"`
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time

	Reporter *User `gorm:"foreignKey:ReporterID"`
	Reported *User `gorm:"foreignKey:ReportedID"`
}

func (r *Report) BeforeCreate(*gorm.DB) error {
	assignID(&r.ID)
	return nil
}

// Favorite is a saved route shortcut, unique per (user, from, to).
type Favorite struct {
	ID           string    `gorm:"primaryKey;size:36"`
	UserID       string    `gorm:"size:36;not null;uniqueIndex:idx_favorite_route,priority:1"`
	FromLocation string    `gorm:"size:32;not null;uniqueIndex:idx_favorite_route,priority:2"`
	ToLocation   string    `gorm:"size:32;not null;uniqueIndex:idx_favorite_route,priority:3"`
	CreatedAt    time.Time `gorm:"index"`
}

func (f *Favorite) BeforeCreate(*gorm.DB) error {
	assignID(&f.ID)
	return nil
}

// AllModels lists every table in migration order.
func AllModels() []any {
	return []any{&User{}, &ChatRoom{}, &RoomParticipant{}, &Message{}, &Report{}, &Favorite{}}
}

func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
