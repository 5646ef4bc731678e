package api

import (
	"time"

	"github.com/oggyb/ridemate/internal/db"
	"github.com/oggyb/ridemate/internal/notify"
)

func ParticipantFromModel(p *db.RoomParticipant) *Participant {
	out := &Participant{
		UserID:    p.UserID,
		Confirmed: p.Confirmed,
		JoinedAt:  p.JoinedAt,
	}
	if p.User != nil {
		out.Nickname = p.User.Nickname
		out.Department = p.User.Department
	}
	return out
}

func RoomFromModel(r *db.ChatRoom) *Room {
	out := &Room{
		ID:               r.ID,
		Title:            r.Title,
		FromLocation:     r.FromLocation,
		ToLocation:       r.ToLocation,
		DepartureDate:    r.DepartureDate,
		DepartureTime:    r.DepartureTime,
		MaxParticipants:  r.MaxParticipants,
		ParticipantCount: r.ParticipantCount,
		CreatedBy:        r.CreatedBy,
		Status:           r.Status,
		CreatedAt:        r.CreatedAt,
	}
	if r.Creator != nil {
		out.CreatorNickname = r.Creator.Nickname
	}
	for i := range r.Participants {
		out.Participants = append(out.Participants, *ParticipantFromModel(&r.Participants[i]))
	}
	return out
}

func RoomsFromModels(rooms []db.ChatRoom) []*Room {
	out := make([]*Room, 0, len(rooms))
	for i := range rooms {
		out = append(out, RoomFromModel(&rooms[i]))
	}
	return out
}

func MessageFromModel(m *db.Message) *Message {
	out := &Message{
		ID:        m.ID,
		RoomID:    m.RoomID,
		UserID:    m.UserID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
	if m.User != nil {
		out.Nickname = m.User.Nickname
		out.Department = m.User.Department
	}
	return out
}

func MessagesFromModels(msgs []db.Message) []*Message {
	out := make([]*Message, 0, len(msgs))
	for i := range msgs {
		out = append(out, MessageFromModel(&msgs[i]))
	}
	return out
}

func ReportFromModel(r *db.Report) *Report {
	out := &Report{
		ID:         r.ID,
		ReporterID: r.ReporterID,
		ReportedID: r.ReportedID,
		Reason:     r.Reason,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt,
	}
	if r.RoomID != nil {
		out.RoomID = *r.RoomID
	}
	if r.Reporter != nil {
		out.ReporterNickname = r.Reporter.Nickname
	}
	if r.Reported != nil {
		out.ReportedNickname = r.Reported.Nickname
	}
	return out
}

// UserFromModel converts a user. cooldown, when positive, is used to fill in
// the earliest next nickname change.
func UserFromModel(u *db.User, cooldown time.Duration) *User {
	out := &User{
		ID:                u.ID,
		Email:             u.Email,
		Name:              u.Name,
		Phone:             u.Phone,
		Nickname:          u.Nickname,
		Department:        u.Department,
		Status:            u.Status,
		IsAdmin:           u.IsAdmin,
		NicknameUpdatedAt: u.NicknameUpdatedAt,
		CreatedAt:         u.CreatedAt,
	}
	if u.NicknameUpdatedAt != nil && cooldown > 0 {
		next := u.NicknameUpdatedAt.Add(cooldown)
		out.NextNicknameChangeAt = &next
	}
	return out
}

func FavoriteFromModel(f *db.Favorite) *Favorite {
	return &Favorite{
		ID:           f.ID,
		FromLocation: f.FromLocation,
		ToLocation:   f.ToLocation,
		CreatedAt:    f.CreatedAt,
	}
}

func EventFromNotify(e notify.Event) *RoomEvent {
	return &RoomEvent{
		Type:        string(e.Type),
		RoomID:      e.RoomID,
		MessageID:   e.MessageID,
		UserID:      e.UserID,
		Change:      string(e.Change),
		RoomDeleted: e.RoomDeleted,
		Origin:      e.Origin,
		At:          e.At,
	}
}
