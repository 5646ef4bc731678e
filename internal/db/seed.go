package db

import (
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedPassword is the password every demo account is created with.
const SeedPassword = "password1234"

// SeedTestData resets the database and populates it with demo data.
//
// Behavior:
//  1. Clears every table, children before parents.
//  2. Creates 8 users; user1 is an admin.
//  3. Creates rooms on tomorrow's date for each ordered location pair reachable
//     from the station, each with its creator as a confirmed participant and
//     a second unconfirmed rider.
//  4. Adds a couple of messages per room and a favorite route per user.
//
// Returns the created users so callers can mint tokens for them.
func SeedTestData(db *gorm.DB, now time.Time) ([]User, error) {
	if err := Reset(db); err != nil {
		return nil, err
	}
	log.Println("Cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	users := make([]User, 0, 8)
	for i := 1; i <= 8; i++ {
		u := User{
			Email:        fmt.Sprintf("user%d@gachon.ac.kr", i),
			Name:         fmt.Sprintf("사용자%d", i),
			Phone:        fmt.Sprintf("010-0000-%04d", i),
			Nickname:     fmt.Sprintf("rider%d", i),
			Department:   Departments[i%len(Departments)],
			PasswordHash: string(hash),
			Status:       UserActive,
			IsAdmin:      i == 1,
			CreatedAt:    now.Add(-time.Duration(9-i) * time.Hour),
		}
		if err := db.Create(&u).Error; err != nil {
			return nil, fmt.Errorf("failed to seed user: %w", err)
		}
		users = append(users, u)
	}
	log.Printf("Seeded %d users.", len(users))

	date := now.AddDate(0, 0, 1).Format(time.DateOnly)
	rooms := 0
	for i, to := range Locations[1:] {
		creator := users[i%len(users)]
		rider := users[(i+1)%len(users)]
		departure := fmt.Sprintf("%02d:30", 8+i)

		room := ChatRoom{
			Title:            fmt.Sprintf("%s %s→%s", departure, LocationLabel(Locations[0]), LocationLabel(to)),
			FromLocation:     Locations[0],
			ToLocation:       to,
			DepartureDate:    date,
			DepartureTime:    departure,
			MaxParticipants:  4,
			ParticipantCount: 2,
			CreatedBy:        creator.ID,
			Status:           RoomActive,
			CreatedAt:        now,
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&room).Error; err != nil {
				return err
			}
			participants := []RoomParticipant{
				{RoomID: room.ID, UserID: creator.ID, Confirmed: true, JoinedAt: now},
				{RoomID: room.ID, UserID: rider.ID, Confirmed: false, JoinedAt: now.Add(time.Minute)},
			}
			if err := tx.Create(&participants).Error; err != nil {
				return err
			}
			messages := []Message{
				{RoomID: room.ID, UserID: creator.ID, Content: "정문 앞에서 만나요", CreatedAt: now.Add(2 * time.Minute)},
				{RoomID: room.ID, UserID: rider.ID, Content: "네 좋아요!", CreatedAt: now.Add(3 * time.Minute)},
			}
			return tx.Create(&messages).Error
		})
		if err != nil {
			return nil, fmt.Errorf("failed to seed room: %w", err)
		}
		rooms++
	}
	log.Printf("Seeded %d rooms.", rooms)

	for i, u := range users {
		fav := Favorite{
			UserID:       u.ID,
			FromLocation: Locations[0],
			ToLocation:   Locations[1+i%(len(Locations)-1)],
			CreatedAt:    now,
		}
		if err := db.Create(&fav).Error; err != nil {
			return nil, fmt.Errorf("failed to seed favorite: %w", err)
		}
	}

	return users, nil
}

// Reset deletes every row, children before parents so that foreign keys hold
// on dialects that enforce them.
func Reset(db *gorm.DB) error {
	for _, table := range []string{"messages", "reports", "favorites", "room_participants", "chat_rooms", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}
