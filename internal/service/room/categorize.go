package room

import (
	"time"

	"github.com/oggyb/ridemate/internal/db"
)

// Listing is a room scan partitioned for one caller.
type Listing struct {
	Mine     []db.ChatRoom
	Upcoming []db.ChatRoom
	Past     []db.ChatRoom
}

// Categorize partitions rooms for userID at now (already in the service
// timezone). Rooms the caller participates in are always mine. Of the rest,
// a room departs in the past when its date is before today, or it is today
// and its departure time is before now; everything else is upcoming.
func Categorize(rooms []db.ChatRoom, userID string, now time.Time) Listing {
	today := now.Format(dateLayout)
	clock := now.Format(timeLayout)

	var l Listing
	for _, r := range rooms {
		switch {
		case r.HasParticipant(userID):
			l.Mine = append(l.Mine, r)
		case r.DepartureDate < today:
			l.Past = append(l.Past, r)
		case r.DepartureDate == today && r.DepartureTime < clock:
			l.Past = append(l.Past, r)
		default:
			l.Upcoming = append(l.Upcoming, r)
		}
	}
	return l
}
