package db_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/ridemate/internal/db"
	"github.com/oggyb/ridemate/internal/testutil"
)

func TestSeedTestData(t *testing.T) {
	database := testutil.NewDB(t)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	users, err := db.SeedTestData(database, now)
	require.NoError(t, err)
	require.Len(t, users, 8)
	assert.True(t, users[0].IsAdmin)

	var rooms []db.ChatRoom
	require.NoError(t, database.Preload("Participants").Find(&rooms).Error)
	require.Len(t, rooms, len(db.Locations)-1)
	for _, r := range rooms {
		assert.Equal(t, "2024-06-02", r.DepartureDate)
		assert.Equal(t, r.ParticipantCount, len(r.Participants))
	}

	// seeding twice starts over
	_, err = db.SeedTestData(database, now)
	require.NoError(t, err)
	var count int64
	require.NoError(t, database.Model(&db.User{}).Count(&count).Error)
	assert.EqualValues(t, 8, count)
}
