package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"couple-space-backend/pkg/models"
)

func seedEvent(t *testing.T, db DatabaseInterface, spaceID, title string, start time.Time) *models.Event {
	t.Helper()
	ev := &models.Event{Title: title, DateStart: start, SpaceID: spaceID}
	require.NoError(t, db.CreateEvent(ev))
	return ev
}

func TestListEventsStartingBefore(t *testing.T) {
	db := NewLocalDatabase()
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	seedEvent(t, db, "space-a", "early", base)
	seedEvent(t, db, "space-a", "late", base.Add(3*time.Hour))
	seedEvent(t, db, "space-b", "other space", base)

	// 只返回开始时间严格早于界限的同空间事件
	events, err := db.ListEventsStartingBefore("space-a", base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "early", events[0].Title)

	// 界限等于开始时间时不包含该事件
	events, err = db.ListEventsStartingBefore("space-a", base)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEventLookupsAreSpaceScoped(t *testing.T) {
	db := NewLocalDatabase()
	ev := seedEvent(t, db, "space-a", "private", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))

	_, err := db.GetEventByID("space-b", ev.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = db.DeleteEvent("space-b", ev.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// 正确的空间仍然可以访问
	got, err := db.GetEventByID("space-a", ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", got.Title)
}

func TestCreateUserDuplicateEmailIsCaseInsensitive(t *testing.T) {
	db := NewLocalDatabase()

	require.NoError(t, db.CreateUser(&models.User{Name: "Leandro", Email: "leandro@test.com"}))

	err := db.CreateUser(&models.User{Name: "Impostor", Email: "LEANDRO@test.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestListItemsReturnedInCreationOrder(t *testing.T) {
	db := NewLocalDatabase()

	for _, content := range []string{"Leche", "Pan", "Huevos"} {
		require.NoError(t, db.CreateListItem(&models.ListItem{Content: content, SpaceID: "space-a"}))
		time.Sleep(time.Millisecond)
	}

	items, err := db.ListItemsBySpace("space-a")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Leche", items[0].Content)
	assert.Equal(t, "Pan", items[1].Content)
	assert.Equal(t, "Huevos", items[2].Content)
}
