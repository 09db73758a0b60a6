package notifications

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/health-tracker/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

func notificationAt(i int) *models.Notification {
	snap := models.ReminderSnapshot{
		ID:           fmt.Sprint(i),
		ReminderType: models.ReminderTypeMedication,
		Title:        fmt.Sprintf("Reminder %d", i),
		Message:      "Take your medication",
		ReminderTime: base,
	}
	n := FromSnapshot(snap, base.Add(time.Duration(i)*time.Second))
	return &n
}

func titles(ns []models.Notification) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.Title
	}
	return out
}

// runStoreSuite checks the behavior every Store backend shares. newStore
// must return an empty store with the given capacity.
func runStoreSuite(t *testing.T, newStore func(t *testing.T, capacity int) Store) {
	ctx := context.Background()

	t.Run("append assigns id and lists unread", func(t *testing.T) {
		s := newStore(t, 10)

		n := &models.Notification{Title: "Drink water", Body: "250ml", Data: models.ReminderSnapshot{ID: "4"}}
		require.NoError(t, s.Append(ctx, n))
		assert.NotEmpty(t, n.ID)
		assert.Contains(t, n.ID, "reminder_4_")
		assert.False(t, n.Timestamp.IsZero())
		assert.Equal(t, models.NotificationTypeReminder, n.Type)

		unread, err := s.ListUnread(ctx)
		require.NoError(t, err)
		require.Len(t, unread, 1)
		assert.Equal(t, n.ID, unread[0].ID)
		assert.Equal(t, "Drink water", unread[0].Title)
		assert.Equal(t, "4", unread[0].Data.ID)
		assert.False(t, unread[0].Read)
	})

	t.Run("retention evicts oldest first", func(t *testing.T) {
		s := newStore(t, 100)

		for i := 1; i <= 101; i++ {
			require.NoError(t, s.Append(ctx, notificationAt(i)))
		}

		unread, err := s.ListUnread(ctx)
		require.NoError(t, err)
		require.Len(t, unread, 100)
		assert.Equal(t, "Reminder 2", unread[0].Title)
		assert.Equal(t, "Reminder 101", unread[99].Title)
		for i, n := range unread {
			assert.Equal(t, fmt.Sprintf("Reminder %d", i+2), n.Title)
		}
	})

	t.Run("same timestamp keeps insertion order", func(t *testing.T) {
		s := newStore(t, 100)

		for i := 1; i <= 101; i++ {
			n := notificationAt(i)
			n.Timestamp = base
			require.NoError(t, s.Append(ctx, n))
		}

		unread, err := s.ListUnread(ctx)
		require.NoError(t, err)
		require.Len(t, unread, 100)
		for i, n := range unread {
			assert.Equal(t, fmt.Sprintf("Reminder %d", i+2), n.Title)
		}
	})

	t.Run("mark read flips one record", func(t *testing.T) {
		s := newStore(t, 3)

		var ids []string
		for i := 1; i <= 3; i++ {
			n := notificationAt(i)
			require.NoError(t, s.Append(ctx, n))
			ids = append(ids, n.ID)
		}

		ok, err := s.MarkRead(ctx, ids[1])
		require.NoError(t, err)
		assert.True(t, ok)

		unread, err := s.ListUnread(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Reminder 1", "Reminder 3"}, titles(unread))

		// read records still count toward capacity
		require.NoError(t, s.Append(ctx, notificationAt(4)))
		unread, err = s.ListUnread(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Reminder 3", "Reminder 4"}, titles(unread))
	})

	t.Run("mark read on absent id", func(t *testing.T) {
		s := newStore(t, 10)
		require.NoError(t, s.Append(ctx, notificationAt(1)))

		ok, err := s.MarkRead(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)

		unread, err := s.ListUnread(ctx)
		require.NoError(t, err)
		assert.Len(t, unread, 1)
	})

	t.Run("concurrent appends are all kept", func(t *testing.T) {
		s := newStore(t, 100)

		var wg sync.WaitGroup
		for i := 1; i <= 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, s.Append(ctx, notificationAt(i)))
			}(i)
		}
		wg.Wait()

		unread, err := s.ListUnread(ctx)
		require.NoError(t, err)
		assert.Len(t, unread, 20)
	})

	t.Run("concurrent append and mark read", func(t *testing.T) {
		s := newStore(t, 100)

		first := notificationAt(0)
		require.NoError(t, s.Append(ctx, first))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 1; i <= 10; i++ {
				assert.NoError(t, s.Append(ctx, notificationAt(i)))
			}
		}()
		go func() {
			defer wg.Done()
			ok, err := s.MarkRead(ctx, first.ID)
			assert.NoError(t, err)
			assert.True(t, ok)
		}()
		wg.Wait()

		unread, err := s.ListUnread(ctx)
		require.NoError(t, err)
		assert.Len(t, unread, 10)
		for _, n := range unread {
			assert.NotEqual(t, first.ID, n.ID)
		}
	})
}
